// Package guidance turns rescue announcements into operator-facing output:
// a log line always, and optionally a short audio chirp so an operator
// watching the map hears each rescue trigger.
package guidance

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate    = beep.SampleRate(44100)
	chirpFreq     = 880.0
	chirpDuration = 180 * time.Millisecond
)

// Logger is the subset of *log.Logger used here.
type Logger interface {
	Printf(format string, v ...any)
}

// LogSink writes each announcement as a single log line.
type LogSink struct {
	logger Logger
}

// NewLogSink wraps the given logger; nil means the standard logger.
func NewLogSink(logger Logger) *LogSink {
	if logger == nil {
		logger = log.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Announce(msg string) {
	s.logger.Printf("GUIDANCE %s", msg)
}

// AudioSink plays a short chirp per announcement on top of logging it.
// Speaker initialization happens lazily on the first announcement; if the
// audio device is unavailable the sink degrades to log-only.
type AudioSink struct {
	log *LogSink

	initOnce sync.Once
	ready    bool
}

// NewAudioSink builds an audio sink that also logs through logger.
func NewAudioSink(logger Logger) *AudioSink {
	return &AudioSink{log: NewLogSink(logger)}
}

func (s *AudioSink) Announce(msg string) {
	s.log.Announce(msg)
	s.initOnce.Do(func() {
		if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
			s.log.logger.Printf("guidance: audio disabled: %v", err)
			return
		}
		s.ready = true
	})
	if !s.ready {
		return
	}
	speaker.Play(newChirp(chirpFreq, chirpDuration, sampleRate))
}

// chirp is a fixed-length sine burst with a linear fade-out, so rescues in
// quick succession do not click.
type chirp struct {
	freq     float64
	phase    float64
	total    int
	position int
	rate     beep.SampleRate
}

func newChirp(freq float64, duration time.Duration, rate beep.SampleRate) beep.Streamer {
	return &chirp{freq: freq, total: rate.N(duration), rate: rate}
}

func (c *chirp) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if c.position >= c.total {
			return i, false
		}
		val := math.Sin(2 * math.Pi * c.phase)
		val *= float64(c.total-c.position) / float64(c.total)
		samples[i][0] = val
		samples[i][1] = val

		c.phase += c.freq / float64(c.rate)
		c.phase -= math.Floor(c.phase)
		c.position++
	}
	return len(samples), true
}

func (c *chirp) Err() error { return nil }
