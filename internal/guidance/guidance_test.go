package guidance

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Printf(format string, v ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, v...))
}

func TestLogSinkWritesAnnouncement(t *testing.T) {
	rec := &recordingLogger{}
	s := NewLogSink(rec)
	s.Announce("Drone D1, team alpha: victim located 42 meters out.")

	if len(rec.lines) != 1 {
		t.Fatalf("got %d log lines, want 1", len(rec.lines))
	}
	if !strings.Contains(rec.lines[0], "GUIDANCE") || !strings.Contains(rec.lines[0], "D1") {
		t.Errorf("unexpected log line %q", rec.lines[0])
	}
}

func TestLogSinkNilLoggerDefaults(t *testing.T) {
	s := NewLogSink(nil)
	if s.logger == nil {
		t.Fatal("nil logger should fall back to the standard logger")
	}
}

func TestChirpLength(t *testing.T) {
	rate := beep.SampleRate(44100)
	duration := 100 * time.Millisecond
	c := newChirp(880, duration, rate)

	total := 0
	buf := make([][2]float64, 512)
	for {
		n, ok := c.Stream(buf)
		total += n
		if !ok {
			break
		}
	}
	if want := rate.N(duration); total != want {
		t.Errorf("chirp produced %d samples, want %d", total, want)
	}
}

func TestChirpStaysInRangeAndFadesOut(t *testing.T) {
	rate := beep.SampleRate(44100)
	c := newChirp(880, 100*time.Millisecond, rate)

	var last float64
	buf := make([][2]float64, 256)
	for {
		n, ok := c.Stream(buf)
		for i := 0; i < n; i++ {
			l, r := buf[i][0], buf[i][1]
			if l < -1 || l > 1 || r < -1 || r > 1 {
				t.Fatalf("sample out of range: %f, %f", l, r)
			}
			if l != r {
				t.Fatal("chirp should be mono-identical on both channels")
			}
			last = l
		}
		if !ok {
			break
		}
	}
	if last > 0.01 || last < -0.01 {
		t.Errorf("final sample %f, want near-silence after fade-out", last)
	}
}

func TestChirpErrIsNil(t *testing.T) {
	c := newChirp(880, 10*time.Millisecond, beep.SampleRate(44100))
	if err := c.Err(); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}
