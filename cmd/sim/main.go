package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/perbrage/flood-rescue-swarm/internal/guidance"
	"github.com/perbrage/flood-rescue-swarm/internal/swarm"
	"github.com/perbrage/flood-rescue-swarm/internal/view"
)

func main() {
	var configPath string
	var seed int64
	var mute bool

	flag.StringVar(&configPath, "config", "", "optional YAML config file")
	flag.Int64Var(&seed, "seed", 0, "RNG seed, 0 = time-based")
	flag.BoolVar(&mute, "mute", false, "disable the rescue audio chirp")
	flag.Parse()

	cfg := swarm.DefaultConfig()
	if configPath != "" {
		loaded, err := swarm.LoadConfig(configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	var opts []swarm.Option
	if seed != 0 {
		opts = append(opts, swarm.WithSeed(seed))
	}
	if mute {
		opts = append(opts, swarm.WithGuidanceSink(guidance.NewLogSink(nil)))
	} else {
		opts = append(opts, swarm.WithGuidanceSink(guidance.NewAudioSink(nil)))
	}

	v := view.New(cfg, opts...)
	ebiten.SetWindowTitle("Flood Rescue Swarm")
	w, h := v.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}
