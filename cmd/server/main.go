package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/perbrage/flood-rescue-swarm/internal/server"
	"github.com/perbrage/flood-rescue-swarm/internal/swarm"
)

func main() {
	var configPath string
	var addr string

	flag.StringVar(&configPath, "config", "", "optional YAML config file")
	flag.StringVar(&addr, "addr", "", "listen address, overrides RESCUE_ADDR")
	flag.Parse()

	// .env is optional; environment variables win either way.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("godotenv: %v", err)
	}
	if addr == "" {
		addr = os.Getenv("RESCUE_ADDR")
	}
	if addr == "" {
		addr = ":8080"
	}
	if configPath == "" {
		configPath = os.Getenv("RESCUE_CONFIG")
	}

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

	srv := server.New(cfg, addr, log.Default())
	srv.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
