package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"teachassist/internal/config"
	"teachassist/internal/logging"
	"teachassist/internal/server"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	daemon, err := server.NewDaemon(cfg, logger)
	if err != nil {
		logger.Error("create daemon", "error", err)
		os.Exit(1)
	}
	defer daemon.Close()

	if err := daemon.Run(ctx); err != nil {
		logger.Error("daemon run", "error", err)
		os.Exit(1)
	}
	logger.Info("teachassistd shutting down")
}
