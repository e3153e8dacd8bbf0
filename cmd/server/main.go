package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tuannm99/novaingest/internal"
	"github.com/tuannm99/novaingest/internal/sink"
	"github.com/tuannm99/novaingest/server/ingestwire"
)

func main() {
	cfgPath := flag.String("config", "", "optional YAML config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	dataDir := flag.String("data-dir", "", "data directory (overrides config)")
	flag.Parse()

	cfg, err := internal.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dataDir != "" {
		cfg.Server.DataDir = *dataDir
	}

	if cfg.Server.Debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if !cfg.Server.InMemory {
		if err := os.MkdirAll(cfg.Server.DataDir, 0o755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
	}

	store, err := sink.Open(sink.Options{Dir: cfg.Server.DataDir, InMemory: cfg.Server.InMemory})
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	// SIGINT/SIGTERM cancel ctx, which closes the listener
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("novaingest starting", "data_dir", cfg.Server.DataDir, "in_memory", cfg.Server.InMemory)
	err = ingestwire.Run(ctx, ingestwire.ServerConfig{
		Addr:        cfg.Server.Addr,
		MetricsAddr: cfg.Server.MetricsAddr,
		Compress:    cfg.Server.Compress,
	}, store)
	if err != nil {
		slog.Error("server stopped", "err", err)
		return
	}
	slog.Info("shutting down")
}
