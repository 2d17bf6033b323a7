// Package main provides the HTTP API server for DIDComm message assembly
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ZentaChain/zentalk-didcomm/pkg/api"
	"github.com/ZentaChain/zentalk-didcomm/pkg/config"
	"github.com/ZentaChain/zentalk-didcomm/pkg/storage"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "YAML configuration file")
	envFile := flag.String("env-file", "", "Load environment variables from this .env file")
	apiPort := flag.Int("port", 0, "HTTP API port (overrides config)")
	dbPath := flag.String("db", "", "Archive database path (overrides config; empty disables archiving)")
	enableCORS := flag.Bool("cors", true, "Enable CORS headers")
	rateLimit := flag.Int("rate-limit", 0, "Rate limit (requests per minute, overrides config)")
	logLevel := flag.String("log-level", "", "Log level (overrides config)")

	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logrus.Fatalf("❌ %v", err)
		}
		cfg = loaded
	}

	if *envFile != "" {
		if err := config.LoadEnvFile(*envFile); err != nil {
			logrus.Fatalf("❌ %v", err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		logrus.Fatalf("❌ Invalid environment: %v", err)
	}

	// Flags override config
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = *apiPort
		case "db":
			cfg.Storage.Path = *dbPath
		case "cors":
			cfg.Server.EnableCORS = *enableCORS
		case "rate-limit":
			cfg.Server.RateLimit = *rateLimit
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})

	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("❌ Invalid configuration: %v", err)
	}

	log, err := cfg.Log.NewLogger()
	if err != nil {
		logrus.Fatalf("❌ %v", err)
	}

	log.Info("🚀 ZenTalk DIDComm API Server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open archive if configured
	var store *storage.MessageDB
	if cfg.Storage.Path != "" {
		log.Infof("🗄️  Opening message archive at %s...", cfg.Storage.Path)
		store, err = storage.NewMessageDB(cfg.Storage.Path, cfg.Storage.Password)
		if err != nil {
			log.Fatalf("❌ Failed to open archive: %v", err)
		}
		defer store.Close()

		go store.RunExpiryPurge(ctx, cfg.Storage.PurgeInterval, log)
	} else {
		log.Warn("⚠️  Archiving disabled: built messages are not stored")
	}

	// Create HTTP API server
	apiServer := api.NewServer(store, &api.Config{
		Port:         cfg.Server.Port,
		EnableCORS:   cfg.Server.EnableCORS,
		RateLimit:    cfg.Server.RateLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, log)

	// Start API server
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := apiServer.Start(ctx); err != nil {
			log.WithError(err).Error("API server error")
			cancel()
		}
	}()

	port := cfg.Server.Port
	log.Info("✅ Server is ready!")
	log.Info("API Endpoints:")
	log.Infof("  POST   http://localhost:%d/api/v1/messages/direct", port)
	log.Infof("  POST   http://localhost:%d/api/v1/messages/key-sharing", port)
	log.Infof("  POST   http://localhost:%d/api/v1/messages/media-sharing", port)
	log.Infof("  GET    http://localhost:%d/api/v1/messages", port)
	log.Infof("  GET    http://localhost:%d/api/v1/messages/:id", port)
	log.Infof("  DELETE http://localhost:%d/api/v1/messages/:id", port)
	log.Infof("  POST   http://localhost:%d/api/v1/media/hash", port)
	log.Infof("  POST   http://localhost:%d/api/v1/keys", port)
	log.Infof("  GET    http://localhost:%d/health", port)

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	log.Info("🛑 Shutting down...")

	// Graceful shutdown
	cancel()
	<-done

	log.Info("👋 Goodbye!")
}
