package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"babble-go/internal/config"
	"babble-go/internal/controller"
	"babble-go/internal/handler"
	"babble-go/internal/service"
	"babble-go/pkg/mcp"
	"babble-go/pkg/metrics"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	var appConfigPath = flag.String("app", "app.yaml", "Path to app configuration file")
	var dbPath = flag.String("db", "", "Override path of the state database")
	var port = flag.Int("port", 0, "Override server port")
	flag.Parse()

	cfgZap := zap.NewProductionConfig()
	cfgZap.Level.SetLevel(zapcore.DebugLevel)
	cfgZap.OutputPaths = []string{"stdout", "all.log"}
	logger, err := cfgZap.Build()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	defer logger.Sync()

	cfg, err := config.LoadConfig(*appConfigPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Command line overrides
	if *dbPath != "" {
		cfg.App.DBPath = *dbPath
	}
	if *port != 0 {
		cfg.App.Port = *port
	}

	logger.Info("Configuration loaded successfully", zap.Any("config", cfg))

	store, err := service.NewStore(cfg.App.DBPath, logger)
	if err != nil {
		logger.Fatal("Failed to open state store", zap.Error(err))
	}
	defer store.Close()

	if err := store.SeedSources(cfg.Sources); err != nil {
		logger.Fatal("Failed to seed sources", zap.Error(err))
	}

	m := metrics.New()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	fetcher := service.NewHTTPSourceFetcher(time.Duration(cfg.App.FetchTimeoutSeconds)*time.Second, logger)
	babbleService := service.NewBabbleService(cfg, store, fetcher, m, rng, logger)

	messages, err := babbleService.Reload(context.Background())
	if err != nil {
		logger.Fatal("Failed to build corpus index", zap.Error(err))
	}
	for _, msg := range messages {
		logger.Warn(msg)
	}

	babbleController := controller.NewBabbleController(babbleService, logger)
	mcpServer := mcp.NewBabbleServer(babbleService, cfg, logger)
	mcpServer.Serve()

	router := handler.SetupRouter(babbleController, m, logger)

	logger.Info("Starting server", zap.Int("port", cfg.App.Port))
	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.App.Port), router); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
