// cuexd is the production-management server: show catalog, cue-list
// editor, rig power calculator, console format exports and script import.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LightBlast-creator/cuex/internal/api"
	"github.com/LightBlast-creator/cuex/internal/config"
	"github.com/LightBlast-creator/cuex/internal/export"
	"github.com/LightBlast-creator/cuex/internal/extraction"
	"github.com/LightBlast-creator/cuex/internal/show"
	"github.com/LightBlast-creator/cuex/internal/storage/sqlite"
	"github.com/LightBlast-creator/cuex/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "cuex.toml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := sqlite.Open(cfg.Storage.SQLitePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	showStorage := sqlite.NewShowStorage(db, log)
	contactStorage := sqlite.NewContactStorage(db, log)

	repo, err := show.NewRepository(showStorage, log)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}

	var ner extraction.EntityRecognizer
	if cfg.OpenAI.APIKey != "" {
		ner = extraction.NewOpenAIRecognizer(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	} else {
		log.Warn("No OpenAI API key configured, entity-recognition fallback disabled")
	}

	pipeline := extraction.NewPipeline(extraction.Config{
		RoleStoplist:      cfg.Extraction.RoleStoplist,
		TechnicalMarkers:  cfg.Extraction.TechnicalMarkers,
		MinTechnicalLen:   cfg.Extraction.MinTechnicalLen,
		RolesSectionLimit: cfg.Extraction.RolesSectionLimit,
	}, ner, log)

	encoder := export.NewEncoder(cfg.Export.ProviderName, cfg.Export.ProviderVersion)

	router := api.NewRouter(repo, contactStorage, pipeline, encoder, cfg, log)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-sigCh:
		log.Info("Shutting down", logger.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
