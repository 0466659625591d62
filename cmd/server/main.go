package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kycdocs/internal/classifier"
	classifiergemini "kycdocs/internal/classifier/gemini"
	classifieropenai "kycdocs/internal/classifier/openai"
	"kycdocs/internal/config"
	"kycdocs/internal/doctype"
	"kycdocs/internal/extractor"
	extractorgemini "kycdocs/internal/extractor/gemini"
	extractoropenai "kycdocs/internal/extractor/openai"
	"kycdocs/internal/handler"
	"kycdocs/internal/ocr"
	"kycdocs/internal/pipeline"
	"kycdocs/internal/port"
	"kycdocs/internal/router"
	s3storage "kycdocs/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func registerProviders() {
	classifier.RegisterProvider("openai", func(cfg *config.ProviderConfig) (port.PageClassifier, error) {
		return classifieropenai.NewClassifier(cfg), nil
	})
	classifier.RegisterProvider("gemini", func(cfg *config.ProviderConfig) (port.PageClassifier, error) {
		return classifiergemini.NewClassifier(cfg), nil
	})
	extractor.RegisterProvider("openai", func(cfg *config.ProviderConfig) (port.EntityExtractor, error) {
		return extractoropenai.NewExtractor(cfg), nil
	})
	extractor.RegisterProvider("gemini", func(cfg *config.ProviderConfig) (port.EntityExtractor, error) {
		return extractorgemini.NewExtractor(cfg), nil
	})
}

func run() error {
	// Best effort: a missing .env file is fine in deployed environments.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	table, err := doctype.Load(cfg.Doctype.TablePath)
	if err != nil {
		return fmt.Errorf("failed to load document-type table: %w", err)
	}

	registerProviders()

	primaryClassifier, err := classifier.NewClassifier(&cfg.Classifier.Primary)
	if err != nil {
		return fmt.Errorf("failed to build primary classifier: %w", err)
	}
	var secondaryClassifier port.PageClassifier
	if sec := cfg.Classifier.SecondaryConfig(); sec != nil {
		secondaryClassifier, err = classifier.NewClassifier(sec)
		if err != nil {
			return fmt.Errorf("failed to build secondary classifier: %w", err)
		}
	}

	primaryExtractor, err := extractor.NewExtractor(&cfg.Extractor.Primary)
	if err != nil {
		return fmt.Errorf("failed to build primary extractor: %w", err)
	}
	var secondaryExtractor port.EntityExtractor
	if sec := cfg.Extractor.SecondaryConfig(); sec != nil {
		secondaryExtractor, err = extractor.NewExtractor(sec)
		if err != nil {
			return fmt.Errorf("failed to build secondary extractor: %w", err)
		}
	}

	var archive port.ObjectStorage
	if cfg.S3.Enabled() {
		archive, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	p := pipeline.New(pipeline.Options{
		OCR:                 ocr.NewClient(&cfg.OCR),
		PrimaryClassifier:   primaryClassifier,
		SecondaryClassifier: secondaryClassifier,
		PrimaryExtractor:    primaryExtractor,
		SecondaryExtractor:  secondaryExtractor,
		Table:               table,
		PageConcurrency:     cfg.Pipeline.PageConcurrency,
	})

	processH := handler.NewProcessHandler(p, table, archive, cfg.S3.Bucket, cfg.Server.MaxUploadMB)
	doctypeH := handler.NewDoctypeHandler(table)
	healthH := handler.NewHealthHandler()

	r := router.Setup(processH, doctypeH, healthH, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
