package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/accdata/sheetscan/internal/config"
	"github.com/accdata/sheetscan/internal/metrics"
	"github.com/accdata/sheetscan/internal/ocr"
	"github.com/accdata/sheetscan/internal/pipeline"
	"github.com/accdata/sheetscan/internal/store/sqlite"
)

var (
	version   = "dev"     // set by build flags
	buildTime = "unknown" // set by build flags
)

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			fmt.Printf("sheetscan %s (built %s)\n", version, buildTime)
			return
		}
	}

	// Azure credentials and other secrets come from the environment; a
	// local .env is a convenience, not a requirement.
	_ = godotenv.Load()

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	metrics.Register()
	if cfg.MetricsAddr != "" {
		go serveMetrics(logger, cfg.MetricsAddr)
	}

	store, err := sqlite.NewStore(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to open record store", zap.Error(err))
	}
	defer store.Close()

	paths, err := collectDocuments(cfg.InputDirectory)
	if err != nil {
		logger.Fatal("Failed to scan input directory", zap.Error(err))
	}
	if len(paths) == 0 {
		logger.Warn("No supported documents found", zap.String("dir", cfg.InputDirectory))
		return
	}

	logger.Info("Starting extraction",
		zap.String("dir", cfg.InputDirectory),
		zap.Int("documents", len(paths)),
		zap.Int("workers", cfg.Workers),
		zap.String("ocr_engine", cfg.OCREngine))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(cfg, logger, buildEngine(cfg))
	start := time.Now()
	records := p.ProcessBatch(ctx, paths, cfg.Workers)

	var parsed, failed, elements int
	for _, rec := range records {
		if err := store.SaveRecord(ctx, rec); err != nil {
			logger.Error("Failed to save record",
				zap.String("doc", rec.DocName), zap.Error(err))
			continue
		}
		if rec.Parsed {
			parsed++
		} else {
			failed++
		}
		elements += len(rec.Elements)
	}

	logger.Info("Extraction complete",
		zap.Int("parsed", parsed),
		zap.Int("failed", failed),
		zap.Int("elements", elements),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("db", store.Path()))
}

// newLogger builds a production zap logger at the configured level.
func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.Set(level); err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

// buildEngine selects the configured OCR collaborator.
func buildEngine(cfg *config.Config) ocr.Engine {
	timeout := time.Duration(cfg.OCRTimeoutSec) * time.Second
	if cfg.OCREngine == config.EngineAzure {
		return ocr.NewAzureEngine(cfg.AzureEndpoint, cfg.AzureKey, timeout)
	}
	return ocr.NewTesseractEngine(cfg.TesseractBinary, cfg.OCRLanguage, timeout)
}

// collectDocuments walks the input directory for supported filings.
func collectDocuments(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && pipeline.Supported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	return paths, nil
}

func serveMetrics(logger *zap.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("Serving metrics", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Metrics listener stopped", zap.Error(err))
	}
}
