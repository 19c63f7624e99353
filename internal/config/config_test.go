package config

import (
	"os"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Workers != DefaultWorkers {
		t.Errorf("Expected default workers to be %d, got %d", DefaultWorkers, cfg.Workers)
	}

	if cfg.OCREngine != EngineTesseract {
		t.Errorf("Expected default OCR engine to be '%s', got '%s'", EngineTesseract, cfg.OCREngine)
	}

	if cfg.TesseractBinary != "tesseract" {
		t.Errorf("Expected default tesseract binary to be 'tesseract', got '%s'", cfg.TesseractBinary)
	}

	if cfg.OCRLanguage != "eng" {
		t.Errorf("Expected default OCR language to be 'eng', got '%s'", cfg.OCRLanguage)
	}

	if cfg.OCRTimeoutSec != DefaultOCRTimeoutSec {
		t.Errorf("Expected default OCR timeout to be %d, got %d", DefaultOCRTimeoutSec, cfg.OCRTimeoutSec)
	}

	if cfg.PageScoreThreshold != DefaultPageScoreThreshold {
		t.Errorf("Expected default page threshold to be %v, got %v", DefaultPageScoreThreshold, cfg.PageScoreThreshold)
	}

	if cfg.LineTolerance != DefaultLineTolerance {
		t.Errorf("Expected default line tolerance to be %v, got %v", DefaultLineTolerance, cfg.LineTolerance)
	}

	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("Expected default log level to be '%s', got '%s'", DefaultLogLevel, cfg.LogLevel)
	}

	if cfg.DatabasePath != "sheetscan.db" {
		t.Errorf("Expected default database path to be 'sheetscan.db', got '%s'", cfg.DatabasePath)
	}

	// Input directory defaults to the current working directory
	currentDir, _ := os.Getwd()
	if cfg.InputDirectory != currentDir {
		t.Errorf("Expected default input directory to be '%s', got '%s'", currentDir, cfg.InputDirectory)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.InputDirectory = t.TempDir()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "empty input directory",
			mutate:  func(c *Config) { c.InputDirectory = "" },
			wantErr: true,
		},
		{
			name:    "nonexistent input directory",
			mutate:  func(c *Config) { c.InputDirectory = "/nonexistent/path/that/does/not/exist" },
			wantErr: true,
		},
		{
			name:    "empty database path",
			mutate:  func(c *Config) { c.DatabasePath = "" },
			wantErr: true,
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Workers = 0 },
			wantErr: true,
		},
		{
			name:    "unknown ocr engine",
			mutate:  func(c *Config) { c.OCREngine = "textract" },
			wantErr: true,
		},
		{
			name: "azure engine without credentials",
			mutate: func(c *Config) {
				c.OCREngine = EngineAzure
				c.AzureEndpoint = ""
				c.AzureKey = ""
			},
			wantErr: true,
		},
		{
			name: "azure engine with credentials",
			mutate: func(c *Config) {
				c.OCREngine = EngineAzure
				c.AzureEndpoint = "https://example.cognitiveservices.azure.com/"
				c.AzureKey = "key"
			},
			wantErr: false,
		},
		{
			name:    "negative ocr timeout",
			mutate:  func(c *Config) { c.OCRTimeoutSec = -1 },
			wantErr: true,
		},
		{
			name:    "zero page threshold",
			mutate:  func(c *Config) { c.PageScoreThreshold = 0 },
			wantErr: true,
		},
		{
			name:    "zero line tolerance",
			mutate:  func(c *Config) { c.LineTolerance = 0 },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigIsDebug(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.IsDebug() {
		t.Error("Expected IsDebug to be false for info level")
	}

	cfg.LogLevel = "debug"
	if !cfg.IsDebug() {
		t.Error("Expected IsDebug to be true for debug level")
	}
}

func TestConfigString(t *testing.T) {
	cfg := DefaultConfig()
	s := cfg.String()
	if s == "" {
		t.Error("Expected non-empty string representation")
	}
}
