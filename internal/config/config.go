package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// OCR engine names
	EngineTesseract = "tesseract"
	EngineAzure     = "azure"

	// Default values
	DefaultWorkers            = 4
	DefaultOCRTimeoutSec      = 120
	DefaultLogLevel           = "info"
	DefaultPageScoreThreshold = 2.0
	DefaultLineTolerance      = 10.0
)

// Config holds all configuration for the extraction pipeline
type Config struct {
	// Input/output
	InputDirectory string
	DatabasePath   string

	// Batch configuration
	Workers int

	// OCR configuration
	OCREngine       string // "tesseract" or "azure"
	TesseractBinary string
	OCRLanguage     string
	OCRTimeoutSec   int
	AzureEndpoint   string
	AzureKey        string

	// Imaged-path tuning
	PageScoreThreshold float64
	LineTolerance      float64

	// Application configuration
	LogLevel    string
	MetricsAddr string // empty disables the /metrics listener
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		InputDirectory:     currentDir,
		DatabasePath:       "sheetscan.db",
		Workers:            DefaultWorkers,
		OCREngine:          EngineTesseract,
		TesseractBinary:    "tesseract",
		OCRLanguage:        "eng",
		OCRTimeoutSec:      DefaultOCRTimeoutSec,
		PageScoreThreshold: DefaultPageScoreThreshold,
		LineTolerance:      DefaultLineTolerance,
		LogLevel:           DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()

	pflag.Parse()

	populateConfigFromViper(cfg)

	if cfg.InputDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.InputDirectory); err == nil {
			cfg.InputDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("SHEETSCAN")
	viper.AutomaticEnv()

	viper.SetDefault("dir", cfg.InputDirectory)
	viper.SetDefault("db", cfg.DatabasePath)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("ocr_engine", cfg.OCREngine)
	viper.SetDefault("tesseract", cfg.TesseractBinary)
	viper.SetDefault("ocr_language", cfg.OCRLanguage)
	viper.SetDefault("ocr_timeout", cfg.OCRTimeoutSec)
	viper.SetDefault("azure_endpoint", cfg.AzureEndpoint)
	viper.SetDefault("azure_key", cfg.AzureKey)
	viper.SetDefault("page_threshold", cfg.PageScoreThreshold)
	viper.SetDefault("line_tolerance", cfg.LineTolerance)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("metrics_addr", cfg.MetricsAddr)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("dir", cfg.InputDirectory, "Directory containing filings to extract")
	pflag.String("db", cfg.DatabasePath, "SQLite database path for extracted records")
	pflag.Int("workers", cfg.Workers, "Number of documents processed in parallel")
	pflag.String("ocr-engine", cfg.OCREngine, "OCR engine: 'tesseract' or 'azure'")
	pflag.String("tesseract", cfg.TesseractBinary, "Tesseract binary path")
	pflag.String("ocr-language", cfg.OCRLanguage, "OCR recognition language")
	pflag.Int("ocr-timeout", cfg.OCRTimeoutSec, "OCR call timeout in seconds")
	pflag.Float64("page-threshold", cfg.PageScoreThreshold, "Balance-sheet page score threshold")
	pflag.Float64("line-tolerance", cfg.LineTolerance, "Row clustering vertical tolerance in pixels")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.String("metrics-addr", cfg.MetricsAddr, "Prometheus listen address (empty disables)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("dir", pflag.Lookup("dir"))
	_ = viper.BindPFlag("db", pflag.Lookup("db"))
	_ = viper.BindPFlag("workers", pflag.Lookup("workers"))
	_ = viper.BindPFlag("ocr_engine", pflag.Lookup("ocr-engine"))
	_ = viper.BindPFlag("tesseract", pflag.Lookup("tesseract"))
	_ = viper.BindPFlag("ocr_language", pflag.Lookup("ocr-language"))
	_ = viper.BindPFlag("ocr_timeout", pflag.Lookup("ocr-timeout"))
	_ = viper.BindPFlag("page_threshold", pflag.Lookup("page-threshold"))
	_ = viper.BindPFlag("line_tolerance", pflag.Lookup("line-tolerance"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("metrics_addr", pflag.Lookup("metrics-addr"))
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.InputDirectory = viper.GetString("dir")
	cfg.DatabasePath = viper.GetString("db")
	cfg.Workers = viper.GetInt("workers")
	cfg.OCREngine = viper.GetString("ocr_engine")
	cfg.TesseractBinary = viper.GetString("tesseract")
	cfg.OCRLanguage = viper.GetString("ocr_language")
	cfg.OCRTimeoutSec = viper.GetInt("ocr_timeout")
	cfg.AzureEndpoint = viper.GetString("azure_endpoint")
	cfg.AzureKey = viper.GetString("azure_key")
	cfg.PageScoreThreshold = viper.GetFloat64("page_threshold")
	cfg.LineTolerance = viper.GetFloat64("line_tolerance")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MetricsAddr = viper.GetString("metrics_addr")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.InputDirectory == "" {
		return errors.New("input directory cannot be empty")
	}
	if info, err := os.Stat(c.InputDirectory); err != nil {
		return fmt.Errorf("cannot access input directory %s: %w", c.InputDirectory, err)
	} else if !info.IsDir() {
		return fmt.Errorf("input path is not a directory: %s", c.InputDirectory)
	}

	if c.DatabasePath == "" {
		return errors.New("database path cannot be empty")
	}

	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}

	if c.OCREngine != EngineTesseract && c.OCREngine != EngineAzure {
		return fmt.Errorf("ocr engine must be either '%s' or '%s'", EngineTesseract, EngineAzure)
	}
	if c.OCREngine == EngineAzure && (c.AzureEndpoint == "" || c.AzureKey == "") {
		return errors.New("azure engine requires SHEETSCAN_AZURE_ENDPOINT and SHEETSCAN_AZURE_KEY")
	}

	if c.OCRTimeoutSec <= 0 {
		return errors.New("ocr timeout must be positive")
	}
	if c.PageScoreThreshold <= 0 {
		return errors.New("page score threshold must be positive")
	}
	if c.LineTolerance <= 0 {
		return errors.New("line tolerance must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{InputDirectory: %s, DatabasePath: %s, Workers: %d, OCREngine: %s, LogLevel: %s}",
		c.InputDirectory, c.DatabasePath, c.Workers, c.OCREngine, c.LogLevel)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}
