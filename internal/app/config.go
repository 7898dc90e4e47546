package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/linkcheck/internal/executor"
	"github.com/specialistvlad/linkcheck/internal/prober"
	"github.com/specialistvlad/linkcheck/internal/table"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	InputPath    string
	InputFormat  table.Format // empty: detect from extension
	InputSheet   string       // empty: first sheet
	OutputPath   string
	OutputFormat table.Format
	OutputSheet  string
	Columns      int

	WorkerCount   int
	Timeout       time.Duration
	RateLimit     float64 // requests per second, 0 = unlimited
	UserAgent     string
	SingleRequest bool

	ProgressURL                string
	ProgressNamespace          string
	ProgressInsecureSkipVerify bool

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates cfg and fills in defaults for optional fields.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.InputPath == "" {
		return nil, errors.New("InputPath is a required configuration field and cannot be empty")
	}
	if cfg.OutputPath == "" {
		return nil, errors.New("OutputPath is a required configuration field and cannot be empty")
	}
	if cfg.InputPath == cfg.OutputPath {
		return nil, errors.New("OutputPath must differ from InputPath")
	}
	if cfg.Columns < 1 {
		return nil, fmt.Errorf("Columns must be at least 1, got %d", cfg.Columns)
	}
	if cfg.WorkerCount < 0 {
		return nil, fmt.Errorf("WorkerCount cannot be negative, got %d", cfg.WorkerCount)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("Timeout cannot be negative, got %s", cfg.Timeout)
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("RateLimit cannot be negative, got %g", cfg.RateLimit)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("HealthcheckPort out of range: %d", cfg.HealthcheckPort)
	}

	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = executor.DefaultWorkers
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = prober.DefaultTimeout
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}

	return &cfg, nil
}
