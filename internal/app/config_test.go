package app

import (
	"testing"
	"time"

	"github.com/specialistvlad/linkcheck/internal/executor"
	"github.com/specialistvlad/linkcheck/internal/prober"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	valid := Config{InputPath: "in.csv", OutputPath: "out.csv", Columns: 2}

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing input", mutate: func(c *Config) { c.InputPath = "" }, wantErr: "InputPath"},
		{name: "missing output", mutate: func(c *Config) { c.OutputPath = "" }, wantErr: "OutputPath"},
		{name: "same input and output", mutate: func(c *Config) { c.OutputPath = c.InputPath }, wantErr: "must differ"},
		{name: "zero columns", mutate: func(c *Config) { c.Columns = 0 }, wantErr: "Columns"},
		{name: "negative workers", mutate: func(c *Config) { c.WorkerCount = -1 }, wantErr: "WorkerCount"},
		{name: "negative timeout", mutate: func(c *Config) { c.Timeout = -time.Second }, wantErr: "Timeout"},
		{name: "negative rate", mutate: func(c *Config) { c.RateLimit = -1 }, wantErr: "RateLimit"},
		{name: "port out of range", mutate: func(c *Config) { c.HealthcheckPort = 70000 }, wantErr: "HealthcheckPort"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tc.mutate(&cfg)

			got, err := NewConfig(cfg)

			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				require.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
		})
	}
}

func TestNewConfig_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(Config{InputPath: "in.csv", OutputPath: "out.csv", Columns: 1})

	require.NoError(t, err)
	require.Equal(t, executor.DefaultWorkers, cfg.WorkerCount)
	require.Equal(t, prober.DefaultTimeout, cfg.Timeout)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
}

func TestNewConfig_KeepsExplicitValues(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(Config{
		InputPath:   "in.csv",
		OutputPath:  "out.csv",
		Columns:     1,
		WorkerCount: 4,
		Timeout:     time.Second,
		LogLevel:    "debug",
		LogFormat:   "text",
	})

	require.NoError(t, err)
	require.Equal(t, 4, cfg.WorkerCount)
	require.Equal(t, time.Second, cfg.Timeout)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "text", cfg.LogFormat)
}
