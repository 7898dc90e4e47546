package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/linkcheck/internal/config"
	"github.com/stretchr/testify/require"
)

func TestParse_FullFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	src := `
		columns          = 3
		workers          = 64
		timeout          = "2s"
		rate_limit       = 12.5
		user_agent       = "linkcheck/${env.VERSION}"
		single_request   = true
		healthcheck_port = 8080

		input {
			path  = "${env.DATA}/links.xlsx"
			sheet = "Links"
		}

		output {
			path   = "out.csv"
			format = upper("csv")
		}

		progress {
			url                  = lower(env.PROGRESS)
			namespace            = "/runs"
			insecure_skip_verify = true
		}

		log {
			level  = "debug"
			format = "text"
		}
	`
	env := map[string]string{"VERSION": "1.2.3", "DATA": "/data", "PROGRESS": "HTTP://LOCALHOST:3000"}

	// --- Act ---
	f, err := config.Parse(context.Background(), []byte(src), "test.hcl", env)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, 3, *f.Columns)
	require.Equal(t, 64, *f.Workers)
	require.Equal(t, "2s", *f.Timeout)
	require.Equal(t, 12.5, *f.RateLimit)
	require.Equal(t, "linkcheck/1.2.3", *f.UserAgent)
	require.True(t, *f.SingleRequest)
	require.Equal(t, 8080, *f.HealthcheckPort)

	require.NotNil(t, f.Input)
	require.Equal(t, "/data/links.xlsx", *f.Input.Path)
	require.Nil(t, f.Input.Format)
	require.Equal(t, "Links", *f.Input.Sheet)

	require.Equal(t, "CSV", *f.Output.Format)
	require.Equal(t, "http://localhost:3000", *f.Progress.URL)
	require.Equal(t, "/runs", *f.Progress.Namespace)
	require.True(t, *f.Progress.InsecureSkipVerify)
	require.Equal(t, "debug", *f.Log.Level)
}

func TestParse_EmptyFileLeavesEverythingUnset(t *testing.T) {
	t.Parallel()

	f, err := config.Parse(context.Background(), nil, "empty.hcl", nil)

	require.NoError(t, err)
	require.Nil(t, f.Columns)
	require.Nil(t, f.Workers)
	require.Nil(t, f.Input)
	require.Nil(t, f.Progress)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		src  string
	}{
		{name: "syntax error", src: `columns = `},
		{name: "unknown attribute", src: `colums = 3`},
		{name: "wrong type", src: `workers = "many"`},
		{name: "missing env var", src: `user_agent = env.NOT_SET`},
		{name: "duplicate block", src: "input {}\ninput {}"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.Parse(context.Background(), []byte(tc.src), "bad.hcl", map[string]string{})

			require.Error(t, err)
			require.Contains(t, err.Error(), "bad.hcl")
		})
	}
}

func TestLoad_ReadsFileFromDisk(t *testing.T) {
	t.Setenv("LINKCHECK_TEST_WORKERS", "7")

	path := filepath.Join(t.TempDir(), "linkcheck.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`workers = env.LINKCHECK_TEST_WORKERS`), 0o600))

	f, err := config.Load(context.Background(), path)

	require.NoError(t, err)
	require.Equal(t, 7, *f.Workers)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(context.Background(), filepath.Join(t.TempDir(), "missing.hcl"))

	require.ErrorIs(t, err, os.ErrNotExist)
}
