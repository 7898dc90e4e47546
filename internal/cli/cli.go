package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/specialistvlad/linkcheck/internal/app"
	"github.com/specialistvlad/linkcheck/internal/config"
	"github.com/specialistvlad/linkcheck/internal/executor"
	"github.com/specialistvlad/linkcheck/internal/prober"
	"github.com/specialistvlad/linkcheck/internal/table"
)

// Exit codes used by the linkcheck binary.
const (
	ExitFailure     = 1
	ExitUsage       = 2
	ExitInterrupted = 130
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: ExitUsage, Message: fmt.Sprintf(format, args...)}
}

// settings collects values from defaults, the config file and flags, in that
// order of increasing precedence.
type settings struct {
	configPath        string
	input             string
	output            string
	inputFormat       string
	outputFormat      string
	inputSheet        string
	outputSheet       string
	columns           int
	workers           int
	timeout           time.Duration
	rate              float64
	userAgent         string
	singleRequest     bool
	progressURL       string
	progressNamespace string
	progressInsecure  bool
	healthPort        int
	logFormat         string
	logLevel          string
}

// Parse processes command-line arguments. It returns a populated AppConfig,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("linkcheck", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
linkcheck - Checks the links of a spreadsheet and reports status codes and redirects.

Usage:
  linkcheck [options] <input> <output> <columns>
  linkcheck [options] -input links.csv -output report.csv -columns 3
  linkcheck -config linkcheck.hcl

Arguments:
  input     CSV or XLSX file whose first row is a header.
  output    File to write; each link becomes link, status code, redirect.
  columns   Number of leading columns holding links.

Options:
`)
		flagSet.PrintDefaults()
	}

	s := settings{
		outputSheet: table.DefaultSheet,
		workers:     executor.DefaultWorkers,
		timeout:     prober.DefaultTimeout,
		logFormat:   "json",
		logLevel:    "info",
	}
	var sheet string

	flagSet.StringVar(&s.configPath, "config", "", "Path to an HCL configuration file.")
	flagSet.StringVar(&s.configPath, "c", "", "Path to an HCL configuration file (shorthand).")
	flagSet.StringVar(&s.input, "input", "", "Path to the input table.")
	flagSet.StringVar(&s.input, "i", "", "Path to the input table (shorthand).")
	flagSet.StringVar(&s.output, "output", "", "Path to the output table.")
	flagSet.StringVar(&s.output, "o", "", "Path to the output table (shorthand).")
	flagSet.IntVar(&s.columns, "columns", 0, "Number of leading columns holding links.")
	flagSet.IntVar(&s.columns, "n", 0, "Number of leading columns holding links (shorthand).")
	flagSet.StringVar(&s.inputFormat, "input-format", "", "Input format: 'csv' or 'xlsx'. Detected from the extension when empty.")
	flagSet.StringVar(&s.outputFormat, "output-format", "", "Output format: 'csv' or 'xlsx'. Detected from the extension when empty.")
	flagSet.StringVar(&sheet, "sheet", "", "Sheet name for XLSX input and output. Input defaults to the first sheet, output to "+table.DefaultSheet+".")
	flagSet.IntVar(&s.workers, "workers", s.workers, "Number of concurrent probe workers.")
	flagSet.DurationVar(&s.timeout, "timeout", s.timeout, "Timeout of a single HEAD request.")
	flagSet.Float64Var(&s.rate, "rate", 0, "Maximum requests per second. 0 is unlimited.")
	flagSet.StringVar(&s.userAgent, "user-agent", "", "User-Agent header sent with probes.")
	flagSet.BoolVar(&s.singleRequest, "single-request", false, "Derive status and redirect from one HEAD request per link.")
	flagSet.StringVar(&s.progressURL, "progress-url", "", "socket.io server that receives progress events. Empty is disabled.")
	flagSet.StringVar(&s.progressNamespace, "progress-namespace", "/", "socket.io namespace for progress events.")
	flagSet.BoolVar(&s.progressInsecure, "progress-insecure", false, "Skip TLS certificate verification of the progress server.")
	flagSet.IntVar(&s.healthPort, "healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	flagSet.StringVar(&s.logFormat, "log-format", s.logFormat, "Log output format. Options: 'text' or 'json'.")
	flagSet.StringVar(&s.logLevel, "log-level", s.logLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	set := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) { set[f.Name] = true })
	isSet := func(names ...string) bool {
		for _, name := range names {
			if set[name] {
				return true
			}
		}
		return false
	}
	if isSet("sheet") {
		s.inputSheet, s.outputSheet = sheet, sheet
	}

	switch flagSet.NArg() {
	case 0:
	case 3:
		columns, err := strconv.Atoi(flagSet.Arg(2))
		if err != nil {
			return nil, false, usageError("invalid columns argument %q: must be an integer", flagSet.Arg(2))
		}
		s.input, s.output, s.columns = flagSet.Arg(0), flagSet.Arg(1), columns
		set["input"], set["output"], set["columns"] = true, true, true
	default:
		return nil, false, usageError("expected 3 positional arguments <input> <output> <columns>, got %d", flagSet.NArg())
	}

	if s.configPath != "" {
		file, err := config.Load(context.Background(), s.configPath)
		if err != nil {
			return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
		}
		if err := applyFile(&s, file, isSet); err != nil {
			return nil, false, err
		}
		slog.Debug("Config file merged.", "path", s.configPath)
	}

	if s.input == "" && s.output == "" && s.columns == 0 {
		slog.Debug("No input provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(s.logFormat)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(s.logLevel)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	inputFormat, err := table.ParseFormat(s.inputFormat)
	if err != nil {
		return nil, false, usageError("invalid input-format: %v", err)
	}
	outputFormat, err := table.ParseFormat(s.outputFormat)
	if err != nil {
		return nil, false, usageError("invalid output-format: %v", err)
	}
	slog.Debug("CLI parameter validation complete.")

	cfg, err := app.NewConfig(app.Config{
		InputPath:                  s.input,
		InputFormat:                inputFormat,
		InputSheet:                 s.inputSheet,
		OutputPath:                 s.output,
		OutputFormat:               outputFormat,
		OutputSheet:                s.outputSheet,
		Columns:                    s.columns,
		WorkerCount:                s.workers,
		Timeout:                    s.timeout,
		RateLimit:                  s.rate,
		UserAgent:                  s.userAgent,
		SingleRequest:              s.singleRequest,
		ProgressURL:                s.progressURL,
		ProgressNamespace:          s.progressNamespace,
		ProgressInsecureSkipVerify: s.progressInsecure,
		HealthcheckPort:            s.healthPort,
		LogFormat:                  logFormat,
		LogLevel:                   logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, false, nil
}

// applyFile copies values from the config file into s, skipping every value
// whose flag was given on the command line.
func applyFile(s *settings, f *config.File, isSet func(names ...string) bool) error {
	setString := func(dst *string, src *string, names ...string) {
		if src != nil && !isSet(names...) {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int, names ...string) {
		if src != nil && !isSet(names...) {
			*dst = *src
		}
	}

	setInt(&s.columns, f.Columns, "columns", "n")
	setInt(&s.workers, f.Workers, "workers")
	setInt(&s.healthPort, f.HealthcheckPort, "healthcheck-port")
	setString(&s.userAgent, f.UserAgent, "user-agent")

	if f.Timeout != nil && !isSet("timeout") {
		d, err := time.ParseDuration(*f.Timeout)
		if err != nil {
			return usageError("invalid timeout %q in config file: %v", *f.Timeout, err)
		}
		s.timeout = d
	}
	if f.RateLimit != nil && !isSet("rate") {
		s.rate = *f.RateLimit
	}
	if f.SingleRequest != nil && !isSet("single-request") {
		s.singleRequest = *f.SingleRequest
	}

	if in := f.Input; in != nil {
		setString(&s.input, in.Path, "input", "i")
		setString(&s.inputFormat, in.Format, "input-format")
		setString(&s.inputSheet, in.Sheet, "sheet")
	}
	if out := f.Output; out != nil {
		setString(&s.output, out.Path, "output", "o")
		setString(&s.outputFormat, out.Format, "output-format")
		setString(&s.outputSheet, out.Sheet, "sheet")
	}
	if p := f.Progress; p != nil {
		setString(&s.progressURL, p.URL, "progress-url")
		setString(&s.progressNamespace, p.Namespace, "progress-namespace")
		if p.InsecureSkipVerify != nil && !isSet("progress-insecure") {
			s.progressInsecure = *p.InsecureSkipVerify
		}
	}
	if l := f.Log; l != nil {
		setString(&s.logLevel, l.Level, "log-level")
		setString(&s.logFormat, l.Format, "log-format")
	}
	return nil
}
