package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/vk/prefstore/internal/app"
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

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("prefstore", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
prefstore - A typed, debounced preference store.

Usage:
  prefstore [options]

Options:
`)
		flagSet.PrintDefaults()
	}

	appNameFlag := flagSet.String("app-name", "", "Application name used for the storage location.")
	orgNameFlag := flagSet.String("org-name", "", "Optional organization name scoping the storage location.")
	storageFlag := flagSet.String("storage", "file", "Storage backend. Options: 'file', 'remote', 'memory' or 'none'.")
	storageDirFlag := flagSet.String("storage-dir", "", "Override the parent directory of the preferences directory for the file backend.")
	formatFlag := flagSet.String("format", "hcl", "Document format. Options: 'hcl' or 'json'.")
	remoteURLFlag := flagSet.String("remote-url", "", "Sync service URL for the remote backend.")
	remoteInsecureFlag := flagSet.Bool("remote-insecure", false, "Skip TLS verification for the remote backend.")
	saveIntervalFlag := flagSet.Duration("save-interval", time.Second, "Minimum interval between saves.")
	tickRateFlag := flagSet.Duration("tick-rate", 100*time.Millisecond, "How often the scheduler is stepped.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if *appNameFlag == "" {
		slog.Debug("No app name provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		AppName:                  *appNameFlag,
		OrgName:                  *orgNameFlag,
		Storage:                  strings.ToLower(*storageFlag),
		StorageDir:               *storageDirFlag,
		Format:                   strings.ToLower(*formatFlag),
		RemoteURL:                *remoteURLFlag,
		RemoteInsecureSkipVerify: *remoteInsecureFlag,
		SaveInterval:             *saveIntervalFlag,
		TickRate:                 *tickRateFlag,
		LogFormat:                logFormat,
		LogLevel:                 logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.")
	return config, false, nil
}
