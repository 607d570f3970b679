package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/prefstore/internal/app"
	"github.com/vk/prefstore/internal/cli"
	"github.com/vk/prefstore/plugins/appearance"
	"github.com/vk/prefstore/plugins/telemetry"
)

// main is the entrypoint for the prefstore demo application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical config errors, so we recover here to provide
	// a clean exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(outW, "A critical startup error occurred: %v\n", r)
			os.Exit(1)
		}
	}()

	prefsApp := app.NewApp(outW, appConfig, appearance.New(), telemetry.New())

	// Each launch bumps the session counter so the demo always has a
	// pending change for the scheduler to flush.
	telemetry.Update(prefsApp.Store(), func(p *telemetry.Preferences) {
		p.SessionCount++
	})
	look := appearance.Get(prefsApp.Store())
	fmt.Fprintf(outW, "theme=%s sessions=%d\n", look.Theme, telemetry.Get(prefsApp.Store()).SessionCount)

	// The OS signal is the shutdown override: it forces a final flush even
	// if the debounce interval has not elapsed.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return prefsApp.Run(ctx)
}
