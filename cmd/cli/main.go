package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/fwgen/internal/app"
	"github.com/vk/fwgen/internal/cli"
)

// main is the entrypoint for the fwgen application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. Generated code and dumps go to outW; logs and diagnostics to errW.
func run(outW, errW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	defer recoverPanic(&err)

	fwgen := app.NewApp(outW, errW, appConfig)
	return fwgen.Run(context.Background())
}

// recoverPanic turns a panic in NewApp (an unusable module definition) or in
// Run into a regular error.
func recoverPanic(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("fwgen panicked: %v", r)
	}
}
