package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/specialistvlad/pipewright/internal/app"
	"github.com/specialistvlad/pipewright/internal/cli"
	"github.com/specialistvlad/pipewright/internal/hcl"
	"github.com/specialistvlad/pipewright/internal/report"
)

// main is the entrypoint for the pipewright application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	code, err := run(os.Stdout, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(code)
}

// run encapsulates the main application logic for easier testing and error
// handling. The returned code is the process exit status: 0 on success, 1
// when the pipeline failed honestly, 2 for invalid input or infrastructure
// faults.
func run(outW io.Writer, args []string) (code int, err error) {
	appConfig, shouldExit, parseErr := cli.Parse(args, outW)
	if parseErr != nil {
		if exitErr, ok := parseErr.(*cli.ExitError); ok {
			return exitErr.Code, exitErr
		}
		return report.ExitInfrastructure, parseErr
	}
	if shouldExit {
		return report.ExitSuccess, nil
	}

	// Startup programmer errors surface as panics; recover so the user
	// gets a clean message instead of a stack trace.
	defer func() {
		if r := recover(); r != nil {
			code = report.ExitInfrastructure
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	pipewrightApp := app.NewApp(outW, appConfig, hcl.NewLoader(), nil)
	return pipewrightApp.Run(context.Background())
}
