// Command statementctl normalizes bank and credit card statements.
//
// Usage:
//
//	statementctl parse -format N [-kind K] [-xlsx out.xlsx] [-store -user UUID] FILE
//	statementctl formats
//	statementctl receipt FIELDS.json
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/FACorreiaa/statement-normalizer/pkg/config"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Error loading .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// stdout carries command output, logs go to stderr
	logger := newLogger(cfg.Log, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := InitDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}

	code := run(ctx, deps, os.Args[1:], os.Stdout)
	deps.Cleanup()
	os.Exit(code)
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// run dispatches a subcommand and returns the process exit code.
func run(ctx context.Context, deps *Dependencies, args []string, stdout io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "parse":
		err = runParse(ctx, deps, args[1:], stdout)
	case "formats":
		err = runFormats(deps, stdout)
	case "receipt":
		err = runReceipt(deps, args[1:], stdout)
	case "help", "-h", "--help":
		fmt.Fprintln(stdout, usage)
		return 0
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usage)
		return 2
	default:
		deps.Logger.Error("command failed", slog.String("command", args[0]), slog.Any("error", err))
		return 1
	}
}

const usage = `usage:
  statementctl parse -format N [-kind K] [-xlsx out.xlsx] [-store -user UUID] FILE
  statementctl formats
  statementctl receipt FIELDS.json`
