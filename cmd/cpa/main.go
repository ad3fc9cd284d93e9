package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/config"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/db"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/mcp"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/metrics"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/ops"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"add": true, "import": true, "export": true,
	"envelopes": true, "cards": true, "card": true,
	"analyze": true, "recommendations": true, "clear-recommendations": true,
	"suggest-name": true, "context": true,
	"watch": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v"
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a short banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___ ___  __ _
  / __| _ \/ _' |
 | (__|  _/ (_| |
  \___|_|  \__,_|

  Contextual personal assistant

  Usage: cpa <command> [options]
         cpa --help

  MCP server mode requires piped input.`)
}

// baseDir returns $CPA_HOME, or ~/.cpa.
func baseDir() (string, error) {
	if dir := os.Getenv("CPA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".cpa"), nil
}

func main() {
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// --help/--version need no database
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	dir, err := baseDir()
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = dir
	}
	cfg, err := config.LoadWithRepo(dir, cwd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// stdout carries JSON results and MCP traffic
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("unknown tools in disabled_tools", "tools", unknown)
	}

	database, err := db.Init(dir)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	reg := prometheus.NewRegistry()
	svc, err := ops.New(context.Background(), database, cfg, dir, ops.Options{
		Logger:  logger,
		Metrics: metrics.New(reg),
	})
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	if isCLIMode() {
		return newCLIApp(svc, reg).Run(os.Args)
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		return fmt.Errorf("unknown command %q; run 'cpa --help' for usage", os.Args[1])
	}

	return mcp.Run(svc, Version)
}
