// Package main runs the directory memory tool server over stdio.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	internal "github.com/ZanzyTHEbar/dirmem/dirmem"
	"github.com/ZanzyTHEbar/dirmem/dirmem/config"
	"github.com/ZanzyTHEbar/dirmem/dirmem/mcp"
	"github.com/ZanzyTHEbar/dirmem/dirmem/memory"
)

// Flags holds the command line options
type Flags struct {
	ConfigPath  string
	LogLevel    string
	ShowVersion bool
}

func parseFlags() *Flags {
	f := &Flags{}
	flag.StringVar(&f.ConfigPath, "config", "", "Path to a config file (default: search ., .., etc/dirmem, ~/.config/dirmem)")
	flag.StringVar(&f.LogLevel, "log-level", "", "Override the configured log level")
	flag.BoolVar(&f.ShowVersion, "version", false, "Show version information")
	flag.Parse()
	return f
}

func main() {
	flags := parseFlags()

	if flags.ShowVersion {
		fmt.Printf("%s v%s\n", internal.DefaultAppName, internal.DefaultAppVersion)
		return
	}

	if err := run(flags); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", internal.DefaultAppName, err)
		os.Exit(1)
	}
}

func run(flags *Flags) error {
	cfg, err := config.LoadConfig(flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if flags.LogLevel != "" {
		cfg.Log.Level = flags.LogLevel
	}

	logger := internal.GetLoggerWithLevel(cfg.Log.Level)
	logger.Info().
		Str("document", cfg.DocumentPath()).
		Str("marker", cfg.Query.Marker).
		Msg("configuration loaded")

	registry := mcp.NewRegistry()
	if err := registry.Register(mcp.DefaultTools(memory.NewService(cfg, logger))...); err != nil {
		return err
	}
	server := mcp.NewServer(registry, mcp.ServerInfo{Name: cfg.Server.Name, Version: cfg.Server.Version}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Serve(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
