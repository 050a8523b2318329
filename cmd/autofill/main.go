// Copyright 2026 The AutoCompleteInput Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package main runs the autofill widget behind one of three front ends.
//
// The widget resolves typed text into a dropdown of matching topics: input is
// debounced, results are cached per lower-cased query in a bounded LRU cache,
// and a small state machine tracks which row is highlighted.
//
// # Usage
//
// Serve the widget over stdin/stdout (JSON lines by default):
//
//	autofill
//
// Use msgpack framing and a custom dataset:
//
//	autofill -codec msgpack -data "topics/**/*.toml"
//
// Run the line-based debug CLI, settling every line at once:
//
//	autofill -c -sync
//
// Run the interactive terminal UI:
//
//	autofill -tui
//
// # Configuration
//
// Settings are read from a TOML file, created with defaults on first run at
// [UserConfigDir]/autofill/config.toml:
//
//	[widget]
//	debounce_delay_ms = 300
//	cache_capacity = 10
//	blur_grace_ms = 150
//	matcher = "scan"
//
//	[dataset]
//	path = ""
//
//	[server]
//	codec = "json"
//	max_requests_per_second = 0
//	burst = 16
//
//	[cli]
//	sync = false
//
// Flags given on the command line override the file.
//
// # IPC Protocol
//
// See package server for the message format.
//
//	{"id": "1", "e": "text", "t": "redux"}
//	{"m": "ack", "id": "1"}
//	{"m": "state", "o": true, "i": -1, "q": "redux", "r": [...]}
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NazishAyoob/AutoCompleteInput/internal/cli"
	"github.com/NazishAyoob/AutoCompleteInput/internal/logger"
	"github.com/NazishAyoob/AutoCompleteInput/internal/tui"
	"github.com/NazishAyoob/AutoCompleteInput/internal/utils"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/autofill"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/config"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/dataset"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0"
	gh      = "https://github.com/NazishAyoob/AutoCompleteInput"
)

// sigHandler exits on SIGINT/SIGTERM for the CLI front end.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main loads config and hands off to the chosen front end.
func main() {
	def := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run the line-based debug CLI")
	tuiMode := flag.Bool("tui", false, "Run the interactive terminal UI")
	configPath := flag.String("config", "", "Path to a config.toml (default: user config dir)")
	rebuild := flag.Bool("rebuild-config", false, "Overwrite the default config file with built-in defaults and exit")
	dataPath := flag.String("data", def.Dataset.Path, "Dataset file or glob (.json, .toml, .msgpack); empty uses the built-in sample")
	codec := flag.String("codec", def.Server.Codec, "IPC codec: json or msgpack")
	debounceMs := flag.Int("debounce", def.Widget.DebounceDelayMs, "Debounce delay in milliseconds")
	cacheCap := flag.Int("cache", def.Widget.CacheCapacity, "Number of queries kept in the result cache")
	blurMs := flag.Int("blur", def.Widget.BlurGraceMs, "Blur grace period in milliseconds")
	matcher := flag.String("matcher", def.Widget.Matcher, "Matcher: scan or index")
	syncMode := flag.Bool("sync", def.CLI.Sync, "CLI: settle each line immediately")
	rps := flag.Int("rps", def.Server.MaxRequestsPerSecond, "IPC: max requests per second (0 = unlimited)")

	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}

	var logFile *os.File
	if *tuiMode && *debugMode {
		f, err := os.Create("autofill-debug.log")
		if err != nil {
			log.Fatalf("Failed to open debug log: %v", err)
		}
		logFile = f
		logger.SetupWithWriter(f, true)
	} else {
		logger.Setup(*debugMode)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	if *rebuild {
		path, err := config.RebuildConfigFile()
		if err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote default config to %s\n", path)
		return
	}

	cfg, usedPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config: %s", config.ActiveConfigPath(usedPath))

	// explicitly set flags win over the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.Dataset.Path = *dataPath
		case "codec":
			cfg.Server.Codec = *codec
		case "debounce":
			cfg.Widget.DebounceDelayMs = *debounceMs
		case "cache":
			cfg.Widget.CacheCapacity = *cacheCap
		case "blur":
			cfg.Widget.BlurGraceMs = *blurMs
		case "matcher":
			cfg.Widget.Matcher = *matcher
		case "sync":
			cfg.CLI.Sync = *syncMode
		case "rps":
			cfg.Server.MaxRequestsPerSecond = *rps
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	resolver := utils.NewPathResolver(config.AppName)
	resolvedData := resolver.ResolveDataPath(cfg.Dataset.Path)
	start := time.Now()
	data, err := dataset.Load(resolvedData)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	log.Debug("Dataset loaded", "path", resolvedData, "candidates", data.Len(), "took", time.Since(start))

	opts := cfg.WidgetOptions()
	opts.Candidates = data

	switch {
	case *tuiMode:
		if err := tui.Run(opts); err != nil {
			log.Fatalf("TUI error: %v", err)
		}
	case *cliMode:
		sigHandler()
		h, err := cli.NewInputHandler(opts, cfg.CLI.Sync, os.Stdin, os.Stdout)
		if err != nil {
			log.Fatalf("Failed to start CLI: %v", err)
		}
		if err := h.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
	default:
		runServer(cfg, opts, resolvedData)
	}
}

func runServer(cfg *config.Config, opts autofill.Options, dataPath string) {
	srv, err := server.NewServer(server.Options{
		Widget:               opts,
		Codec:                cfg.Server.Codec,
		MaxRequestsPerSecond: cfg.Server.MaxRequestsPerSecond,
		Burst:                cfg.Server.Burst,
	}, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	showStartupInfo(cfg, dataPath, srv.Widget().Dataset().Len())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.Serve(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(cfg *config.Config, dataPath string, candidates int) {
	if dataPath == "" {
		dataPath = "built-in sample"
	}
	l := logger.New("autofill")
	l.SetLevel(log.InfoLevel)
	l.Infof("Version: %s", Version)
	l.Infof("Process ID: [ %d ]", os.Getpid())
	l.Info("dataset", "path", dataPath, "candidates", candidates)
	l.Info("ipc", "codec", cfg.Server.Codec, "rps", cfg.Server.MaxRequestsPerSecond)
	l.Info("status: ready")
}

func printVersion() {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
	})
	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ autofill ] debounced, cached autocomplete")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", gh)

	info := utils.NewPathResolver(config.AppName).RuntimeInfo()
	l.Print("config dir", "path", info["config_dir"])
}
