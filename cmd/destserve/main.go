// Copyright 2025 The DestServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the destination autocomplete server and CLI [DBG] application.

DestServe suggests destinations while a user types into a search box. Exact
case-insensitive substring matches come first; when there are too few of
them, an edit-distance ranker proposes "did you mean" suggestions, favouring
a curated list of popular cities. Input is debounced per session so a burst
of keystrokes costs one evaluation.

# Usage

Start the server with default settings:

	destserve

Use a custom destination file and enable debug mode:

	destserve -data /path/to/destinations.idx -d

Run in CLI mode for interactive testing:

	destserve -c

The data file is either a JSON array of {"id", "term", "region"} objects or
a binary index built from it with destindex:

	destindex build -in destinations.json -out destinations.idx

# Configuration

Runtime configuration is managed through a TOML file created with defaults
when missing:

	[search]
	min_query_len = 2
	max_exact = 8
	fuzzy_threshold = 2
	max_distance = 2

	[debounce]
	quiet_ms = 300

	[cache]
	max_entries = 1024

Server mode reloads the file when it changes.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout, see package
server for the message reference:

	{"id": "1", "action": "open"}
	{"id": "2", "action": "input", "session": "...", "text": "Sing"}

# Command Line Flags

	-data string
	    Destination file, or a directory holding destinations.idx or destinations.json (default "data/")
	-config string
	    Config file (default: user config dir)
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-version
	    Show current version
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/destserve/internal/cli"
	"github.com/bastiangx/destserve/internal/logger"
	"github.com/bastiangx/destserve/internal/utils"
	"github.com/bastiangx/destserve/pkg/config"
	"github.com/bastiangx/destserve/pkg/destinations"
	"github.com/bastiangx/destserve/pkg/server"
	"github.com/bastiangx/destserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0-beta"
	AppName = "destserve"
	gh      = "https://github.com/bastiangx/destserve"
)

// sigHandler cancels the returned context on SIGINT or SIGTERM and exits
// if a second signal arrives.
func sigHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}

// main only manages the flow; the server and the CLI live in their packages.
func main() {
	ctx := sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	dataPath := flag.String("data", "data/", "Destination file or directory holding one")
	configFile := flag.String("config", "", "Path to a custom config file")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger.Setup(*debugMode)

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}

	appConfig, configPath := config.LoadConfigWithPriority(pathResolver, *configFile)
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(configPath))

	dataFile := pathResolver.GetDataFile(*dataPath)
	index, err := destinations.Load(dataFile)
	if err != nil {
		log.Warnf("%v. Running with an empty index...", err)
		index = destinations.Unavailable()
	}
	log.Debugf("Loaded %d destinations (%d dropped) from %s", index.Len(), index.Dropped(), dataFile)

	// CLI would be mainly used for testing and dbg purposes.
	if *cliMode {
		log.SetReportTimestamp(false)
		engine := suggest.NewEngine(index, appConfig.SearchOptions())
		inputHandler := cli.NewInputHandler(engine, cli.Options{
			Window:      appConfig.DebounceWindow(),
			MinQueryLen: appConfig.Search.MinQueryLen,
			ShowRegion:  appConfig.CLI.ShowRegion,
			ShowScores:  appConfig.CLI.ShowScores,
		}, os.Stdin, os.Stdout)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(index, appConfig, configPath)

	showStartupInfo(dataFile, index)

	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func printVersion() {
	vlog := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	vlog.SetStyles(styles)

	vlog.Print("")
	vlog.Print("[ DestServe ] Destination suggestions while you type")
	vlog.Print("", "version", Version)
	vlog.Print("")
	vlog.Print("use -h or --help to see available options")
	vlog.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(dataFile string, index *destinations.Index) {
	info := logger.NewWithConfig(os.Stderr, "", log.InfoLevel, false)

	info.Print("===========")
	info.Print(" DestServe ")
	info.Print("===========")
	info.Infof("Version: %s", Version)
	info.Infof("Process ID: [ %d ]", os.Getpid())
	info.Infof("data: ( %s )", dataFile)
	info.Infof("destinations: %d", index.Len())
	if index.Ready() {
		info.Info("status: ready")
	} else {
		info.Warn("status: no destinations loaded")
	}
	info.Print("===========")
	info.Print("Press Ctrl+C to exit")
}
