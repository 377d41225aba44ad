// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	cerrors "github.com/kraklabs/graphupdater/internal/errors"
	"github.com/kraklabs/graphupdater/internal/ui"
	"github.com/kraklabs/graphupdater/pkg/config"
	"github.com/kraklabs/graphupdater/pkg/driver"
	"github.com/kraklabs/graphupdater/pkg/graph"
	"github.com/kraklabs/graphupdater/pkg/symboltable"
	"github.com/spf13/pflag"
)

// runRun executes the 'run' command: walk the project at the given path,
// extract definitions, resolve references, and write the resulting graph
// to the configured sink.
func runRun(args []string, configPath string) {
	fs := pflag.NewFlagSet("run", pflag.ExitOnError)
	var (
		workers     = fs.IntP("workers", "w", 4, "Number of parallel parse workers (0 or 1 for sequential)")
		outPath     = fs.StringP("out", "o", "", "Override the sink's JSONL output path")
		projectName = fs.String("project-name", "", "Project name (default: root directory's base name)")
	)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: graphupdater run <path> [options]

Walks <path>, extracts definitions, resolves references, and writes the
resulting code graph to the configured sink (default: ./graph.jsonl).

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(cerrors.ExitInput)
	}
	root := fs.Arg(0)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		cerrors.FatalError(cerrors.NewInputError(
			"Cannot resolve project path",
			err.Error(),
			"Pass a path that exists and is readable",
		), false)
	}
	if info, err := os.Stat(absRoot); err != nil || !info.IsDir() {
		cerrors.FatalError(cerrors.NewNotFoundError(
			fmt.Sprintf("Project path not found: %s", absRoot),
			"The path does not exist or is not a directory",
			"Pass the root directory of the project to index",
		), false)
	}

	if configPath == "" {
		configPath = config.PathIn(absRoot)
	}
	var cfg *config.Config
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.Load(configPath)
		if err != nil {
			cerrors.FatalError(cerrors.NewConfigError(
				"Cannot load .graphupdater.yaml",
				err.Error(),
				"Fix the YAML syntax or run 'graphupdater init --force'",
				err,
			), false)
		}
	} else {
		cfg = config.Default(nil)
	}
	if fs.Changed("workers") {
		cfg.Concurrency.ParseWorkers = *workers
	}
	if *outPath != "" {
		cfg.Sink.Path = *outPath
	}
	if *projectName == "" {
		*projectName = filepath.Base(absRoot)
	}

	logger := newLogger()

	sink, closeSink, err := openSink(cfg.Sink)
	if err != nil {
		cerrors.FatalError(cerrors.NewConfigError(
			"Cannot open sink",
			err.Error(),
			"Check the sink.path directory is writable",
			err,
		), false)
	}
	defer closeSink()

	ui.Infof("Indexing %s", absRoot)
	start := time.Now()

	table := symboltable.New()
	result, err := driver.Run(context.Background(), absRoot, sink, table, driver.Config{
		ProjectName:  *projectName,
		IgnoreGlobs:  cfg.Ignore,
		Languages:    cfg.Languages,
		ParseWorkers: cfg.Concurrency.ParseWorkers,
		Logger:       logger,
	})
	if err != nil {
		cerrors.FatalError(cerrors.NewInternalError(
			"Graph extraction failed",
			err.Error(),
			"Run with GRAPHUPDATER_LOG_LEVEL=debug for more detail and report a bug if this looks wrong",
			err,
		), false)
	}

	ui.Successf("Indexed %d files in %s", result.FilesProcessed, time.Since(start).Round(time.Millisecond))
	if result.ParseErrors > 0 {
		ui.Warningf("%d files failed to parse or extract", result.ParseErrors)
	}
	fmt.Printf("  %s %s\n", ui.Label("Project:"), result.ProjectFQN)
	fmt.Printf("  %s %s (walk %s, define %s, resolve %s)\n",
		ui.Label("Duration:"), result.TotalDuration.Round(time.Millisecond),
		result.WalkDuration.Round(time.Millisecond),
		result.DefineDuration.Round(time.Millisecond),
		result.ResolveDuration.Round(time.Millisecond))
}

// openSink constructs a graph.Sink from the config, and a close function
// the caller must defer.
func openSink(cfg config.SinkConfig) (graph.Sink, func(), error) {
	switch cfg.Type {
	case "", "jsonl":
		path := cfg.Path
		if path == "" {
			path = "graph.jsonl"
		}
		sink, err := graph.OpenJSONLSink(path)
		if err != nil {
			return nil, nil, err
		}
		return sink, func() { _ = sink.Close() }, nil
	case "memory":
		return graph.NewMemorySink(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown sink type %q", cfg.Type)
	}
}

// newLogger builds a slog.Logger whose level is controlled by
// GRAPHUPDATER_LOG_LEVEL, per SPEC_FULL.md §6.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch os.Getenv("GRAPHUPDATER_LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
