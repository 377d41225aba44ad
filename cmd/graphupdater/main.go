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

// Package main implements the graphupdater CLI: walk a project, extract
// definitions, resolve references, and write the resulting code graph to
// a sink.
//
// Usage:
//
//	graphupdater run <path>     Walk + define + resolve a project
//	graphupdater init           Write a default .graphupdater.yaml
//	graphupdater languages      List registered languages
package main

import (
	"fmt"
	"os"

	"github.com/kraklabs/graphupdater/internal/ui"
	"github.com/spf13/pflag"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		showVersion = pflag.BoolP("version", "V", false, "Show version and exit")
		configPath  = pflag.StringP("config", "c", "", "Path to .graphupdater.yaml (default: <path>/.graphupdater.yaml)")
		noColor     = pflag.Bool("no-color", false, "Disable colored output")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, `graphupdater - multi-language source-code graph extractor

Usage:
  graphupdater <command> [options]

Commands:
  run <path>     Walk, define, and resolve a project into a code graph
  init           Write a default .graphupdater.yaml in the current directory
  languages      List every registered language and its capabilities
                 (--json for machine-readable output)

Global Options:
  --config      Path to .graphupdater.yaml
  --no-color    Disable colored output
  --version     Show version and exit

Environment Variables:
  GRAPHUPDATER_LOG_LEVEL   Log level: debug, info, warn, error (default: info)

`)
		pflag.PrintDefaults()
	}

	pflag.Parse()
	if *noColor {
		ui.InitColors(true)
	}

	if *showVersion {
		fmt.Printf("graphupdater version %s (%s)\n", version, commit)
		os.Exit(0)
	}

	args := pflag.Args()
	if len(args) == 0 {
		pflag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "run":
		runRun(cmdArgs, *configPath)
	case "init":
		runInit(cmdArgs)
	case "languages":
		runLanguages(cmdArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		pflag.Usage()
		os.Exit(1)
	}
}
