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
	"fmt"
	"os"

	cerrors "github.com/kraklabs/graphupdater/internal/errors"
	"github.com/kraklabs/graphupdater/internal/ui"
	"github.com/kraklabs/graphupdater/pkg/config"
	"github.com/kraklabs/graphupdater/pkg/langregistry"
	"github.com/spf13/pflag"
)

// runInit executes the 'init' command, writing a default .graphupdater.yaml
// in the current directory, grounded on cmd/cie/init.go's runInit (force
// flag, ConfigPath-already-exists guard), minus the teacher's interactive
// prompting and git-hook installation, which have no analogue here.
func runInit(args []string) {
	fs := pflag.NewFlagSet("init", pflag.ExitOnError)
	force := fs.BoolP("force", "f", false, "Overwrite an existing .graphupdater.yaml")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: graphupdater init [options]

Writes a default .graphupdater.yaml in the current directory, with every
registered language enabled and a JSONL sink at ./graph.jsonl.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		cerrors.FatalError(cerrors.NewInternalError(
			"Cannot determine current directory",
			err.Error(), "", err,
		), false)
	}

	langs := langregistry.All()
	tags := make([]string, 0, len(langs))
	for _, l := range langs {
		tags = append(tags, l.Tag)
	}

	path := config.PathIn(cwd)
	if err := config.Save(path, config.Default(tags), *force); err != nil {
		cerrors.FatalError(cerrors.NewConfigError(
			"Cannot write .graphupdater.yaml",
			err.Error(),
			"Pass --force to overwrite an existing configuration",
			err,
		), false)
	}
	ui.Successf("Wrote %s", path)
}
