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
	"strings"

	cerrors "github.com/kraklabs/graphupdater/internal/errors"
	"github.com/kraklabs/graphupdater/internal/output"
	"github.com/kraklabs/graphupdater/internal/ui"
	"github.com/kraklabs/graphupdater/pkg/langregistry"
	"github.com/spf13/pflag"
)

// languageInfo is the --json shape for one registered language: the same
// fields runLanguages prints for human consumption, reshaped as a struct so
// output.JSON has something to encode.
type languageInfo struct {
	Tag          string `json:"tag"`
	Extensions   []string `json:"extensions"`
	SelfToken    string `json:"self_token,omitempty"`
	SuperToken   string `json:"super_token,omitempty"`
	Definitions  int    `json:"definitions"`
	Imports      int    `json:"imports"`
	Inheritance  int    `json:"inheritance"`
	Calls        int    `json:"calls"`
	Fields       int    `json:"fields"`
}

// runLanguages executes the 'languages' command: list every language the
// registry knows about and what it can do (extensions, self/super tokens,
// and how many definition, import, inheritance, call and field rules it has).
func runLanguages(args []string) {
	fs := pflag.NewFlagSet("languages", pflag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print machine-readable JSON instead of a human-readable table")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	all := langregistry.All()

	if *asJSON {
		infos := make([]languageInfo, 0, len(all))
		for _, l := range all {
			infos = append(infos, languageInfo{
				Tag:         l.Tag,
				Extensions:  l.Extensions,
				SelfToken:   l.SelfToken,
				SuperToken:  l.SuperToken,
				Definitions: len(l.Definitions),
				Imports:     len(l.Imports),
				Inheritance: len(l.Inheritance),
				Calls:       len(l.Calls),
				Fields:      len(l.Fields),
			})
		}
		if err := output.JSON(infos); err != nil {
			cerrors.FatalError(cerrors.NewInternalError(
				"Cannot encode languages as JSON",
				err.Error(),
				"Report a bug if this looks wrong",
				err,
			), true)
		}
		return
	}

	ui.Header("Registered Languages")
	for _, l := range all {
		fmt.Printf("%s  %s\n", ui.Label(l.Tag), ui.DimText(strings.Join(l.Extensions, ", ")))
		if l.SelfToken != "" || l.SuperToken != "" {
			fmt.Printf("    self=%q super=%q\n", l.SelfToken, l.SuperToken)
		}
		fmt.Printf("    definitions=%d imports=%d inheritance=%d calls=%d fields=%d\n",
			len(l.Definitions), len(l.Imports), len(l.Inheritance), len(l.Calls), len(l.Fields))
	}
}
