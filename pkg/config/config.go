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

// Package config loads and saves .graphupdater.yaml, the project-level
// configuration SPEC_FULL.md §6 names: which languages to enable, which
// paths to ignore, where the sink writes, and how many parse workers to
// run. Grounded on cmd/cie/init.go's Config/DefaultConfig/ConfigPath
// pattern (a YAML file in the project root, written by `init` and read by
// every other subcommand), re-expressed against gopkg.in/yaml.v3 the way
// the rest of the pack's config files do.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file's name, resolved relative to a project root.
const FileName = ".graphupdater.yaml"

// SinkConfig names where emitted nodes/edges go.
type SinkConfig struct {
	// Type is "jsonl" or "memory". "memory" keeps the graph in process memory
	// and writes no file; the CLI accepts both and uses "jsonl" when Type is
	// empty.
	Type string `yaml:"type"`
	Path string `yaml:"path,omitempty"`
}

// ConcurrencyConfig tunes the definition phase's worker pool.
type ConcurrencyConfig struct {
	ParseWorkers int `yaml:"parse_workers"`
}

// Config is the full shape of .graphupdater.yaml.
type Config struct {
	Languages   []string          `yaml:"languages,omitempty"`
	Ignore      []string          `yaml:"ignore,omitempty"`
	Sink        SinkConfig        `yaml:"sink"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
}

// Default returns the configuration `graphupdater init` writes: every
// registered language enabled, no extra ignore globs beyond
// walker.DefaultIgnoreGlobs, a JSONL sink at ./graph.jsonl, and four parse
// workers.
func Default(languages []string) *Config {
	return &Config{
		Languages: languages,
		Ignore:    nil,
		Sink: SinkConfig{
			Type: "jsonl",
			Path: "graph.jsonl",
		},
		Concurrency: ConcurrencyConfig{
			ParseWorkers: 4,
		},
	}
}

// PathIn resolves the config file's path for a given project root.
func PathIn(root string) string {
	return filepath.Join(root, FileName)
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes cfg to path as YAML, failing if the file already exists
// unless force is set.
func Save(path string, cfg *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config: %s already exists (use --force to overwrite)", path)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
