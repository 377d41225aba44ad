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

package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	want := Default([]string{"go", "python"})
	if err := Save(path, want, false); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Languages) != 2 || got.Languages[0] != "go" || got.Languages[1] != "python" {
		t.Errorf("Languages = %v, want [go python]", got.Languages)
	}
	if got.Sink.Type != "jsonl" || got.Sink.Path != "graph.jsonl" {
		t.Errorf("Sink = %+v, want {jsonl graph.jsonl}", got.Sink)
	}
	if got.Concurrency.ParseWorkers != 4 {
		t.Errorf("ParseWorkers = %d, want 4", got.Concurrency.ParseWorkers)
	}
}

func TestSaveRefusesOverwriteWithoutForce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	if err := Save(path, Default(nil), false); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := Save(path, Default(nil), false); err == nil {
		t.Error("expected error on second Save without force, got nil")
	}
	if err := Save(path, Default(nil), true); err != nil {
		t.Errorf("Save with force=true should succeed, got %v", err)
	}
}

func TestPathIn(t *testing.T) {
	got := PathIn("/some/project")
	want := filepath.Join("/some/project", ".graphupdater.yaml")
	if got != want {
		t.Errorf("PathIn = %q, want %q", got, want)
	}
}
