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

package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kraklabs/graphupdater/pkg/graph"
	"github.com/kraklabs/graphupdater/pkg/symboltable"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestRun_WalkDefineResolveEndToEnd(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "base.go"), `package widgets

type Base struct{}

func (b *Base) Ping() string { return "base" }
`)
	writeFile(t, filepath.Join(root, "widget.go"), `package widgets

type Widget struct {
	Base
}

func (w *Widget) Render() string {
	return w.helper()
}

func (w *Widget) helper() string {
	return "rendered"
}
`)

	sink := graph.NewMemorySink()
	table := symboltable.New()
	result, err := Run(context.Background(), root, sink, table, Config{ProjectName: "demo"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.FilesProcessed != 2 {
		t.Errorf("FilesProcessed = %d, want 2", result.FilesProcessed)
	}
	if result.ParseErrors != 0 {
		t.Errorf("ParseErrors = %d, want 0", result.ParseErrors)
	}

	foundInherits := false
	foundCalls := false
	for _, r := range sink.Relationships() {
		if r.Type == graph.RelInherits {
			foundInherits = true
		}
		if r.Type == graph.RelCalls {
			foundCalls = true
		}
	}
	if !foundInherits {
		t.Error("expected at least one INHERITS edge from the embedded Base field")
	}
	if !foundCalls {
		t.Error("expected at least one CALLS edge from Render to helper")
	}
}

// TestRun_DeepPackageHierarchyCall is SPEC_FULL.md §8 seed scenario (f): a
// call four package levels deep must resolve, with every intermediate
// Package node present and CONTAINS-linked.
func TestRun_DeepPackageHierarchyCall(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{
		"app", "app/services", "app/services/data", "app/services/data/processors",
	} {
		writeFile(t, filepath.Join(root, dir, "__init__.py"), "")
	}
	writeFile(t, filepath.Join(root, "app/services/data/processors/validator.py"), `def validate_input():
    return True
`)
	writeFile(t, filepath.Join(root, "app/services/processor.py"), `from app.services.data.processors.validator import validate_input

def run():
    validate_input()
`)

	sink := graph.NewMemorySink()
	table := symboltable.New()
	result, err := Run(context.Background(), root, sink, table, Config{ProjectName: "demo"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ParseErrors != 0 {
		t.Errorf("ParseErrors = %d, want 0", result.ParseErrors)
	}

	wantPackages := []string{
		"demo.app", "demo.app.services", "demo.app.services.data", "demo.app.services.data.processors",
	}
	for _, key := range wantPackages {
		found := false
		for _, n := range sink.Nodes() {
			if n.Label == graph.LabelPackage && n.Key == key {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected Package node %q", key)
		}
	}

	foundCall := false
	for _, r := range sink.Relationships() {
		if r.Type == graph.RelCalls &&
			r.Src.Key == "demo.app.services.processor.run" &&
			r.Dst.Key == "demo.app.services.data.processors.validator.validate_input" {
			foundCall = true
		}
	}
	if !foundCall {
		t.Error("expected run -CALLS-> validator.validate_input across four package levels")
	}
}

// TestRun_LanguagesFilterExcludesDisabledLanguage is SPEC_FULL.md §6's
// .graphupdater.yaml `languages` key: a language absent from the list must
// not be walked, defined, or resolved at all.
func TestRun_LanguagesFilterExcludesDisabledLanguage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "widget.go"), `package widgets

func Render() string { return "go" }
`)
	writeFile(t, filepath.Join(root, "helper.py"), `def helper():
    return "py"
`)

	sink := graph.NewMemorySink()
	table := symboltable.New()
	result, err := Run(context.Background(), root, sink, table, Config{
		ProjectName: "demo",
		Languages:   []string{"go"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.FilesProcessed != 1 {
		t.Errorf("FilesProcessed = %d, want 1 (python disabled)", result.FilesProcessed)
	}

	for _, n := range sink.Nodes() {
		if n.Label == graph.LabelFunction && n.Key == "demo.helper.helper" {
			t.Error("expected no node for helper.py's helper function; python is disabled")
		}
	}
}

func TestRun_ParallelMatchesSequentialFileCount(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 12; i++ {
		writeFile(t, filepath.Join(root, "pkg", "file_"+string(rune('a'+i))+".go"),
			"package pkg\n\nfunc F"+string(rune('A'+i))+"() {}\n")
	}

	sink := graph.NewMemorySink()
	table := symboltable.New()
	result, err := Run(context.Background(), root, sink, table, Config{ProjectName: "demo", ParseWorkers: 4})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ParseErrors != 0 {
		t.Errorf("ParseErrors = %d, want 0", result.ParseErrors)
	}

	seq, err := Run(context.Background(), root, graph.NewMemorySink(), symboltable.New(), Config{ProjectName: "demo", ParseWorkers: 1})
	if err != nil {
		t.Fatalf("sequential Run: %v", err)
	}
	if result.FilesProcessed != seq.FilesProcessed {
		t.Errorf("parallel FilesProcessed = %d, sequential = %d", result.FilesProcessed, seq.FilesProcessed)
	}
}
