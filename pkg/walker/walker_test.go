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

package walker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kraklabs/graphupdater/pkg/graph"
	"github.com/kraklabs/graphupdater/pkg/symboltable"
)

// writeFile creates dir/relPath with contents, including any intermediate
// directories.
func writeFile(t *testing.T, dir, relPath, contents string) {
	t.Helper()
	full := filepath.Join(dir, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(contents), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

func TestWalk_GoPackagePerDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "services/processor.go", "package services\n")

	sink := graph.NewMemorySink()
	buf := graph.NewSinkBuffer(sink, 0)
	table := symboltable.New()

	result, err := Walk(context.Background(), root, buf, table, Options{ProjectName: "demo"})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	if len(result.Files) != 2 {
		t.Fatalf("expected 2 files, got %d: %+v", len(result.Files), result.Files)
	}

	var sawServicesPackage bool
	for _, n := range sink.Nodes() {
		if n.Label == graph.LabelPackage && n.Key == "demo.services" {
			sawServicesPackage = true
		}
	}
	if !sawServicesPackage {
		t.Error("expected a Package node for demo.services (Go: every directory is a package)")
	}

	if _, ok := table.Get("demo.main"); !ok {
		t.Error("expected demo.main registered as a Module in the symbol table")
	}
}

func TestWalk_PythonRequiresInitPy(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pkg/__init__.py", "")
	writeFile(t, root, "pkg/helper.py", "")
	writeFile(t, root, "scratch/orphan.py", "") // no __init__.py: not a package

	sink := graph.NewMemorySink()
	buf := graph.NewSinkBuffer(sink, 0)
	table := symboltable.New()

	if _, err := Walk(context.Background(), root, buf, table, Options{ProjectName: "demo"}); err != nil {
		t.Fatalf("Walk: %v", err)
	}

	var sawPkgPackage, sawScratchPackage bool
	for _, n := range sink.Nodes() {
		if n.Label != graph.LabelPackage {
			continue
		}
		if n.Key == "demo.pkg" {
			sawPkgPackage = true
		}
		if n.Key == "demo.scratch" {
			sawScratchPackage = true
		}
	}
	if !sawPkgPackage {
		t.Error("expected demo.pkg to be a Package (has __init__.py)")
	}
	if sawScratchPackage {
		t.Error("expected demo.scratch not to be a Package (no __init__.py)")
	}
}

func TestWalk_IgnoresVendorAndHiddenDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "vendor/dep/dep.go", "package dep\n")
	writeFile(t, root, ".git/config", "")

	sink := graph.NewMemorySink()
	buf := graph.NewSinkBuffer(sink, 0)
	table := symboltable.New()

	result, err := Walk(context.Background(), root, buf, table, Options{ProjectName: "demo"})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	for _, f := range result.Files {
		if f.RelPath == "vendor/dep/dep.go" {
			t.Error("expected vendor/ to be excluded from the walk")
		}
	}
	if result.SkipReasons["excluded"] == 0 {
		t.Error("expected at least one excluded path to be counted")
	}
}

func TestWalk_UnsupportedExtensionSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "README.md", "# demo\n")

	sink := graph.NewMemorySink()
	buf := graph.NewSinkBuffer(sink, 0)
	table := symboltable.New()

	result, err := Walk(context.Background(), root, buf, table, Options{ProjectName: "demo"})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(result.Files) != 1 {
		t.Fatalf("expected only main.go to be walked, got %+v", result.Files)
	}
	if result.SkipReasons["unsupported_language"] == 0 {
		t.Error("expected README.md to be counted as unsupported_language")
	}
}

func TestWalk_IsIdempotentAcrossRepeatedCalls(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")

	sink := graph.NewMemorySink()
	buf := graph.NewSinkBuffer(sink, 0)
	table := symboltable.New()

	if _, err := Walk(context.Background(), root, buf, table, Options{ProjectName: "demo"}); err != nil {
		t.Fatalf("first walk: %v", err)
	}
	before := len(sink.Nodes())

	// A second walk against the same buffer must not duplicate the Project
	// or Module nodes, per spec.md invariant 1 ("ensure_node ... idempotent").
	table2 := symboltable.New()
	if _, err := Walk(context.Background(), root, buf, table2, Options{ProjectName: "demo"}); err != nil {
		t.Fatalf("second walk: %v", err)
	}
	after := len(sink.Nodes())

	if before != after {
		t.Errorf("expected node count to stay stable across repeated walks, got %d then %d", before, after)
	}
}
