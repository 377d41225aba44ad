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

package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/graphupdater/pkg/cst"
	"github.com/kraklabs/graphupdater/pkg/graph"
	"github.com/kraklabs/graphupdater/pkg/symboltable"
)

func TestExtractFile_GoFunctionAndStructAndMethod(t *testing.T) {
	src := `package widgets

type Widget struct {
	Base
	Name string
}

func NewWidget() *Widget {
	return &Widget{}
}

func (w *Widget) Render() string {
	return w.Name
}
`
	sink := graph.NewMemorySink()
	buf := graph.NewSinkBuffer(sink, 0)
	table := symboltable.New()
	e := New(cst.NewAdapter(), nil)

	err := e.ExtractFile(context.Background(), File{
		ModuleFQN:  "demo.widgets.widget",
		PackageFQN: "demo.widgets",
		Language:   "go",
		Source:     []byte(src),
	}, buf, table)
	require.NoError(t, err, "ExtractFile should not error on valid Go source")

	_, ok := table.Get("demo.widgets.widget.NewWidget")
	assert.True(t, ok, "expected NewWidget function registered")
	_, ok = table.Get("demo.widgets.widget.Widget")
	assert.True(t, ok, "expected Widget struct registered under the module")
	_, ok = table.Get("demo.widgets.widget.Widget.Render")
	assert.True(t, ok, "expected Render method registered under demo.widgets.widget.Widget")

	bases := table.Bases("demo.widgets.widget.Widget")
	if assert.Len(t, bases, 1, "expected one embedded base") {
		assert.Equal(t, "Base", bases[0].Name)
	}

	fieldType, ok := table.FieldType("demo.widgets.widget.Widget", "Name")
	assert.True(t, ok, "expected a declared type for field Name")
	assert.Equal(t, "string", fieldType)
}

func TestExtractFile_PythonClassInheritance(t *testing.T) {
	src := `class Animal:
    def speak(self):
        pass

class Dog(Animal):
    def fetch(self):
        pass
`
	sink := graph.NewMemorySink()
	buf := graph.NewSinkBuffer(sink, 0)
	table := symboltable.New()
	e := New(cst.NewAdapter(), nil)

	err := e.ExtractFile(context.Background(), File{
		ModuleFQN: "demo.animals",
		Language:  "python",
		Source:    []byte(src),
	}, buf, table)
	require.NoError(t, err, "ExtractFile should not error on valid Python source")

	_, ok := table.Get("demo.animals.Dog")
	assert.True(t, ok, "expected Dog class registered")
	_, ok = table.Get("demo.animals.Dog.fetch")
	assert.True(t, ok, "expected fetch method nested under Dog")

	bases := table.Bases("demo.animals.Dog")
	if assert.Len(t, bases, 1, "expected one base class") {
		assert.Equal(t, "Animal", bases[0].Name)
	}
}

func TestExtractFile_DuplicateDefinitionFirstWins(t *testing.T) {
	src := `package dup

func Helper() {}
func Helper() {}
`
	sink := graph.NewMemorySink()
	buf := graph.NewSinkBuffer(sink, 0)
	table := symboltable.New()
	e := New(cst.NewAdapter(), nil)

	err := e.ExtractFile(context.Background(), File{
		ModuleFQN: "demo.dup",
		Language:  "go",
		Source:    []byte(src),
	}, buf, table)
	require.NoError(t, err, "ExtractFile should not error on valid Go source")

	assert.Equal(t, 1, table.Count(), "expected exactly one registered entry for the duplicate name")
}

// TestExtractFile_JavaImportDeclaration exercises java_lang.go's
// ImportRule{PathField: ""}: tree-sitter-java's import_declaration has no
// named field for the imported path, so recordImport must fall back to
// reconstructing it from the node's scoped_identifier child, the same way
// recordBases falls back to walking the node itself for Go's embedded-field
// "extends" clause.
func TestExtractFile_JavaImportDeclaration(t *testing.T) {
	src := `import java.util.List;
import java.util.*;

class Catalog {
}
`
	sink := graph.NewMemorySink()
	buf := graph.NewSinkBuffer(sink, 0)
	table := symboltable.New()
	e := New(cst.NewAdapter(), nil)

	err := e.ExtractFile(context.Background(), File{
		ModuleFQN: "demo.catalog",
		Language:  "java",
		Source:    []byte(src),
	}, buf, table)
	require.NoError(t, err, "ExtractFile should not error on valid Java source")

	imports := table.ImportsOf("demo.catalog")
	byLocal := make(map[string]symboltable.ImportBinding, len(imports))
	for _, b := range imports {
		byLocal[b.LocalName] = b
	}

	binding, ok := byLocal["List"]
	assert.True(t, ok, "expected an import binding for List")
	assert.Equal(t, "java.util.List", binding.Target, "expected the full dotted path as the import target")

	_, ok = byLocal["util"]
	assert.True(t, ok, "expected an on-demand import binding for java.util.*")
}
