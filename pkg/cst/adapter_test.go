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

package cst

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
)

const sampleGo = `package main

func greet(name string) string {
	return "hello " + name
}
`

func TestAdapter_Parse_Go(t *testing.T) {
	a := NewAdapter()
	tree, err := a.Parse(context.Background(), []byte(sampleGo), "go")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	defer tree.Close()

	if HasError(tree) {
		t.Fatal("expected well-formed source to parse without ERROR nodes")
	}

	var funcNames []string
	Walk(tree.Root, func(n, _ *sitter.Node) bool {
		if n.Type() == "function_declaration" {
			name := Field(n, "name")
			funcNames = append(funcNames, Text(name, tree.Source))
		}
		return true
	})

	if len(funcNames) != 1 || funcNames[0] != "greet" {
		t.Errorf("expected [greet], got %v", funcNames)
	}
}

func TestAdapter_LoadLanguage_Unavailable(t *testing.T) {
	a := NewAdapter()
	if _, err := a.LoadLanguage("cobol"); err == nil {
		t.Error("expected ErrLanguageUnavailable for an unregistered language")
	}
}

func TestAdapter_Parse_RecoverableSyntaxError(t *testing.T) {
	a := NewAdapter()
	broken := []byte("package main\n\nfunc broken( {\n")
	tree, err := a.Parse(context.Background(), broken, "go")
	if err != nil {
		t.Fatalf("parse should tolerate recoverable syntax errors, got: %v", err)
	}
	defer tree.Close()

	if !HasError(tree) {
		t.Error("expected HasError to detect the malformed function signature")
	}
}
