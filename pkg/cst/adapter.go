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

// Package cst is the uniform wrapper over the external grammar provider
// (github.com/smacker/go-tree-sitter) described by SPEC_FULL.md §4.B.
// Grounded on termfx-morfx/providers/base.Provider (sitter.NewParser() +
// parser.SetLanguage(lang)) and the teacher's parser_treesitter_test.go use
// of sitter.ParseCtx for cancellation-aware parsing.
package cst

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/graphupdater/pkg/langregistry"
)

// ErrLanguageUnavailable is returned by LoadLanguage when the registry has
// no grammar loader for the requested tag, matching spec.md §4.B's
// LanguageUnavailable error category.
var ErrLanguageUnavailable = errors.New("cst: language unavailable")

// ErrParse is returned only on irrecoverable grammar failure. Recoverable
// syntax errors never produce this error: they produce a tree containing
// ERROR nodes, which downstream passes must tolerate, per spec.md §4.B.
var ErrParse = errors.New("cst: parse failed")

// Tree wraps a parsed *sitter.Tree together with the source bytes it was
// parsed from, since tree-sitter node text access requires the original
// buffer.
type Tree struct {
	Root   *sitter.Node
	Source []byte
	raw    *sitter.Tree
}

// Close releases the underlying tree. Safe to call multiple times.
func (t *Tree) Close() {
	if t.raw != nil {
		t.raw.Close()
		t.raw = nil
	}
}

// Adapter loads grammars and parses file content into Trees. One Adapter
// handles many languages; it does not pool parsers itself — every call to
// Parse constructs a fresh *sitter.Parser, since spec.md §5 ("grammar
// handles may not be safe for concurrent parse calls") is resolved here by
// never sharing a parser instance across goroutines, only the immutable
// *sitter.Language grammar handle (cached per tag).
type Adapter struct {
	mu      sync.Mutex
	handles map[string]*sitter.Language
}

// NewAdapter creates an empty Adapter; grammars are loaded lazily on first
// use and cached for the Adapter's lifetime.
func NewAdapter() *Adapter {
	return &Adapter{handles: make(map[string]*sitter.Language)}
}

// LoadLanguage loads (or returns the cached) grammar handle for tag.
func (a *Adapter) LoadLanguage(tag string) (*sitter.Language, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if h, ok := a.handles[tag]; ok {
		return h, nil
	}
	lang, ok := langregistry.Get(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLanguageUnavailable, tag)
	}
	handle := lang.GetLanguage()
	if handle == nil {
		return nil, fmt.Errorf("%w: %s", ErrLanguageUnavailable, tag)
	}
	a.handles[tag] = handle
	return handle, nil
}

// Parse parses source with the grammar for languageTag. A fresh parser is
// created per call so concurrent callers never share a *sitter.Parser.
// Cancellation is honored via ctx: a long parse may be interrupted, and the
// caller must call Tree.Close to release the result promptly either way.
func (a *Adapter) Parse(ctx context.Context, source []byte, languageTag string) (*Tree, error) {
	handle, err := a.LoadLanguage(languageTag)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(handle)

	raw, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, languageTag, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s: nil tree", ErrParse, languageTag)
	}

	return &Tree{Root: raw.RootNode(), Source: source, raw: raw}, nil
}

// Text returns the source text spanned by node.
func Text(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return node.Content(source)
}

// Field returns the named child field of node, or nil if absent. A thin
// helper so callers never touch *sitter.Node's ChildByFieldName directly,
// keeping the rest of the pipeline decoupled from the sitter API surface.
func Field(node *sitter.Node, name string) *sitter.Node {
	if node == nil {
		return nil
	}
	return node.ChildByFieldName(name)
}

// Walk performs a depth-first traversal of node, calling visit for every
// named node with its parent (nil for the root). If visit returns false,
// that node's children are skipped; the walk goes on with its siblings.
// Matches spec.md §4.B's traversal contract: "(node_kind, byte_range,
// named_children, parent_chain)"; parent_chain is modeled by the parent
// argument plus the caller's own stack discipline across recursive visits.
func Walk(node *sitter.Node, visit func(n, parent *sitter.Node) bool) {
	walk(node, nil, visit)
}

func walk(node, parent *sitter.Node, visit func(n, parent *sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visit(node, parent) {
		return
	}
	count := int(node.NamedChildCount())
	for i := 0; i < count; i++ {
		walk(node.NamedChild(i), node, visit)
	}
}

// DescendantsOfType returns every named descendant of node (node itself is
// not examined) whose Type() is in kinds, stopping descent at a match so a
// specifier nested inside another specifier is never double-counted. Used
// by the import/export specifier walk (pkg/extractor) to find the repeated
// "one node per imported name" children that ChildByFieldName alone cannot
// enumerate, since a CST field name is unique per parent but these node
// kinds recur as siblings (e.g. Python's aliased_import/dotted_name inside
// import_from_statement, TypeScript's import_specifier inside named_imports).
func DescendantsOfType(node *sitter.Node, kinds ...string) []*sitter.Node {
	set := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	var out []*sitter.Node
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if set[n.Type()] {
			out = append(out, n)
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			visit(n.NamedChild(i))
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		visit(node.NamedChild(i))
	}
	return out
}

// HasError reports whether tree contains any ERROR node, i.e. recoverable
// syntax errors the downstream passes must tolerate rather than treat as a
// hard parse failure.
func HasError(tree *Tree) bool {
	if tree == nil || tree.Root == nil {
		return false
	}
	found := false
	Walk(tree.Root, func(n, _ *sitter.Node) bool {
		if found {
			return false
		}
		if n.IsError() || n.IsMissing() {
			found = true
			return false
		}
		return true
	})
	return found
}
