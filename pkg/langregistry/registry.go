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

// Package langregistry is the static, per-language configuration table every
// other component consults: which CST node kinds mean "this is a function
// definition," which field holds a call's callee expression, how a directory
// qualifies as a package, and so on. Adding a language means adding one entry
// here and nowhere else.
//
// Grounded on termfx-morfx/providers/base.LanguageConfig (the Language/
// Extensions/GetLanguage/MapQueryTypeToNodeTypes/ExtractNodeName/IsExported
// interface) and its per-language implementations in
// termfx-morfx/providers/{golang,python,typescript}. Unlike that interface,
// entries here are plain data (a DefinitionRule table, not a polymorphic
// ExtractNodeName method) because the specification describes the registry
// as "a static, immutable configuration," not a plugin architecture.
package langregistry

import sitter "github.com/smacker/go-tree-sitter"

// Kind is the definition kind a CST node maps to.
type Kind string

const (
	KindFunction  Kind = "Function"
	KindMethod    Kind = "Method"
	KindClass     Kind = "Class"
	KindInterface Kind = "Interface"
	KindStruct    Kind = "Struct"
	KindEnum      Kind = "Enum"
	KindTrait     Kind = "Trait"
)

// PackageRule decides when a directory is a namespace in the source language.
type PackageRule int

const (
	// MarkerFile means a directory is a package only if it contains a file
	// named MarkerFileName (e.g. Python's __init__.py).
	MarkerFile PackageRule = iota
	// EveryDirectory means every directory containing a source file of this
	// language is a package (e.g. Go, where directory == package).
	EveryDirectory
	// RootOnly means only the project root is ever a package.
	RootOnly
)

// InheritanceKind distinguishes nominal extension from nominal/structural
// interface implementation, per SPEC_FULL.md §4.G's Go-vs-OO-language split.
type InheritanceKind string

const (
	Extends    InheritanceKind = "extends"
	Implements InheritanceKind = "implements"
)

// DefinitionRule describes one CST node kind that introduces a definition.
type DefinitionRule struct {
	NodeKind  string
	NameField string
	BodyField string
	Kind      Kind
	// ReceiverField, if non-empty, names the field holding a method's
	// receiver/self type node (e.g. Go's method_declaration "receiver").
	ReceiverField string
	// ReturnTypeField, if non-empty, names the field holding a function's
	// or method's declared return type node (Go's function_declaration
	// "result", Python's function_definition "return_type", TypeScript's
	// "return_type"), recorded for the Resolver's chained-call
	// receiver-typing cue (spec.md §8 scenario (b)).
	ReturnTypeField string
}

// ImportRule describes one CST node kind that introduces an import.
//
// Two shapes are supported. The simple shape (SpecifierKinds empty) treats
// the whole statement as a single binding: local name is derived from
// PathField's last path segment, or from AliasField when the language
// marks an explicit alias on the statement itself (e.g. Go's
// import_spec "name" field for `import foo "some/path"`).
//
// The specifier shape (SpecifierKinds non-empty) is for statements that
// name one or more symbols explicitly, each becoming its own binding to
// PathField's path plus that symbol's name: Python's
// `from X import A, B as C`, TypeScript's `import { A, B as C } from 'X'`
// and `export { A as C } from 'X'`. SpecifierKinds lists the CST node
// kinds that introduce one named symbol each (searched as descendants of
// the import node via cst.DescendantsOfType, since tree-sitter's
// ChildByFieldName only returns the first of several same-named fields).
// SpecifierNameField/SpecifierAliasField name the fields within each
// specifier node; if a specifier node itself carries no NameField (e.g.
// Python's bare identifier/dotted_name import target), its own text is
// the name. WildcardKind, if set, names the specifier kind meaning
// "import everything" (Python's wildcard_import, `from X import *`),
// bound as local name "*".
type ImportRule struct {
	NodeKind   string
	PathField  string
	AliasField string // empty if the language has no aliasing syntax

	SpecifierKinds      []string
	SpecifierNameField  string
	SpecifierAliasField string
	WildcardKind        string
}

// InheritanceRule describes one CST node kind carrying base-type names.
type InheritanceRule struct {
	NodeKind   string
	BasesField string
	Kind       InheritanceKind
}

// CallRule describes one CST node kind that represents a call expression.
type CallRule struct {
	NodeKind   string
	CalleeField string
	ArgsField  string
}

// FieldRule describes one CST node kind that declares a typed field of an
// enclosing type, grounded on the vjache-cie schema fork's FieldEntity
// concept (SPEC_FULL.md §3), used by the Resolver's field-declaration
// receiver-typing cue.
type FieldRule struct {
	NodeKind  string
	NameField string
	TypeField string
}

// Language is one entry in the registry: the external contract an
// implementer writes to add a language (SPEC_FULL.md §6).
type Language struct {
	Tag        string
	Extensions []string

	// getLanguage is deferred (rather than a *sitter.Language field) so that
	// importing the registry package never forces linking every grammar;
	// each language's init() registers its own loader.
	getLanguage func() *sitter.Language

	PackageRule     PackageRule
	MarkerFileName  string // only meaningful when PackageRule == MarkerFile

	Definitions  []DefinitionRule
	Imports      []ImportRule
	Inheritance  []InheritanceRule
	Calls        []CallRule
	Fields       []FieldRule

	SelfToken  string // "self", "this", "" if the language has none
	SuperToken string // "super", "" if the language has none

	CaseSensitive bool
	// ExportedByCase reports whether identifier casing alone determines
	// export status (true for Go: uppercase-first is exported).
	ExportedByCase bool
}

// GetLanguage loads the tree-sitter grammar for this language.
func (l Language) GetLanguage() *sitter.Language {
	if l.getLanguage == nil {
		return nil
	}
	return l.getLanguage()
}

// IsExported reports whether name is an exported/public identifier under
// this language's convention.
func (l Language) IsExported(name string) bool {
	if !l.ExportedByCase || name == "" {
		return name != ""
	}
	r := []rune(name)[0]
	return r >= 'A' && r <= 'Z'
}

// registry is the static table, keyed by language tag.
var registry = map[string]Language{}

// extByExt maps a file extension (including the leading dot) to a language
// tag, built once from every registered language's Extensions.
var extByExt = map[string]string{}

func register(l Language) {
	registry[l.Tag] = l
	for _, ext := range l.Extensions {
		extByExt[ext] = l.Tag
	}
}

// Get returns the registry entry for tag, or ok=false if unregistered.
func Get(tag string) (Language, bool) {
	l, ok := registry[tag]
	return l, ok
}

// ForExtension returns the language owning file extension ext (e.g. ".go"),
// or ok=false if no registered language claims it.
func ForExtension(ext string) (Language, bool) {
	tag, ok := extByExt[ext]
	if !ok {
		return Language{}, false
	}
	l, ok := registry[tag]
	return l, ok
}

// All returns every registered language, for iteration (e.g. by the CLI's
// `init` and `languages` subcommands).
func All() []Language {
	out := make([]Language, 0, len(registry))
	for _, l := range registry {
		out = append(out, l)
	}
	return out
}
