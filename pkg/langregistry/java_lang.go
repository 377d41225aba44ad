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

package langregistry

import "github.com/smacker/go-tree-sitter/java"

// Java is included, beyond the teacher's own Go/TypeScript coverage, because
// tree-sitter-java ships in the same smacker/go-tree-sitter module the
// teacher already depends on, and the original_source/ test corpus
// (test_java_complex_relationships.py) exercises Java interface/class
// relationships explicitly (SPEC_FULL.md §8 seed scenario (c)). Java's
// class_declaration carries a superclass field (single extends) and a
// super_interfaces field (implements list) as distinct fields on the same
// node, unlike TypeScript's two separate clause node kinds.
func init() {
	register(Language{
		Tag:            "java",
		Extensions:     []string{".java"},
		getLanguage:    java.GetLanguage,
		PackageRule:    EveryDirectory,
		ExportedByCase: false,
		CaseSensitive:  true,
		Definitions: []DefinitionRule{
			{NodeKind: "method_declaration", NameField: "name", BodyField: "body", Kind: KindMethod},
			{NodeKind: "class_declaration", NameField: "name", BodyField: "body", Kind: KindClass},
			{NodeKind: "interface_declaration", NameField: "name", BodyField: "body", Kind: KindInterface},
			{NodeKind: "enum_declaration", NameField: "name", BodyField: "body", Kind: KindEnum},
		},
		Imports: []ImportRule{
			{NodeKind: "import_declaration", PathField: "", AliasField: ""},
		},
		Inheritance: []InheritanceRule{
			{NodeKind: "superclass", BasesField: "", Kind: Extends},
			{NodeKind: "super_interfaces", BasesField: "", Kind: Implements},
		},
		Calls: []CallRule{
			{NodeKind: "method_invocation", CalleeField: "name", ArgsField: "arguments"},
			{NodeKind: "object_creation_expression", CalleeField: "type", ArgsField: "arguments"},
		},
		Fields: []FieldRule{
			{NodeKind: "field_declaration", NameField: "declarator", TypeField: "type"},
		},
		SelfToken:  "this",
		SuperToken: "super",
	})
}
