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

import (
	"github.com/smacker/go-tree-sitter/golang"
)

// Go node kinds are grounded on pkg/ingestion/parser_go.go's walkGoAST,
// which switches on "function_declaration", "method_declaration",
// "func_literal", "type_declaration" -> "type_spec" -> "struct_type" /
// "interface_type", "import_declaration" -> "import_spec", and
// "call_expression" / "selector_expression". Go has no inheritance/
// implements clause at all: embedding is recorded as an unnamed field in a
// struct_type's field_declaration_list, and interface satisfaction is
// structural (method-set matching performed by the Resolver, not a named
// clause) per SPEC_FULL.md §4.G.
func init() {
	register(Language{
		Tag:            "go",
		Extensions:     []string{".go"},
		getLanguage:    golang.GetLanguage,
		PackageRule:    EveryDirectory,
		ExportedByCase: true,
		CaseSensitive:  true,
		Definitions: []DefinitionRule{
			{NodeKind: "function_declaration", NameField: "name", BodyField: "body", Kind: KindFunction, ReturnTypeField: "result"},
			{NodeKind: "method_declaration", NameField: "name", BodyField: "body", Kind: KindMethod, ReceiverField: "receiver", ReturnTypeField: "result"},
			{NodeKind: "type_spec", NameField: "name", BodyField: "type", Kind: KindStruct},
			// Interface method signatures, which give an interface its method
			// set; the node is method_elem in newer tree-sitter-go releases
			// and method_spec in older ones.
			{NodeKind: "method_elem", NameField: "name", Kind: KindMethod},
			{NodeKind: "method_spec", NameField: "name", Kind: KindMethod},
		},
		Imports: []ImportRule{
			{NodeKind: "import_spec", PathField: "path", AliasField: "name"},
		},
		Inheritance: []InheritanceRule{
			// Embedded (anonymous) fields inside a struct_type's
			// field_declaration_list are the closest Go analogue to an
			// extends clause; the Definition Extractor walks
			// field_declaration_list directly rather than through a single
			// "bases field" (Go has no such field), so BasesField is left
			// empty and handled as a special case grounded on this rule's
			// presence rather than its field name.
			{NodeKind: "struct_type", BasesField: "", Kind: Extends},
		},
		Calls: []CallRule{
			{NodeKind: "call_expression", CalleeField: "function", ArgsField: "arguments"},
		},
		Fields: []FieldRule{
			{NodeKind: "field_declaration", NameField: "name", TypeField: "type"},
		},
		SelfToken:  "",
		SuperToken: "",
	})
}
