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
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// TypeScript entries are grounded on pkg/ingestion/parser_typescript.go's
// walkTSFunctions/walkTSTypesAST (function_declaration, method_definition,
// interface_declaration, class_declaration, type_alias_declaration) extended
// per SPEC_FULL.md §4.F to also record the class_heritage clause the teacher
// parser discards: tree-sitter-typescript represents `class C extends B
// implements I` as a class_declaration with a class_heritage child holding
// an extends_clause and/or implements_clause. We model that as two
// InheritanceRule entries distinguished by NodeKind rather than forcing both
// into one BasesField, since the two clauses are independent node kinds.
func init() {
	register(Language{
		Tag:            "typescript",
		Extensions:     []string{".ts", ".tsx"},
		getLanguage:    typescript.GetLanguage,
		PackageRule:    EveryDirectory,
		ExportedByCase: false,
		CaseSensitive:  true,
		Definitions: []DefinitionRule{
			{NodeKind: "function_declaration", NameField: "name", BodyField: "body", Kind: KindFunction, ReturnTypeField: "return_type"},
			{NodeKind: "method_definition", NameField: "name", BodyField: "body", Kind: KindMethod, ReturnTypeField: "return_type"},
			{NodeKind: "class_declaration", NameField: "name", BodyField: "body", Kind: KindClass},
			{NodeKind: "interface_declaration", NameField: "name", BodyField: "body", Kind: KindInterface},
		},
		Imports: []ImportRule{
			{
				NodeKind:            "import_statement",
				PathField:           "source",
				SpecifierKinds:      []string{"import_specifier"},
				SpecifierNameField:  "name",
				SpecifierAliasField: "alias",
			},
			// `export { foo as bar } from './a'` re-exports a symbol
			// under a new name without binding it in the current module's
			// own scope; SPEC_FULL.md §8 scenario (e) resolves through it
			// the same way as a named import, so re-using ImportRule's
			// specifier shape here lets later modules' `import {bar} from
			// './b'` chase it one hop at a time via the Resolver's existing
			// import-binding resolution.
			{
				NodeKind:            "export_statement",
				PathField:           "source",
				SpecifierKinds:      []string{"export_specifier"},
				SpecifierNameField:  "name",
				SpecifierAliasField: "alias",
			},
		},
		Inheritance: []InheritanceRule{
			{NodeKind: "extends_clause", BasesField: "value", Kind: Extends},
			{NodeKind: "implements_clause", BasesField: "types", Kind: Implements},
		},
		Calls: []CallRule{
			{NodeKind: "call_expression", CalleeField: "function", ArgsField: "arguments"},
		},
		Fields: []FieldRule{
			{NodeKind: "public_field_definition", NameField: "name", TypeField: "type"},
		},
		SelfToken:  "this",
		SuperToken: "super",
	})

	register(Language{
		Tag:            "javascript",
		Extensions:     []string{".js", ".jsx", ".mjs", ".cjs"},
		getLanguage:    javascript.GetLanguage,
		PackageRule:    EveryDirectory,
		ExportedByCase: false,
		CaseSensitive:  true,
		Definitions: []DefinitionRule{
			{NodeKind: "function_declaration", NameField: "name", BodyField: "body", Kind: KindFunction},
			{NodeKind: "method_definition", NameField: "name", BodyField: "body", Kind: KindMethod},
			{NodeKind: "class_declaration", NameField: "name", BodyField: "body", Kind: KindClass},
		},
		Imports: []ImportRule{
			{NodeKind: "import_statement", PathField: "source", AliasField: ""},
		},
		Inheritance: []InheritanceRule{
			{NodeKind: "class_heritage", BasesField: "", Kind: Extends},
		},
		Calls: []CallRule{
			{NodeKind: "call_expression", CalleeField: "function", ArgsField: "arguments"},
		},
		SelfToken:  "this",
		SuperToken: "super",
	})
}
