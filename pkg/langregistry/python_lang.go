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

import "github.com/smacker/go-tree-sitter/python"

// Python entries are grounded on termfx-morfx/providers/python.Config's
// aliasMap (function_definition/async_function_definition, class_definition,
// assignment/augmented_assignment, import_statement/import_from_statement)
// and on the seed scenario in SPEC_FULL.md §8(a), which requires resolving
// `from utils.helpers import short`. Python's package rule is MarkerFile:
// a directory is a package only when it contains __init__.py, matching the
// language's own import semantics (spec.md Open Question, resolved in
// SPEC_FULL.md §9: __init__.py is emitted as both the Package node and its
// own Module node).
func init() {
	register(Language{
		Tag:            "python",
		Extensions:     []string{".py", ".pyw", ".pyi"},
		getLanguage:    python.GetLanguage,
		PackageRule:    MarkerFile,
		MarkerFileName: "__init__.py",
		ExportedByCase: false,
		CaseSensitive:  true,
		Definitions: []DefinitionRule{
			{NodeKind: "function_definition", NameField: "name", BodyField: "body", Kind: KindFunction, ReturnTypeField: "return_type"},
			{NodeKind: "async_function_definition", NameField: "name", BodyField: "body", Kind: KindFunction, ReturnTypeField: "return_type"},
			{NodeKind: "class_definition", NameField: "name", BodyField: "body", Kind: KindClass},
		},
		Imports: []ImportRule{
			{NodeKind: "import_statement", PathField: "name", AliasField: ""},
			{
				NodeKind:            "import_from_statement",
				PathField:           "module_name",
				SpecifierKinds:      []string{"aliased_import", "dotted_name", "wildcard_import"},
				SpecifierNameField:  "name",
				SpecifierAliasField: "alias",
				WildcardKind:        "wildcard_import",
			},
		},
		Inheritance: []InheritanceRule{
			{NodeKind: "class_definition", BasesField: "superclasses", Kind: Extends},
		},
		Calls: []CallRule{
			{NodeKind: "call", CalleeField: "function", ArgsField: "arguments"},
		},
		Fields: []FieldRule{
			{NodeKind: "assignment", NameField: "left", TypeField: "type"},
		},
		SelfToken:  "self",
		SuperToken: "super",
	})
}
