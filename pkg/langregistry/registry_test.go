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

import "testing"

func TestForExtension(t *testing.T) {
	cases := []struct {
		ext     string
		wantTag string
	}{
		{".go", "go"},
		{".py", "python"},
		{".ts", "typescript"},
		{".js", "javascript"},
		{".java", "java"},
	}

	for _, tc := range cases {
		lang, ok := ForExtension(tc.ext)
		if !ok {
			t.Errorf("ForExtension(%q): expected a registered language", tc.ext)
			continue
		}
		if lang.Tag != tc.wantTag {
			t.Errorf("ForExtension(%q) = %q, want %q", tc.ext, lang.Tag, tc.wantTag)
		}
	}

	if _, ok := ForExtension(".unknown"); ok {
		t.Error("ForExtension(\".unknown\") should not resolve")
	}
}

func TestGoLanguage_ExportedByCase(t *testing.T) {
	lang, ok := Get("go")
	if !ok {
		t.Fatal("go language not registered")
	}
	if !lang.IsExported("Foo") {
		t.Error("Foo should be exported")
	}
	if lang.IsExported("foo") {
		t.Error("foo should not be exported")
	}
}

func TestPythonLanguage_PackageRuleIsMarkerFile(t *testing.T) {
	lang, ok := Get("python")
	if !ok {
		t.Fatal("python language not registered")
	}
	if lang.PackageRule != MarkerFile {
		t.Errorf("expected MarkerFile package rule, got %v", lang.PackageRule)
	}
	if lang.MarkerFileName != "__init__.py" {
		t.Errorf("expected __init__.py marker, got %q", lang.MarkerFileName)
	}
}

func TestAll_IncludesEveryRegisteredLanguage(t *testing.T) {
	tags := map[string]bool{}
	for _, l := range All() {
		tags[l.Tag] = true
	}
	for _, want := range []string{"go", "python", "typescript", "javascript", "java"} {
		if !tags[want] {
			t.Errorf("expected %q in All(), got %v", want, tags)
		}
	}
}
