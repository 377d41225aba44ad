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

package ids

import (
	"reflect"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"./services/processor.py": "services/processor.py",
		"/abs/path/file.go":       "abs/path/file.go",
		"utils/helpers.py":        "utils/helpers.py",
	}
	for in, want := range cases {
		if got := NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestModulePathSegments(t *testing.T) {
	got := ModulePathSegments("app/services/data/processors/validator.py")
	want := []string{"app", "services", "data", "processors", "validator"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ModulePathSegments = %v, want %v", got, want)
	}
}

func TestAnonymousCounter_NeverRepeats(t *testing.T) {
	c := &AnonymousCounter{}
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		name := c.Next()
		if seen[name] {
			t.Fatalf("duplicate anonymous name: %s", name)
		}
		seen[name] = true
	}
}
