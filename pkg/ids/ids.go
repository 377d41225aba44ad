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

// Package ids provides small identifier-construction helpers shared by the
// Definition Extractor and Resolver. Unlike the teacher's pkg/ingestion/ids.go
// (which hashes a path+name+position into an opaque node ID, because CozoDB
// keys nodes by hash), this package does not hash node identity at all: the
// specification's node key is the qualified_name itself (SPEC_FULL.md §3),
// so FQNs are built by straightforward dot-joining. What remains, grounded on
// ids.go's normalizePath, is path normalization and the anonymous-naming
// counter spec.md §4.F requires ("synthesize <anonymous_N> ... never collide
// across files").
package ids

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// NormalizePath matches pkg/ingestion/ids.go's normalizePath: strip a "./"
// prefix, clean the path, convert to forward slashes, and strip any leading
// slash, so the same file always yields the same path component regardless
// of how it was discovered (absolute walk vs. relative git-diff output).
func NormalizePath(path string) string {
	path = strings.TrimPrefix(path, "./")
	path = filepath.Clean(path)
	path = filepath.ToSlash(path)
	return strings.TrimPrefix(path, "/")
}

// ModulePathSegments turns a normalized, extension-stripped file path into
// the dot-separated package-path segments used to build an FQN, e.g.
// "services/processor" -> ["services", "processor"].
func ModulePathSegments(path string) []string {
	path = NormalizePath(path)
	ext := filepath.Ext(path)
	path = strings.TrimSuffix(path, ext)
	if path == "" || path == "." {
		return nil
	}
	return strings.Split(path, "/")
}

// AnonymousCounter synthesizes collision-free names for unbound functions
// and classes within one module, per spec.md §4.F's naming rule. A counter
// is scoped to exactly one file: the Definition Extractor creates one per
// file it processes, so "<anonymous_N>" never collides across files even
// though the counter itself restarts at 1 for each file (the FQN prefix,
// which includes the file's own path, is what actually guarantees project-
// wide uniqueness).
type AnonymousCounter struct {
	mu   sync.Mutex
	next int
}

// Next returns the next synthesized name, e.g. "<anonymous_1>".
func (c *AnonymousCounter) Next() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	return fmt.Sprintf("<anonymous_%d>", c.next)
}
