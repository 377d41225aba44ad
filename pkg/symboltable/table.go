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

// Package symboltable implements the project-wide FQN index described by
// SPEC_FULL.md §4.E: for each FQN, its node kind, language, unresolved/
// resolved base types, owning type (for methods), and a per-module import/
// alias map. Append-only during the definition pass, frozen during
// resolution.
//
// Grounded on pkg/ingestion/resolver.go's packageIndex/globalFunctions/
// fileImports/importPathToPackagePath maps, generalized from Go-only import
// resolution into the language-agnostic shape spec.md describes, and
// extended with FieldEntity-style field metadata grounded on the vjache-cie
// schema fork (SPEC_FULL.md §3).
package symboltable

import (
	"fmt"
	"sync"

	"github.com/kraklabs/graphupdater/pkg/graph"
	"github.com/kraklabs/graphupdater/pkg/langregistry"
)

// BaseRef is one base-type reference recorded for a type during the
// definition pass, as written in source ("as written," per spec.md §4.E),
// plus its resolution outcome once the resolution pass runs.
type BaseRef struct {
	Name     string // raw text as written, e.g. "Base" or "pkg.Base"
	Kind     langregistry.InheritanceKind
	Resolved bool
	TargetFQN string // valid only if Resolved
}

// Field is one typed field recorded for a type, grounded on the
// vjache-cie schema fork's FieldEntity — used only by the Resolver's
// field-declaration receiver-typing cue (spec.md §4.G.6), never emitted as
// a graph node itself.
type Field struct {
	Name         string
	DeclaredType string
}

// Entry is everything the Symbol Table knows about one FQN.
type Entry struct {
	FQN        string
	Kind       graph.Label
	Language   string
	OwningType string // non-empty for Method entries

	Bases  []BaseRef
	Fields []Field

	// ReturnType is a function/method's declared return type, as written
	// (e.g. "*Storage", "Storage"), used by the Resolver's chained-call
	// receiver-typing cue (spec.md §8 scenario (b), "Storage.get_instance()
	// .clear_all()"). Empty when the language has no return annotation or
	// the definition omitted one.
	ReturnType string
}

// ImportBinding is one local-name -> target binding in a module's import map.
// An unresolved import (a package the walker never found, or an external
// library) still records Target as the best-effort literal name, with
// Resolved=false, per spec.md §7's UnresolvedReference handling for imports
// ("record in the module's import map as an external reference").
type ImportBinding struct {
	LocalName string
	Target    string
	Resolved  bool

	// Symbol is non-empty when the import names a specific symbol from
	// the module at Target rather than the module itself (Python's
	// `from X import Y`, TypeScript's `import {Y} from 'X'`). The
	// Resolver resolves Target to a module/package FQN, then looks
	// Symbol up within it, rather than treating Target itself as the
	// already-complete dotted FQN.
	Symbol string
}

// ErrDuplicateDefinition is returned by Register when fqn is already
// registered. Per spec.md §7 ("DuplicateDefinition ... First registration
// wins; subsequent ones logged and ignored"), callers must not treat this as
// fatal — they log it and move on.
var ErrDuplicateDefinition = fmt.Errorf("symboltable: duplicate definition")

// Table is the project-wide symbol table. Every method takes the table's
// lock, so it is safe for concurrent use in both phases (spec.md §5: "writes
// to the Symbol Table must be serialized"). After Freeze, Register fails and
// RecordBase/RegisterImport are ignored; the Resolver still records its
// outcomes through ResolveBase and MarkImportResolved.
type Table struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	modules map[string]map[string]ImportBinding // module FQN -> local name -> binding
	frozen  bool
}

// New creates an empty, writable symbol table.
func New() *Table {
	return &Table{
		entries: make(map[string]*Entry),
		modules: make(map[string]map[string]ImportBinding),
	}
}

// Register adds a new FQN entry. Returns ErrDuplicateDefinition if fqn is
// already present; the existing entry is left untouched (first registration
// wins, per spec.md §7).
func (t *Table) Register(fqn string, kind graph.Label, language string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.frozen {
		return fmt.Errorf("symboltable: register after freeze: %s", fqn)
	}
	if _, exists := t.entries[fqn]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateDefinition, fqn)
	}
	t.entries[fqn] = &Entry{FQN: fqn, Kind: kind, Language: language}
	return nil
}

// SetOwningType records the owning type's FQN for a Method entry.
func (t *Table) SetOwningType(methodFQN, typeFQN string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[methodFQN]; ok {
		e.OwningType = typeFQN
	}
}

// SetReturnType records a function/method's declared return type, as written.
func (t *Table) SetReturnType(fqn, raw string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[fqn]; ok {
		e.ReturnType = raw
	}
}

// ReturnType returns the declared return type recorded for fqn, used by the
// Resolver's chained-call receiver-typing cue (spec.md §8 scenario (b)).
func (t *Table) ReturnType(fqn string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[fqn]
	if !ok || e.ReturnType == "" {
		return "", false
	}
	return e.ReturnType, true
}

// RecordBase appends an unresolved base-type reference to a type entry, per
// spec.md §4.F ("record unresolved base-type names from the inheritance
// clause").
func (t *Table) RecordBase(typeFQN, rawName string, kind langregistry.InheritanceKind) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.frozen {
		return
	}
	if e, ok := t.entries[typeFQN]; ok {
		e.Bases = append(e.Bases, BaseRef{Name: rawName, Kind: kind})
	}
}

// ResolveBase marks the i-th recorded base of typeFQN as resolved to
// targetFQN. Called only during the resolution phase.
func (t *Table) ResolveBase(typeFQN string, index int, targetFQN string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[typeFQN]; ok && index >= 0 && index < len(e.Bases) {
		e.Bases[index].Resolved = true
		e.Bases[index].TargetFQN = targetFQN
	}
}

// RecordField appends a typed field to a type entry.
func (t *Table) RecordField(typeFQN, name, declaredType string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[typeFQN]; ok {
		e.Fields = append(e.Fields, Field{Name: name, DeclaredType: declaredType})
	}
}

// RegisterImport records one binding in moduleFQN's import map. Constructed
// during the definition pass by reading import nodes, per spec.md §4.E.
func (t *Table) RegisterImport(moduleFQN, localName, target string, resolved bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.frozen {
		return
	}
	m, ok := t.modules[moduleFQN]
	if !ok {
		m = make(map[string]ImportBinding)
		t.modules[moduleFQN] = m
	}
	m[localName] = ImportBinding{LocalName: localName, Target: target, Resolved: resolved}
}

// RegisterImportSymbol records a binding for one explicitly named symbol
// imported from modulePath (Python's `from X import Y [as Z]`, TypeScript's
// `import {Y [as Z]} from 'X'` / `export {Y [as Z]} from 'X'`). Unlike
// RegisterImport, modulePath names the module the symbol comes from, not
// the symbol's own FQN; the Resolver resolves modulePath first, then looks
// symbol up within it (see Resolver.resolveImports).
func (t *Table) RegisterImportSymbol(moduleFQN, localName, modulePath, symbol string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.modules[moduleFQN]
	if !ok {
		m = make(map[string]ImportBinding)
		t.modules[moduleFQN] = m
	}
	m[localName] = ImportBinding{LocalName: localName, Target: modulePath, Symbol: symbol}
}

// Freeze forbids further Register/RecordBase/RegisterImport calls. The
// Driver calls this between the definition and resolution phases, per
// spec.md §4.E ("append-only during definition and frozen during
// resolution").
func (t *Table) Freeze() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frozen = true
}

// Get returns the entry for fqn, if present.
func (t *Table) Get(fqn string) (*Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[fqn]
	return e, ok
}

// LookupAbsolute is lookup_absolute(fqn): a presence check for an
// already-qualified name.
func (t *Table) LookupAbsolute(fqn string) (graph.Label, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[fqn]
	if !ok {
		return "", false
	}
	return e.Kind, true
}

// LookupInModule is lookup_in_module(module_fqn, local_name): checks the
// module's import map, then the module's own definitions (direct children
// of moduleFQN in the FQN namespace).
func (t *Table) LookupInModule(moduleFQN, localName string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if m, ok := t.modules[moduleFQN]; ok {
		if b, ok := m[localName]; ok && b.Resolved {
			return b.Target, true
		}
	}

	candidate := moduleFQN + "." + localName
	if _, ok := t.entries[candidate]; ok {
		return candidate, true
	}
	return "", false
}

// LookupMember is lookup_member(type_fqn, member_name): search the type's
// own members first, then a breadth-first walk over resolved INHERITS/
// IMPLEMENTS edges, stopping at the first match. Cycles are broken by a
// visited set (spec.md §4.G.4/§9): a malformed inheritance graph terminates
// after visiting each type once rather than looping or erroring.
func (t *Table) LookupMember(typeFQN, memberName string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	visited := map[string]bool{}
	queue := []string{typeFQN}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true

		candidate := cur + "." + memberName
		if e, ok := t.entries[candidate]; ok && (e.Kind == graph.LabelMethod || e.Kind == graph.LabelFunction) {
			return candidate, true
		}

		e, ok := t.entries[cur]
		if !ok {
			continue
		}
		for _, b := range e.Bases {
			if b.Resolved && !visited[b.TargetFQN] {
				queue = append(queue, b.TargetFQN)
			}
		}
	}
	return "", false
}

// FirstResolvedBase returns the FQN of the first resolved base of typeFQN,
// used by the Resolver's super-call handling (spec.md §4.G.3: "use the
// enclosing type's first resolved base").
func (t *Table) FirstResolvedBase(typeFQN string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[typeFQN]
	if !ok {
		return "", false
	}
	for _, b := range e.Bases {
		if b.Resolved {
			return b.TargetFQN, true
		}
	}
	return "", false
}

// FieldType returns the declared type of field name on typeFQN, used by the
// Resolver's field-declaration receiver-typing cue.
func (t *Table) FieldType(typeFQN, name string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[typeFQN]
	if !ok {
		return "", false
	}
	for _, f := range e.Fields {
		if f.Name == name {
			return f.DeclaredType, true
		}
	}
	return "", false
}

// Bases returns a copy of the base references recorded for typeFQN, for the
// Resolver to iterate and resolve during the resolution phase.
func (t *Table) Bases(typeFQN string) []BaseRef {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[typeFQN]
	if !ok {
		return nil
	}
	out := make([]BaseRef, len(e.Bases))
	copy(out, e.Bases)
	return out
}

// Count returns the number of registered FQNs, for diagnostics and tests.
func (t *Table) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// EntriesByKind returns a snapshot of every entry whose Kind is one of
// kinds, for the Resolver's project-wide call and inheritance index.
// Grounded on pkg/ingestion/resolver.go's BuildIndex, which takes the full
// parsed function/class lists as its starting point; here the Symbol Table
// is that aggregate, so the Resolver asks it directly instead of carrying a
// second set of slices alongside it.
func (t *Table) EntriesByKind(kinds ...graph.Label) []*Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	want := make(map[graph.Label]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	out := make([]*Entry, 0)
	for _, e := range t.entries {
		if want[e.Kind] {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out
}

// ImportsOf returns a snapshot of moduleFQN's import map, for the
// Resolver's dot-import scan (spec.md §4.G.3: "a name with no qualifier may
// still resolve via a wildcard/dot import").
func (t *Table) ImportsOf(moduleFQN string) []ImportBinding {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m := t.modules[moduleFQN]
	out := make([]ImportBinding, 0, len(m))
	for _, b := range m {
		out = append(out, b)
	}
	return out
}

// MarkImportResolved updates an existing import binding's Target/Resolved
// fields once the Resolver has matched its raw path text to a Module or
// Package FQN. A no-op if moduleFQN or localName is unknown.
func (t *Table) MarkImportResolved(moduleFQN, localName, targetFQN string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.modules[moduleFQN]
	if !ok {
		return
	}
	b, ok := m[localName]
	if !ok {
		return
	}
	b.Resolved = true
	b.Target = targetFQN
	m[localName] = b
}
