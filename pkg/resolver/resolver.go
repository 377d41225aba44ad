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

// Package resolver implements the Resolver (SPEC_FULL.md §4.G): the second
// pass over each file's CST, run after the Symbol Table is fully populated
// and frozen. It resolves recorded base-type references into INHERITS/
// IMPLEMENTS edges, classifies call expressions and emits CALLS edges, and
// resolves each module's raw import bindings into IMPORTS edges.
//
// Grounded on pkg/ingestion/resolver.go's CallResolver: BuildIndex builds a
// project-wide lookup once every file has been parsed, then ResolveCalls
// (here, ResolveFile / ResolveAll) walks each file's unresolved references against that
// index. The teacher's version is Go-only and keeps three parallel maps
// (packageIndex, globalFunctions, fileImports) alongside the parser's output
// slices; this version asks the already-populated Symbol Table for the same
// information (symboltable.Table.EntriesByKind, ImportsOf) instead of
// threading a second set of slices through the Driver, and drives call-site
// classification from langregistry.CallRule/SelfToken/SuperToken instead of
// a Go-only string-splitting switch.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/graphupdater/pkg/cst"
	"github.com/kraklabs/graphupdater/pkg/graph"
	"github.com/kraklabs/graphupdater/pkg/langregistry"
	"github.com/kraklabs/graphupdater/pkg/metrics"
	"github.com/kraklabs/graphupdater/pkg/symboltable"
)

// ModuleInfo is the minimal per-file description the Resolver needs to
// build its import-path index. The Driver builds this from the walker's
// Result.Files; the Resolver intentionally does not import pkg/walker to
// keep the pipeline phases decoupled from one another.
type ModuleInfo struct {
	ModuleFQN  string
	PackageFQN string // "" if the file's directory was not a package
	Language   string
}

// File is one source file to resolve: the same source bytes the Definition
// Extractor parsed, re-parsed here for the resolution pass (SPEC_FULL.md §5
// notes the two passes re-parse independently rather than share a cached
// CST, since the sitter.Tree is not retained between phases).
type File struct {
	ModuleFQN string
	Language  string
	Source    []byte
}

// Resolver holds the project-wide index built by BuildIndex and resolves
// each file's CALLS/INHERITS/IMPLEMENTS/IMPORTS edges against it.
type Resolver struct {
	adapter *cst.Adapter
	table   *symboltable.Table
	logger  *slog.Logger

	// bySimpleName maps a defining scope's FQN (a Package, Module, or type
	// FQN) to the simple names declared directly inside it, for qualified-
	// call, dot-import, and nominal-inheritance lookups. Mirrors the
	// teacher's globalFunctions[pkgPath][simpleName]=fn.ID, generalized to
	// any scope and any definable kind.
	bySimpleName map[string]map[string]string

	// pathIndex maps a dot-joined path suffix (derived from a Module or
	// Package FQN) to that FQN, for import-path matching. Mirrors the
	// teacher's importPathToPackagePath plus its suffix-matching fallback
	// in findPackageByImportPath.
	pathIndex map[string]string
	// byLastSegment maps a bare package/module name to its FQN, the
	// teacher's last-resort "match by package name" fallback. Ambiguous
	// names keep whichever FQN registered first, same limitation as the
	// teacher's map-based index.
	byLastSegment map[string]string

	// Metrics counts edges emitted by this Resolver. Nil is valid (no-op);
	// the Driver sets it before calling ResolveAll so graphupdater_calls_
	// resolved_total etc. reflect real runs rather than staying at zero.
	Metrics *metrics.Registry
}

// New creates a Resolver. adapter is reused across files (one fresh
// sitter.Parser per Parse call, same as the Definition Extractor). table
// must already be frozen (the Driver freezes it between the definition and
// resolution phases).
func New(adapter *cst.Adapter, table *symboltable.Table, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		adapter:       adapter,
		table:         table,
		logger:        logger,
		bySimpleName:  map[string]map[string]string{},
		pathIndex:     map[string]string{},
		byLastSegment: map[string]string{},
	}
}

func (r *Resolver) countImport() {
	if r.Metrics != nil {
		r.Metrics.ImportsResolved.Inc()
	}
}

func (r *Resolver) countInherit() {
	if r.Metrics != nil {
		r.Metrics.InheritsResolved.Inc()
	}
}

func (r *Resolver) countCall() {
	if r.Metrics != nil {
		r.Metrics.CallsResolved.Inc()
	}
}

// BuildIndex populates the project-wide lookups from the Symbol Table's
// definitions and modules' list, per spec.md §4.G ("resolution runs only
// after the full Symbol Table is built"). Call once, after the definition
// phase and before any ResolveFile call.
func (r *Resolver) BuildIndex(modules []ModuleInfo) {
	defKinds := []graph.Label{
		graph.LabelFunction, graph.LabelMethod,
		graph.LabelClass, graph.LabelInterface, graph.LabelStruct,
		graph.LabelEnum, graph.LabelTrait,
	}
	for _, e := range r.table.EntriesByKind(defKinds...) {
		scope := parentFQN(e.FQN)
		simple := lastSegment(e.FQN)
		m, ok := r.bySimpleName[scope]
		if !ok {
			m = map[string]string{}
			r.bySimpleName[scope] = m
		}
		// First definition of a given simple name in a scope wins, matching
		// spec.md §7's general "first registration wins" rule.
		if _, exists := m[simple]; !exists {
			m[simple] = e.FQN
		}
	}

	for _, m := range modules {
		r.indexPath(m.ModuleFQN)
		if m.PackageFQN != "" {
			r.indexPath(m.PackageFQN)
		}
	}
}

// indexPath registers every dot-path suffix of fqn (and its bare last
// segment) in the lookup tables, so an import written as a partial path
// ("internal/widgets" or "widgets") still matches.
func (r *Resolver) indexPath(fqn string) {
	segs := strings.Split(fqn, ".")
	for i := range segs {
		suffix := strings.Join(segs[i:], ".")
		if _, exists := r.pathIndex[suffix]; !exists {
			r.pathIndex[suffix] = fqn
		}
	}
	last := segs[len(segs)-1]
	if _, exists := r.byLastSegment[last]; !exists {
		r.byLastSegment[last] = fqn
	}
}

// ResolveFile runs the resolution pass over one file: INHERITS/IMPLEMENTS
// edges for every type the Definition Extractor recorded bases for, IMPORTS
// edges for the module's import map, and CALLS edges for every call
// expression found by re-walking the CST.
func (r *Resolver) ResolveFile(ctx context.Context, f File, sink *graph.SinkBuffer) error {
	lang, ok := langregistry.Get(f.Language)
	if !ok {
		return fmt.Errorf("resolver: unknown language %q", f.Language)
	}

	r.resolveImports(ctx, f.ModuleFQN, sink)
	r.resolveInheritance(ctx, f.ModuleFQN, sink)

	tree, err := r.adapter.Parse(ctx, f.Source, f.Language)
	if err != nil {
		return fmt.Errorf("resolver: parse %s: %w", f.ModuleFQN, err)
	}
	defer tree.Close()

	rw := &resolveWalk{
		r:      r,
		lang:   lang,
		source: f.Source,
		module: f.ModuleFQN,
		sink:   sink,
	}
	rw.walk(ctx, tree.Root, callScope{ownerFQN: f.ModuleFQN, ownerLabel: graph.LabelModule})
	return nil
}

// resolveImports resolves moduleFQN's raw import bindings to Module/Package
// FQNs via the path index, emitting one IMPORTS edge per resolved import.
// Unresolved bindings (external libraries, or paths the walker never saw)
// are left as-is, per spec.md §7's UnresolvedReference handling.
func (r *Resolver) resolveImports(ctx context.Context, moduleFQN string, sink *graph.SinkBuffer) {
	for _, b := range r.table.ImportsOf(moduleFQN) {
		if b.Resolved {
			continue
		}

		sourceModule := r.resolveImportPath(b.Target)
		if sourceModule == "" {
			continue
		}

		// The IMPORTS edge always points module-to-module (SPEC_FULL.md §8
		// scenario (e): "IMPORTS edges b -> a, c -> b" even though the
		// local name being imported is a function, not the module itself).
		label := graph.LabelModule
		if kind, ok := r.table.LookupAbsolute(sourceModule); ok {
			label = kind
		}
		_ = sink.EnsureRelationship(ctx,
			graph.NodeRef{Label: graph.LabelModule, Key: moduleFQN},
			graph.RelImports,
			graph.NodeRef{Label: label, Key: sourceModule},
			nil)
		r.countImport()

		target := sourceModule
		if b.Symbol != "" {
			// Named-symbol import ("from X import Y" / "import {Y} from
			// 'X'"): resolve the symbol within the source module/package
			// so a later bare call to the local name finds the symbol's
			// own FQN, not the module's. A miss (the symbol isn't actually
			// defined there) leaves the binding unresolved for call
			// purposes, per spec.md §7's "drop, don't error" rule, but the
			// module-level IMPORTS edge above still stands.
			fqn, ok := r.resolveSymbolInModule(sourceModule, b.Symbol, map[string]bool{})
			if !ok {
				continue
			}
			target = fqn
		}
		r.table.MarkImportResolved(moduleFQN, b.LocalName, target)
	}
}

// resolveSymbolInModule answers "what FQN does `symbol` as seen from
// moduleFQN's scope name?", chasing aliased re-export chains of arbitrary
// depth (SPEC_FULL.md §8 scenario (e): `b.ts` re-exports `a.ts`'s `foo` as
// `bar`; `c.ts` imports `bar` from `b`). It tries moduleFQN's own
// definitions first, then moduleFQN's raw (possibly still-unresolved)
// import map for a binding under that name, recursing into the binding's
// source module. visited guards against a cyclic re-export chain
// (malformed source, per spec.md §9): each moduleFQN is entered at most
// once.
func (r *Resolver) resolveSymbolInModule(moduleFQN, symbol string, visited map[string]bool) (string, bool) {
	if fqn, ok := r.bySimpleName[moduleFQN][symbol]; ok {
		return fqn, true
	}
	if visited[moduleFQN] {
		return "", false
	}
	visited[moduleFQN] = true

	for _, b := range r.table.ImportsOf(moduleFQN) {
		if b.LocalName != symbol {
			continue
		}
		if b.Resolved {
			// Another file's resolution pass already chased this binding
			// to its end (phases run with no ordering guarantee across
			// files, per spec.md §5); Target is already the final FQN.
			return b.Target, true
		}
		next := r.resolveImportPath(b.Target)
		if next == "" {
			return "", false
		}
		if b.Symbol != "" {
			return r.resolveSymbolInModule(next, b.Symbol, visited)
		}
		return next, true
	}
	return "", false
}

// resolveImportPath matches a raw import path (slash- or dot-separated,
// possibly with a leading "./"/"../") to a known Module or Package FQN,
// mirroring the teacher's findPackageByImportPath: direct match, then
// suffix match, then bare-name match.
func (r *Resolver) resolveImportPath(raw string) string {
	norm := strings.TrimPrefix(raw, "./")
	norm = strings.TrimPrefix(norm, "../")
	norm = strings.ReplaceAll(norm, "/", ".")
	norm = strings.Trim(norm, ".")
	if norm == "" {
		return ""
	}

	if fqn, ok := r.pathIndex[norm]; ok {
		return fqn
	}
	segs := strings.Split(norm, ".")
	for i := 1; i < len(segs); i++ {
		if fqn, ok := r.pathIndex[strings.Join(segs[i:], ".")]; ok {
			return fqn
		}
	}
	if fqn, ok := r.byLastSegment[segs[len(segs)-1]]; ok {
		return fqn
	}
	return ""
}

// resolveInheritance walks every type entry owned by moduleFQN and resolves
// its recorded BaseRefs to target FQNs via nominal lookup, per spec.md
// §4.G.4. A base that does not resolve still gets its edge, pointing at the
// name as written and carrying resolved=false and external_name. Go's structural IMPLEMENTS (interface satisfaction by method set,
// no heritage clause) is handled separately by ResolveImplements.
func (r *Resolver) resolveInheritance(ctx context.Context, moduleFQN string, sink *graph.SinkBuffer) {
	typeKinds := []graph.Label{graph.LabelClass, graph.LabelInterface, graph.LabelStruct, graph.LabelEnum, graph.LabelTrait}
	for _, e := range r.table.EntriesByKind(typeKinds...) {
		if parentFQN(e.FQN) != moduleFQN {
			continue
		}
		for i, b := range r.table.Bases(e.FQN) {
			if b.Resolved {
				continue
			}
			rel := graph.RelInherits
			if b.Kind == langregistry.Implements {
				rel = graph.RelImplements
			}
			target, ok := r.resolveTypeName(moduleFQN, b.Name)
			if !ok {
				_ = sink.EnsureRelationship(ctx,
					graph.NodeRef{Label: e.Kind, Key: e.FQN},
					rel,
					graph.NodeRef{Label: graph.LabelClass, Key: b.Name},
					graph.Props{"resolved": false, "external_name": b.Name})
				continue
			}
			r.table.ResolveBase(e.FQN, i, target)
			targetLabel := graph.LabelClass
			if kind, ok := r.table.LookupAbsolute(target); ok {
				targetLabel = kind
			}
			_ = sink.EnsureRelationship(ctx,
				graph.NodeRef{Label: e.Kind, Key: e.FQN},
				rel,
				graph.NodeRef{Label: targetLabel, Key: target},
				nil)
			r.countInherit()
		}
	}
}

// resolveTypeName resolves a base-type reference as written ("Base" or
// "pkg.Base") against moduleFQN's import map, then the module's own scope,
// then a project-wide bare-name fallback.
func (r *Resolver) resolveTypeName(moduleFQN, rawName string) (string, bool) {
	if strings.Contains(rawName, ".") {
		parts := strings.SplitN(rawName, ".", 2)
		if b, ok := findImport(r.table, moduleFQN, parts[0]); ok && b.Resolved {
			if fqn, ok := r.bySimpleName[b.Target][parts[1]]; ok {
				return fqn, true
			}
		}
		return "", false
	}

	if b, ok := findImport(r.table, moduleFQN, rawName); ok && b.Resolved {
		if _, ok := r.table.LookupAbsolute(b.Target); ok {
			return b.Target, true
		}
	}
	if fqn, ok := r.bySimpleName[moduleFQN][rawName]; ok {
		return fqn, true
	}
	pkgFQN := parentFQN(moduleFQN)
	if fqn, ok := r.bySimpleName[pkgFQN][rawName]; ok {
		return fqn, true
	}
	if fqn, ok := r.byLastSegment[rawName]; ok {
		if _, ok := r.table.LookupAbsolute(fqn); ok {
			return fqn, true
		}
	}
	return "", false
}

func findImport(table *symboltable.Table, moduleFQN, alias string) (symboltable.ImportBinding, bool) {
	for _, b := range table.ImportsOf(moduleFQN) {
		if b.LocalName == alias {
			return b, true
		}
	}
	return symboltable.ImportBinding{}, false
}

// callScope tracks, while re-walking a file's CST for call resolution, the
// enclosing type (for self/this and super/constructor resolution) and
// module (for bare/unqualified resolution).
type callScope struct {
	ownerFQN      string
	ownerLabel    graph.Label
	enclosingType string // "" outside any type's method body
	receiverName  string // Go's bound receiver variable name, "" if none/not Go
}

type resolveWalk struct {
	r      *Resolver
	lang   langregistry.Language
	source []byte
	module string
	sink   *graph.SinkBuffer
}

func (w *resolveWalk) walk(ctx context.Context, node *sitter.Node, scope callScope) {
	if node == nil {
		return
	}

	if next, ok := w.enterDefinition(node, scope); ok {
		scope = next
	}

	for _, rule := range w.lang.Calls {
		if node.Type() == rule.NodeKind {
			w.resolveCallSite(ctx, node, rule, scope)
			break
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		w.walk(ctx, node.Child(i), scope)
	}
}

// enterDefinition updates scope.enclosingType when node is a type or method
// definition, so nested call expressions know which type's method set to
// consult for self/super/field-typed receiver resolution. This duplicates
// the Definition Extractor's rule-matching rather than sharing state with
// it, since the two phases run as independent CST walks (spec.md §5).
func (w *resolveWalk) enterDefinition(node *sitter.Node, scope callScope) (callScope, bool) {
	for _, rule := range w.lang.Definitions {
		if node.Type() != rule.NodeKind {
			continue
		}
		name := definitionText(node, rule.NameField, w.source)
		if name == "" {
			return callScope{}, false
		}
		if rule.ReceiverField != "" {
			recv := receiverTypeName(node, rule.ReceiverField, w.source)
			if recv == "" {
				return callScope{}, false
			}
			typeFQN := w.module + "." + recv
			recvVar := receiverVarName(node, rule.ReceiverField, w.source)
			return callScope{ownerFQN: typeFQN + "." + name, ownerLabel: graph.LabelMethod, enclosingType: typeFQN, receiverName: recvVar}, true
		}
		switch rule.Kind {
		case langregistry.KindClass, langregistry.KindInterface, langregistry.KindStruct, langregistry.KindEnum, langregistry.KindTrait:
			fqn := scope.ownerFQN + "." + name
			return callScope{ownerFQN: fqn, ownerLabel: kindLabel(rule.Kind), enclosingType: fqn}, true
		case langregistry.KindMethod:
			fqn := scope.ownerFQN + "." + name
			return callScope{ownerFQN: fqn, ownerLabel: graph.LabelMethod, enclosingType: scope.enclosingType, receiverName: scope.receiverName}, true
		default:
			fqn := scope.ownerFQN + "." + name
			label := graph.LabelFunction
			if scope.ownerLabel.IsType() {
				label = graph.LabelMethod
			}
			return callScope{ownerFQN: fqn, ownerLabel: label, enclosingType: scope.enclosingType, receiverName: scope.receiverName}, true
		}
	}
	return callScope{}, false
}

// resolveCallSite classifies one call expression per spec.md §4.G.3 (bare,
// qualified, self/this, super, static-qualified, constructor) and emits a
// CALLS edge if resolution succeeds. The caller is whatever Function/Method
// scope.enclosingType or scope.ownerFQN currently names; unresolved calls
// are silently dropped (spec.md §7: "best-effort; an unresolved call is not
// an error").
//
// A qualifier that is itself a call expression (`Storage.get_instance().
// clear_all()`, spec.md §8 scenario (b)) is detected structurally rather
// than textually, since the naive "whole callee text" approach used for a
// simple qualified call would include the inner call's parentheses and
// never match any known name.
func (w *resolveWalk) resolveCallSite(ctx context.Context, node *sitter.Node, rule langregistry.CallRule, scope callScope) {
	calleeNode := cst.Field(node, rule.CalleeField)
	if calleeNode == nil {
		return
	}

	var objNode *sitter.Node
	var member string
	if obj, prop, ok := memberParts(calleeNode); ok {
		objNode, member = obj, cst.Text(prop, w.source)
	} else if obj := cst.Field(node, "object"); obj != nil && calleeNode != obj {
		objNode, member = obj, cst.Text(calleeNode, w.source)
	} else if recv := cst.Field(node, "receiver"); recv != nil && calleeNode != recv {
		objNode, member = recv, cst.Text(calleeNode, w.source)
	}

	var target string
	var ok bool
	if objNode != nil {
		target, ok = w.resolveQualifiedCall(objNode, member, scope)
	} else {
		target, ok = w.resolveCallee(cst.Text(calleeNode, w.source), scope)
	}
	if !ok || target == "" {
		return
	}
	targetLabel, ok := w.r.table.LookupAbsolute(target)
	if !ok {
		return
	}
	_ = w.sink.EnsureRelationship(ctx,
		graph.NodeRef{Label: scope.ownerLabel, Key: scope.ownerFQN},
		graph.RelCalls,
		graph.NodeRef{Label: targetLabel, Key: target},
		nil)
	w.r.countCall()
}

// resolveQualifiedCall resolves "<objNode>.<member>()". When objNode is
// itself a call expression, the chain is walked by resolving the inner call
// first, then consulting its declared return type (or, absent one, the
// inner call's own owning type — the singleton-pattern fallback spec.md
// §8(b) calls out: "the type name of the qualifier otherwise") to find
// member on. `super()` resolves directly to a type (the base class), not a
// method, so it skips the owning-type step entirely and uses that type as
// the chain's continuation. Any non-call qualifier (identifier, self
// token, imported name) falls through to resolveCallee's existing
// flat-text handling, unchanged from before chained calls were supported.
func (w *resolveWalk) resolveQualifiedCall(objNode *sitter.Node, member string, scope callScope) (string, bool) {
	if cr, ok := w.isCallNode(objNode); ok {
		innerCallee := cst.Field(objNode, cr.CalleeField)
		if innerCallee == nil {
			return "", false
		}
		innerTarget, ok := w.resolveCallee(cst.Text(innerCallee, w.source), scope)
		if !ok {
			return "", false
		}

		typeFQN := innerTarget
		if kind, ok := w.r.table.LookupAbsolute(innerTarget); !ok || kind == graph.LabelMethod || kind == graph.LabelFunction {
			// innerTarget names a function/method, not a type (the normal
			// case, e.g. get_instance()); its declared return type names
			// the chain's continuation, falling back to its own owning
			// type for the common no-annotation singleton accessor.
			typeFQN = parentFQN(innerTarget)
			if rt, ok := w.r.table.ReturnType(innerTarget); ok && rt != "" {
				typeFQN = w.qualifyFieldType(rt)
			}
		}
		return w.r.table.LookupMember(typeFQN, member)
	}
	return w.resolveCallee(cst.Text(objNode, w.source)+"."+member, scope)
}

// memberParts reports whether n is a member-access node (Python's
// attribute, Go's selector_expression, TypeScript/JavaScript's
// member_expression) and, if so, its object and member-name sub-nodes.
// Field names vary per grammar, so every plausible pair is tried; exactly
// one will be present on an actual member-access node, and no other node
// kind under the supported languages carries both an "object"/"operand"
// field and a "property"/"field"/"attribute" field.
func memberParts(n *sitter.Node) (obj, member *sitter.Node, ok bool) {
	for _, of := range []string{"object", "operand"} {
		o := cst.Field(n, of)
		if o == nil {
			continue
		}
		for _, mf := range []string{"property", "field", "attribute"} {
			if m := cst.Field(n, mf); m != nil {
				return o, m, true
			}
		}
	}
	return nil, nil, false
}

// isCallNode reports whether n matches one of this file's language's own
// CallRule node kinds, and returns that rule so its CalleeField can be used
// to recurse into a chained call's own callee.
func (w *resolveWalk) isCallNode(n *sitter.Node) (langregistry.CallRule, bool) {
	for _, r := range w.lang.Calls {
		if n.Type() == r.NodeKind {
			return r, true
		}
	}
	return langregistry.CallRule{}, false
}

func (w *resolveWalk) resolveCallee(calleeText string, scope callScope) (string, bool) {
	r := w.r

	if w.lang.SelfToken != "" && (calleeText == w.lang.SelfToken || strings.HasPrefix(calleeText, w.lang.SelfToken+".")) {
		member := strings.TrimPrefix(calleeText, w.lang.SelfToken+".")
		if member == w.lang.SelfToken || scope.enclosingType == "" {
			return "", false
		}
		return r.table.LookupMember(scope.enclosingType, member)
	}
	if w.lang.SuperToken != "" && (calleeText == w.lang.SuperToken || strings.HasPrefix(calleeText, w.lang.SuperToken+".")) {
		if scope.enclosingType == "" {
			return "", false
		}
		base, ok := r.table.FirstResolvedBase(scope.enclosingType)
		if !ok {
			return "", false
		}
		member := strings.TrimPrefix(calleeText, w.lang.SuperToken+".")
		if member == w.lang.SuperToken {
			return base, true
		}
		return r.table.LookupMember(base, member)
	}

	if strings.Contains(calleeText, ".") {
		idx := strings.LastIndex(calleeText, ".")
		qualifier, member := calleeText[:idx], calleeText[idx+1:]

		// Field-typed receiver cue: "w.repo.Save()" where repo's declared
		// field type is a known struct, per spec.md §4.G.6.
		if scope.enclosingType != "" {
			if ft, ok := r.table.FieldType(scope.enclosingType, qualifier); ok {
				if target, ok := r.table.LookupMember(w.qualifyFieldType(ft), member); ok {
					return target, true
				}
			}
		}
		if b, ok := findImport(r.table, w.module, qualifier); ok && b.Resolved {
			if fqn, ok := r.bySimpleName[b.Target][member]; ok {
				return fqn, true
			}
		}
		if target, ok := r.table.LookupMember(w.module+"."+qualifier, member); ok {
			return target, true
		}
		// Go has no self/this token, but a method's receiver variable is
		// itself a static cue: its declared type is right there in the
		// receiver clause, just bound under whatever name the method chose
		// ("w" for *Widget, "s" for *Server, ...). scope.receiverName is
		// that exact bound name, so this only fires for the real receiver,
		// never an arbitrary unrelated qualifier of the same enclosing type.
		if scope.receiverName != "" && qualifier == scope.receiverName {
			if target, ok := r.table.LookupMember(scope.enclosingType, member); ok {
				return target, true
			}
		}
		return "", false
	}

	// Bare call: own scope first (method set via inheritance), then module,
	// then package, then any dot-imported module (spec.md §4.G.3 "wildcard
	// import" fallback, mirroring the teacher's Case 2).
	if scope.enclosingType != "" {
		if target, ok := r.table.LookupMember(scope.enclosingType, calleeText); ok {
			return target, true
		}
	}
	if target, ok := r.table.LookupInModule(w.module, calleeText); ok {
		return target, true
	}
	if fqn, ok := r.bySimpleName[parentFQN(w.module)][calleeText]; ok {
		return fqn, true
	}
	for _, b := range r.table.ImportsOf(w.module) {
		if b.LocalName == "." || b.LocalName == "*" {
			if fqn, ok := r.bySimpleName[b.Target][calleeText]; ok {
				return fqn, true
			}
		}
	}
	return "", false
}

// qualifyFieldType turns a declared field type's raw text ("*Repo",
// "Repo", "pkg.Repo") into the best-guess type FQN within the current
// module, reusing the same bare-name heuristics as resolveTypeName.
func (w *resolveWalk) qualifyFieldType(raw string) string {
	name := strings.TrimLeft(raw, "*&[]")
	if strings.Contains(name, ".") {
		parts := strings.SplitN(name, ".", 2)
		if b, ok := findImport(w.r.table, w.module, parts[0]); ok && b.Resolved {
			return b.Target + "." + parts[1]
		}
		return name
	}
	if fqn, ok := w.r.bySimpleName[w.module][name]; ok {
		return fqn
	}
	// A bare type name can also be a same-named import binding (Python's
	// `from storage.storage import Storage` then `-> Storage`/`-> "Storage"`):
	// a resolved named-symbol import's Target is already the type's FQN.
	if b, ok := findImport(w.r.table, w.module, name); ok && b.Resolved {
		return b.Target
	}
	return w.module + "." + name
}

func kindLabel(k langregistry.Kind) graph.Label {
	switch k {
	case langregistry.KindClass:
		return graph.LabelClass
	case langregistry.KindInterface:
		return graph.LabelInterface
	case langregistry.KindStruct:
		return graph.LabelStruct
	case langregistry.KindEnum:
		return graph.LabelEnum
	case langregistry.KindTrait:
		return graph.LabelTrait
	default:
		return graph.LabelFunction
	}
}

func definitionText(node *sitter.Node, field string, source []byte) string {
	n := cst.Field(node, field)
	if n == nil {
		return ""
	}
	return cst.Text(n, source)
}

// receiverTypeName extracts the base struct name from a Go method's
// receiver field, e.g. "(s *Server)" -> "Server". Duplicated from
// pkg/extractor's helper of the same purpose since the two packages run
// independent CST walks and neither depends on the other.
func receiverTypeName(node *sitter.Node, field string, source []byte) string {
	recv := cst.Field(node, field)
	if recv == nil {
		return ""
	}
	for i := 0; i < int(recv.NamedChildCount()); i++ {
		param := recv.NamedChild(i)
		if param.Type() != "parameter_declaration" {
			continue
		}
		typeNode := cst.Field(param, "type")
		if typeNode == nil {
			continue
		}
		return baseTypeName(typeNode, source)
	}
	return ""
}

// receiverVarName extracts the bound variable name from a Go method's
// receiver field, e.g. "w" from "(w *Widget)". Returns "" for an unnamed
// receiver ("(*Widget)"), which simply means no self-call cue is available
// for this method.
func receiverVarName(node *sitter.Node, field string, source []byte) string {
	recv := cst.Field(node, field)
	if recv == nil {
		return ""
	}
	for i := 0; i < int(recv.NamedChildCount()); i++ {
		param := recv.NamedChild(i)
		if param.Type() != "parameter_declaration" {
			continue
		}
		nameNode := cst.Field(param, "name")
		if nameNode == nil {
			continue
		}
		return cst.Text(nameNode, source)
	}
	return ""
}

func baseTypeName(node *sitter.Node, source []byte) string {
	switch node.Type() {
	case "pointer_type":
		if inner := node.NamedChild(0); inner != nil {
			return baseTypeName(inner, source)
		}
	case "generic_type":
		if inner := cst.Field(node, "type"); inner != nil {
			return baseTypeName(inner, source)
		}
	}
	text := cst.Text(node, source)
	return strings.TrimLeft(text, "*")
}

func parentFQN(fqn string) string {
	idx := strings.LastIndex(fqn, ".")
	if idx < 0 {
		return fqn
	}
	return fqn[:idx]
}

func lastSegment(fqn string) string {
	idx := strings.LastIndex(fqn, ".")
	if idx < 0 {
		return fqn
	}
	return fqn[idx+1:]
}

// ResolveStructuralImplements emits IMPLEMENTS edges for Go-style structural
// interface satisfaction (SPEC_FULL.md §8 scenario (g)): a struct with no
// explicit heritage clause still implements any interface, anywhere in the
// project, whose full method set is a subset of the struct's own declared
// method names. Grounded on the vjache-cie ImplementsEdge concept. Call once,
// after every file's ResolveFile has run (it needs the complete method-name
// index, not a single module's).
func (r *Resolver) ResolveStructuralImplements(ctx context.Context, sink *graph.SinkBuffer) {
	structs := r.table.EntriesByKind(graph.LabelStruct)
	interfaces := r.table.EntriesByKind(graph.LabelInterface)
	if len(structs) == 0 || len(interfaces) == 0 {
		return
	}

	methods := r.table.EntriesByKind(graph.LabelMethod)
	methodNames := map[string]map[string]bool{} // owning type FQN -> method simple names
	for _, m := range methods {
		if m.OwningType == "" {
			continue
		}
		set, ok := methodNames[m.OwningType]
		if !ok {
			set = map[string]bool{}
			methodNames[m.OwningType] = set
		}
		set[lastSegment(m.FQN)] = true
	}

	for _, iface := range interfaces {
		if iface.Language != "go" {
			continue
		}
		required := methodNames[iface.FQN]
		if len(required) == 0 {
			continue
		}
		for _, s := range structs {
			if s.Language != "go" || s.FQN == iface.FQN {
				continue
			}
			have := methodNames[s.FQN]
			if !supersetOf(have, required) {
				continue
			}
			_ = sink.EnsureRelationship(ctx,
				graph.NodeRef{Label: graph.LabelStruct, Key: s.FQN},
				graph.RelImplements,
				graph.NodeRef{Label: graph.LabelInterface, Key: iface.FQN},
				nil)
			r.countInherit()
		}
	}
}

func supersetOf(have, want map[string]bool) bool {
	if len(have) < len(want) {
		return false
	}
	for name := range want {
		if !have[name] {
			return false
		}
	}
	return true
}

// numWorkers caps ResolveAll's resolution worker pool, mirroring the
// teacher's resolveCallsParallel cap of 8.
func numWorkers() int {
	n := runtime.NumCPU()
	if n > 8 {
		return 8
	}
	if n < 1 {
		return 1
	}
	return n
}

// ResolveAll runs ResolveFile over every file, in parallel once the file
// count passes the teacher's 1000-call-style threshold adapted to file
// count, sequentially below it (spec.md §5: "the resolve phase may run
// per-file in parallel once the Symbol Table is frozen, since resolution
// only reads it").
func (r *Resolver) ResolveAll(ctx context.Context, files []File, sink *graph.SinkBuffer) error {
	if len(files) < 64 {
		for _, f := range files {
			if err := r.ResolveFile(ctx, f, sink); err != nil {
				return err
			}
		}
		return nil
	}

	jobs := make(chan File, len(files))
	errs := make(chan error, len(files))
	var wg sync.WaitGroup
	for i := 0; i < numWorkers(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				if err := r.ResolveFile(ctx, f, sink); err != nil {
					errs <- err
				}
			}
		}()
	}
	for _, f := range files {
		jobs <- f
	}
	close(jobs)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
