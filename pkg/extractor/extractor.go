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

// Package extractor implements the Definition Extractor (SPEC_FULL.md §4.F):
// a scope-stack walk over one file's CST that emits Class/Interface/Struct/
// Enum/Trait/Function/Method nodes and the DEFINES edges from their owning
// module or type, computes
// each definition's FQN, unifies overloads (first wins), synthesizes names
// for anonymous functions, and records raw (unresolved) base-type names for
// the Resolver to settle later. No CALLS/IMPORTS/INHERITS edges are emitted
// here — only DEFINES; CONTAINS edges come from the Project Walker.
//
// Grounded on pkg/ingestion/parser_go.go's walkGoAST/extractGoTypeSpec/
// extractReceiverType/extractBaseTypeName and parser_typescript.go's
// walkTSFunctions/extractTSClass, generalized from per-language hardcoded
// switches into one walk driven by langregistry's DefinitionRule/
// InheritanceRule/FieldRule tables.
package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/graphupdater/pkg/cst"
	"github.com/kraklabs/graphupdater/pkg/graph"
	"github.com/kraklabs/graphupdater/pkg/ids"
	"github.com/kraklabs/graphupdater/pkg/langregistry"
	"github.com/kraklabs/graphupdater/pkg/symboltable"
)

var kindToLabel = map[langregistry.Kind]graph.Label{
	langregistry.KindFunction:  graph.LabelFunction,
	langregistry.KindMethod:    graph.LabelMethod,
	langregistry.KindClass:     graph.LabelClass,
	langregistry.KindInterface: graph.LabelInterface,
	langregistry.KindStruct:    graph.LabelStruct,
	langregistry.KindEnum:      graph.LabelEnum,
	langregistry.KindTrait:     graph.LabelTrait,
}

// Extractor walks parsed files and emits definitions. Stateless and safe for
// concurrent use across files: each ExtractFile call only touches the sink
// and symbol table it's given, both of which own their own synchronization.
type Extractor struct {
	adapter *cst.Adapter
	logger  *slog.Logger
}

// New creates an Extractor backed by adapter.
func New(adapter *cst.Adapter, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{adapter: adapter, logger: logger}
}

// File is the minimal per-file input the extractor needs, matching the
// fields of walker.File without importing package walker (avoiding a
// dependency cycle with the Driver, which imports both).
type File struct {
	ModuleFQN  string
	PackageFQN string
	Language   string
	Source     []byte
}

// ExtractFile parses f.Source and emits its definitions to sink, registering
// each FQN (and any recorded base-type references / fields) in table.
func (e *Extractor) ExtractFile(ctx context.Context, f File, sink *graph.SinkBuffer, table *symboltable.Table) error {
	lang, ok := langregistry.Get(f.Language)
	if !ok {
		return fmt.Errorf("extractor: unknown language %q", f.Language)
	}

	tree, err := e.adapter.Parse(ctx, f.Source, f.Language)
	if err != nil {
		return fmt.Errorf("extractor: parse: %w", err)
	}
	defer tree.Close()

	w := &walkState{
		lang:   lang,
		source: f.Source,
		sink:   sink,
		table:  table,
		anon:   &ids.AnonymousCounter{},
		logger: e.logger,
	}
	root := scopeFrame{FQN: f.ModuleFQN, Label: graph.LabelModule}
	w.walk(ctx, tree.Root, root)
	return nil
}

type scopeFrame struct {
	FQN   string
	Label graph.Label
}

type walkState struct {
	lang   langregistry.Language
	source []byte
	sink   *graph.SinkBuffer
	table  *symboltable.Table
	anon   *ids.AnonymousCounter
	logger *slog.Logger
}

// walk recurses over node with parent as the enclosing definition's scope
// frame, mirroring parser_go.go's walkGoAST/walkGoTypesAST recursive
// descent, generalized to dispatch on the language's rule tables instead of
// a fixed switch.
func (w *walkState) walk(ctx context.Context, node *sitter.Node, parent scopeFrame) {
	if node == nil {
		return
	}
	select {
	case <-ctx.Done():
		return
	default:
	}

	nodeType := node.Type()

	if rule, ok := w.definitionRule(nodeType); ok {
		if frame, handled := w.emitDefinition(ctx, node, rule, parent); handled {
			// A node that is both a definition and an inheritance site
			// (Python's class_definition with its superclasses field)
			// records its bases against its own frame.
			if irule, ok := w.inheritanceRule(nodeType); ok {
				w.recordBases(node, irule, frame)
			}
			w.recurseChildren(ctx, node, frame)
			return
		}
	}

	if rule, ok := w.inheritanceRule(nodeType); ok {
		w.recordBases(node, rule, parent)
	}

	if rule, ok := w.fieldRule(nodeType); ok {
		w.recordField(node, rule, parent)
	}

	if rule, ok := w.importRule(nodeType); ok {
		w.recordImport(node, rule, parent)
	}

	w.recurseChildren(ctx, node, parent)
}

func (w *walkState) recurseChildren(ctx context.Context, node *sitter.Node, parent scopeFrame) {
	count := int(node.NamedChildCount())
	for i := 0; i < count; i++ {
		w.walk(ctx, node.NamedChild(i), parent)
	}
}

func (w *walkState) definitionRule(nodeType string) (langregistry.DefinitionRule, bool) {
	for _, r := range w.lang.Definitions {
		if r.NodeKind == nodeType {
			return r, true
		}
	}
	return langregistry.DefinitionRule{}, false
}

func (w *walkState) inheritanceRule(nodeType string) (langregistry.InheritanceRule, bool) {
	for _, r := range w.lang.Inheritance {
		if r.NodeKind == nodeType {
			return r, true
		}
	}
	return langregistry.InheritanceRule{}, false
}

func (w *walkState) fieldRule(nodeType string) (langregistry.FieldRule, bool) {
	for _, r := range w.lang.Fields {
		if r.NodeKind == nodeType {
			return r, true
		}
	}
	return langregistry.FieldRule{}, false
}

func (w *walkState) importRule(nodeType string) (langregistry.ImportRule, bool) {
	for _, r := range w.lang.Imports {
		if r.NodeKind == nodeType {
			return r, true
		}
	}
	return langregistry.ImportRule{}, false
}

// emitDefinition handles one definition-rule match. It returns the scope
// frame children should recurse under, and handled=false if this particular
// node turned out not to be a real definition after all (e.g. a Go
// type_spec whose body is a type alias, which the registry's generic
// type_spec rule cannot distinguish from a struct/interface without
// inspecting the body field, matching determineGoTypeKind's refinement).
func (w *walkState) emitDefinition(ctx context.Context, node *sitter.Node, rule langregistry.DefinitionRule, parent scopeFrame) (scopeFrame, bool) {
	kind, ok := w.refineKind(node, rule)
	if !ok {
		return scopeFrame{}, false
	}
	label, ok := kindToLabel[kind]
	if !ok {
		return scopeFrame{}, false
	}
	// A function defined directly inside a type body (Python's def inside a
	// class) is a method of that type.
	if label == graph.LabelFunction && parent.Label.IsType() {
		label = graph.LabelMethod
	}

	name := w.definitionName(node, rule)
	anonymous := name == ""
	if anonymous {
		name = w.anon.Next()
	}

	// Go method_declaration nodes are always top-level, so parent here is
	// still the file's Module frame regardless of how many other top-level
	// declarations came before it; a method therefore attaches to its
	// receiver type's FQN as "<module>.<ReceiverType>", which only resolves
	// correctly when the struct is declared in the same file as its methods.
	// Cross-file method attachment (legal in Go) is not modeled: it would
	// need a package-wide type index, which belongs to the Resolver's
	// cross-file pass, not a single-file extraction step.
	ownerFQN, ownerLabel := parent.FQN, parent.Label
	if rule.ReceiverField != "" {
		if recv := w.receiverTypeName(node, rule.ReceiverField); recv != "" {
			ownerFQN = qualify(parent.FQN, recv)
			ownerLabel = graph.LabelStruct
		}
	}

	fqn := ownerFQN + "." + name

	if err := w.table.Register(fqn, label, w.lang.Tag); err != nil {
		w.logger.Debug("extractor.definition.duplicate", "fqn", fqn)
		// First registration wins; still emit the node and its DEFINES edge
		// (the sink dedups) and still recurse into the body below, since a
		// second same-named overload may itself contain further nested
		// definitions worth extracting.
	}
	if label == graph.LabelMethod {
		w.table.SetOwningType(fqn, ownerFQN)
	}
	if rule.ReturnTypeField != "" {
		if rt := cst.Field(node, rule.ReturnTypeField); rt != nil {
			// TypeScript's "return_type" field is the type_annotation node
			// itself, whose text includes the leading ": " (tree-sitter-
			// typescript grammar); Go's "result" and Python's "return_type"
			// fields are bare type text with nothing to strip, except a
			// Python forward-reference annotation ("-> \"Storage\"") quotes
			// the name to defer evaluation, same as a string-literal type
			// hint anywhere else in the signature.
			text := strings.TrimSpace(strings.TrimPrefix(cst.Text(rt, w.source), ":"))
			text = strings.Trim(text, `"'`)
			if text != "" {
				w.table.SetReturnType(fqn, text)
			}
		}
	}

	props := graph.Props{graph.KeyName: fqn, "name": name, "language": w.lang.Tag}
	if err := w.sink.EnsureNode(ctx, label, fqn, props); err != nil {
		w.logger.Warn("extractor.ensure_node.failed", "fqn", fqn, "err", err)
	}

	ownerRef := graph.NodeRef{Label: ownerLabel, Key: ownerFQN}
	childRef := graph.NodeRef{Label: label, Key: fqn}
	// Module/Type -> member edges are always DEFINES; CONTAINS is reserved
	// for the Project/Package/Module containment chain the walker builds.
	if err := w.sink.EnsureRelationship(ctx, ownerRef, graph.RelDefines, childRef, nil); err != nil {
		w.logger.Warn("extractor.ensure_relationship.failed", "fqn", fqn, "err", err)
	}

	return scopeFrame{FQN: fqn, Label: label}, true
}

// refineKind resolves the DefinitionRule's nominal Kind into the actual
// kind for ambiguous node kinds. Go's "type_spec" rule is registered as
// KindStruct but actually covers struct_type, interface_type, and type
// aliases; determineGoTypeKind's logic (inspect the body field's node
// type) disambiguates them here, skipping aliases entirely (ok=false) since
// spec.md's data model has no Type-alias node kind.
func (w *walkState) refineKind(node *sitter.Node, rule langregistry.DefinitionRule) (langregistry.Kind, bool) {
	if rule.NodeKind != "type_spec" {
		return rule.Kind, true
	}
	body := cst.Field(node, rule.BodyField)
	if body == nil {
		return rule.Kind, true
	}
	switch body.Type() {
	case "struct_type":
		return langregistry.KindStruct, true
	case "interface_type":
		return langregistry.KindInterface, true
	default:
		return "", false
	}
}

func (w *walkState) definitionName(node *sitter.Node, rule langregistry.DefinitionRule) string {
	nameNode := cst.Field(node, rule.NameField)
	if nameNode == nil {
		return ""
	}
	return cst.Text(nameNode, w.source)
}

// receiverTypeName extracts a Go method's receiver base type name, e.g.
// "Server" from "(s *Server)" or "Server" from "(s Server[T])", grounded on
// parser_go.go's extractReceiverType/extractBaseTypeName.
func (w *walkState) receiverTypeName(node *sitter.Node, receiverField string) string {
	receiver := cst.Field(node, receiverField)
	if receiver == nil {
		return ""
	}
	count := int(receiver.NamedChildCount())
	for i := 0; i < count; i++ {
		param := receiver.NamedChild(i)
		if param.Type() != "parameter_declaration" {
			continue
		}
		typeNode := cst.Field(param, "type")
		if typeNode == nil {
			continue
		}
		return baseTypeName(typeNode, w.source)
	}
	return ""
}

// baseTypeName strips pointer and generic-instantiation wrapping from a type
// expression, e.g. *Server -> Server, Server[T] -> Server.
func baseTypeName(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	switch node.Type() {
	case "pointer_type":
		count := int(node.NamedChildCount())
		if count > 0 {
			return baseTypeName(node.NamedChild(0), source)
		}
		return ""
	case "generic_type":
		if typeName := cst.Field(node, "type"); typeName != nil {
			return cst.Text(typeName, source)
		}
	case "type_identifier":
		return cst.Text(node, source)
	}
	text := cst.Text(node, source)
	text = strings.TrimPrefix(text, "*")
	if idx := strings.Index(text, "["); idx > 0 {
		text = text[:idx]
	}
	return text
}

// recordBases handles an InheritanceRule match: Go's struct_type rule walks
// its field_declaration_list for embedded (anonymous, unnamed) fields, since
// Go has no single "bases field" the way class_heritage/superclasses do;
// every other language reads rule.BasesField directly (a single type
// reference, or a list of them).
func (w *walkState) recordBases(node *sitter.Node, rule langregistry.InheritanceRule, parent scopeFrame) {
	if parent.Label == "" || !parent.Label.IsType() {
		return
	}

	if rule.NodeKind == "struct_type" && rule.BasesField == "" {
		w.recordGoEmbeddedFields(node, parent)
		return
	}

	var baseNode *sitter.Node
	if rule.BasesField != "" {
		baseNode = cst.Field(node, rule.BasesField)
	} else {
		baseNode = node
	}
	if baseNode == nil {
		return
	}

	names := typeNamesIn(baseNode, w.source)
	for _, n := range names {
		w.table.RecordBase(parent.FQN, n, rule.Kind)
	}
}

// recordGoEmbeddedFields finds field_declaration nodes with no "name" field
// inside structTypeNode's field list — Go's embedded-field syntax, the
// closest analogue to extends.
func (w *walkState) recordGoEmbeddedFields(structTypeNode *sitter.Node, parent scopeFrame) {
	fieldList := cst.Field(structTypeNode, "body")
	if fieldList == nil {
		count := int(structTypeNode.NamedChildCount())
		for i := 0; i < count; i++ {
			child := structTypeNode.NamedChild(i)
			if child.Type() == "field_declaration_list" {
				fieldList = child
				break
			}
		}
	}
	if fieldList == nil {
		return
	}

	count := int(fieldList.NamedChildCount())
	for i := 0; i < count; i++ {
		decl := fieldList.NamedChild(i)
		if decl.Type() != "field_declaration" {
			continue
		}
		if cst.Field(decl, "name") != nil {
			continue // named field, not embedded
		}
		typeNode := cst.Field(decl, "type")
		if typeNode == nil {
			continue
		}
		name := baseTypeName(typeNode, w.source)
		if name != "" {
			w.table.RecordBase(parent.FQN, name, langregistry.Extends)
		}
	}
}

// typeNamesIn collects every type-identifier-shaped name under node: a
// single base type (e.g. extends_clause's "value" field) or a comma-joined
// list of them (e.g. implements_clause's "types" field).
func typeNamesIn(node *sitter.Node, source []byte) []string {
	switch node.Type() {
	case "identifier", "type_identifier":
		return []string{cst.Text(node, source)}
	}

	var names []string
	count := int(node.NamedChildCount())
	if count == 0 {
		return []string{cst.Text(node, source)}
	}
	for i := 0; i < count; i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier", "type_identifier", "nested_type_identifier", "generic_type":
			names = append(names, baseTypeName(child, source))
		default:
			names = append(names, typeNamesIn(child, source)...)
		}
	}
	return names
}

func (w *walkState) recordField(node *sitter.Node, rule langregistry.FieldRule, parent scopeFrame) {
	if parent.Label == "" || !parent.Label.IsType() {
		return
	}
	nameNode := cst.Field(node, rule.NameField)
	typeNode := cst.Field(node, rule.TypeField)
	if nameNode == nil || typeNode == nil {
		return
	}
	name := cst.Text(nameNode, w.source)
	declType := baseTypeName(typeNode, w.source)
	w.table.RecordField(parent.FQN, name, declType)
}

func (w *walkState) recordImport(node *sitter.Node, rule langregistry.ImportRule, parent scopeFrame) {
	// Java's import_declaration (like Go's struct_type base clause, see
	// recordBases) has no named path field at all: PathField=="" means
	// "reconstruct it from the node itself" rather than "this import has
	// no path", matching how rule.BasesField=="" is handled above.
	usingNodeFallback := rule.PathField == ""
	var pathNode *sitter.Node
	if usingNodeFallback {
		pathNode = importPathNode(node)
	} else {
		pathNode = cst.Field(node, rule.PathField)
	}
	if pathNode == nil {
		return
	}
	path := strings.Trim(cst.Text(pathNode, w.source), `"'`)
	if path == "" {
		return
	}
	moduleFQN := parent.FQN

	if len(rule.SpecifierKinds) > 0 {
		if w.recordNamedImports(node, pathNode, rule, path, moduleFQN) > 0 {
			return
		}
		// No named specifier matched (a bare `import Foo from './a'`
		// default import, or a side-effect-only `import './a'`): fall
		// through to the whole-statement binding below so the import
		// isn't silently dropped.
	}

	local := path
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		local = path[idx+1:]
	} else if usingNodeFallback {
		// Java's scoped_identifier is dot-joined ("java.util.List"); the
		// locally-bound name is the last segment, the simple class name
		// (or, for an on-demand "java.util.*" import, the package's own
		// last segment — there is no single symbol to bind).
		if idx := strings.LastIndex(path, "."); idx >= 0 {
			local = path[idx+1:]
		}
	}
	if rule.AliasField != "" {
		if aliasNode := cst.Field(node, rule.AliasField); aliasNode != nil {
			local = cst.Text(aliasNode, w.source)
		}
	}

	// The extractor never resolves an import's target package; it only
	// records the raw local-name -> raw-path binding the Resolver needs to
	// classify qualified calls (spec.md §4.G.3), per SPEC_FULL.md §4.F's
	// scope (no CALLS/IMPORTS edges in this pass).
	w.table.RegisterImport(moduleFQN, local, path, false)
}

// importPathNode reconstructs an import statement's dotted module path when
// the language's grammar exposes no named field for it (Java's
// import_declaration: "import" ["static"] scoped_identifier ["." "*"] ";",
// all positional). The qualified name is the first scoped_identifier or
// identifier child, mirroring typeNamesIn's node-kind dispatch used for the
// same "no named field" case in recordBases.
func importPathNode(node *sitter.Node) *sitter.Node {
	count := int(node.NamedChildCount())
	for i := 0; i < count; i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "scoped_identifier", "identifier":
			return child
		}
	}
	return nil
}

// recordNamedImports handles the specifier shape of ImportRule: one binding
// per explicitly named symbol, as used by Python's `from X import A, B as C`
// and TypeScript's `import {A, B as C} from 'X'` / `export {A as C} from 'X'`
// (SPEC_FULL.md §8 seed scenarios (a) and (e)). Each specifier becomes an
// ImportBinding with Target=path (the module it came from) and Symbol=name;
// the Resolver resolves path to a module/package FQN first, then looks name
// up within it, rather than treating the raw path as an already-complete
// FQN the way a plain module import does. Returns the number of specifier
// nodes it bound, so the caller can fall back to a whole-statement binding
// when zero specifiers matched (a default or side-effect-only import).
func (w *walkState) recordNamedImports(node, pathNode *sitter.Node, rule langregistry.ImportRule, path, moduleFQN string) int {
	count := 0
	for _, spec := range cst.DescendantsOfType(node, rule.SpecifierKinds...) {
		if spec.StartByte() == pathNode.StartByte() && spec.EndByte() == pathNode.EndByte() {
			// The module-path field itself may share a node kind with a
			// specifier (Python's dotted_name), never treat it as one.
			continue
		}
		if rule.WildcardKind != "" && spec.Type() == rule.WildcardKind {
			w.table.RegisterImport(moduleFQN, "*", path, false)
			count++
			continue
		}

		name := cst.Text(spec, w.source)
		if rule.SpecifierNameField != "" {
			if n := cst.Field(spec, rule.SpecifierNameField); n != nil {
				name = cst.Text(n, w.source)
			}
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		local := name
		if rule.SpecifierAliasField != "" {
			if a := cst.Field(spec, rule.SpecifierAliasField); a != nil {
				local = cst.Text(a, w.source)
			}
		}

		w.table.RegisterImportSymbol(moduleFQN, local, path, name)
		count++
	}
	return count
}

// qualify joins a package FQN and a simple name, falling back to the bare
// name when pkgFQN is empty (root-package files).
func qualify(pkgFQN, name string) string {
	if pkgFQN == "" {
		return name
	}
	return pkgFQN + "." + name
}
