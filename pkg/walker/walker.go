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

// Package walker implements the Project Walker (SPEC_FULL.md §4.D): it
// traverses the repository, applies ignore rules, classifies files by
// extension, and lazily emits Package and Module nodes with their CONTAINS
// edges. Grounded on pkg/ingestion/repo_loader.go's walkRepository and
// detectLanguageFromPath, generalized to drive the graph Sink Buffer and
// register Module FQNs in the Symbol Table directly, since spec.md §4.D
// frames the walker as a node-emitting pass, not merely a file lister.
package walker

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kraklabs/graphupdater/pkg/graph"
	"github.com/kraklabs/graphupdater/pkg/ids"
	"github.com/kraklabs/graphupdater/pkg/langregistry"
	"github.com/kraklabs/graphupdater/pkg/symboltable"
)

// File describes one source file discovered by the walk, to be handed to
// the Definition Extractor and Resolver.
type File struct {
	RelPath    string
	FullPath   string
	Size       int64
	Language   string
	ModuleFQN  string
	PackageFQN string
}

// Result is everything the Driver needs from the walk phase.
type Result struct {
	ProjectFQN string
	RootPath   string
	Files      []File
	SkipReasons map[string]int
}

// Options configures one walk.
type Options struct {
	// ProjectName becomes the Project node's key. Defaults to the root
	// directory's base name.
	ProjectName string
	// IgnoreGlobs are matched against the path relative to root; matches are
	// pruned (directories) or skipped (files). Appended to DefaultIgnoreGlobs.
	IgnoreGlobs []string
	// MaxFileSize skips files larger than this many bytes; 0 means no limit.
	MaxFileSize int64
	// EnabledLanguages restricts which registered languages are walked, by
	// langregistry.Language.Tag (SPEC_FULL.md §6's .graphupdater.yaml
	// `languages` key). A nil or empty set means every registered language
	// is enabled — the config file's Default() behavior.
	EnabledLanguages map[string]bool
	Logger           *slog.Logger
}

// Walk traverses root, emitting Project/Package/Module nodes and CONTAINS
// edges to sink, and registering each Module's FQN in table. Directory
// traversal is sequential per spec.md §5 ("Walk phase: directory traversal
// is sequential; file classification is per-directory and cheap").
func Walk(ctx context.Context, root string, sink *graph.SinkBuffer, table *symboltable.Table, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("walker: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("walker: root is not a directory: %s", absRoot)
	}

	projectName := opts.ProjectName
	if projectName == "" {
		projectName = filepath.Base(absRoot)
	}

	globs := append(append([]string{}, DefaultIgnoreGlobs...), opts.IgnoreGlobs...)

	if err := sink.EnsureNode(ctx, graph.LabelProject, projectName, graph.Props{graph.KeyName: projectName}); err != nil {
		return nil, fmt.Errorf("walker: ensure project node: %w", err)
	}

	result := &Result{
		ProjectFQN:  projectName,
		RootPath:    absRoot,
		SkipReasons: map[string]int{},
	}

	// emittedPackages tracks (dir relpath) -> package FQN already emitted,
	// so a directory shared by multiple languages is only emitted once per
	// spec.md §4.D's "most test cases treat a directory uniformly."
	emittedPackages := map[string]string{}

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if walkErr != nil {
			opts.Logger.Warn("walker.walk.error", "path", path, "err", walkErr)
			return nil
		}
		if path == absRoot {
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if matchesAny(relPath, globs) {
			result.SkipReasons["excluded"]++
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		lang, ok := langregistry.ForExtension(ext)
		if !ok {
			result.SkipReasons["unsupported_language"]++
			return nil
		}
		if len(opts.EnabledLanguages) > 0 && !opts.EnabledLanguages[lang.Tag] {
			result.SkipReasons["language_disabled"]++
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil
		}
		if opts.MaxFileSize > 0 && fi.Size() > opts.MaxFileSize {
			result.SkipReasons["too_large"]++
			opts.Logger.Warn("walker.walk.skip_large_file", "path", relPath, "size", fi.Size())
			return nil
		}

		dirRel := filepath.ToSlash(filepath.Dir(relPath))
		if dirRel == "." {
			dirRel = ""
		}

		pkgFQN := ensurePackageChain(ctx, sink, absRoot, projectName, dirRel, lang, emittedPackages)

		moduleFQN := moduleFQNFor(projectName, relPath)
		if err := table.Register(moduleFQN, graph.LabelModule, lang.Tag); err != nil {
			opts.Logger.Debug("walker.module.duplicate", "fqn", moduleFQN, "err", err)
		}

		props := graph.Props{
			graph.KeyName: moduleFQN,
			"path":        relPath,
			"language":    lang.Tag,
			"size":        fi.Size(),
		}
		if err := sink.EnsureNode(ctx, graph.LabelModule, moduleFQN, props); err != nil {
			return fmt.Errorf("walker: ensure module node %s: %w", moduleFQN, err)
		}

		parentRef := graph.NodeRef{Label: graph.LabelProject, Key: projectName}
		if pkgFQN != "" {
			parentRef = graph.NodeRef{Label: graph.LabelPackage, Key: pkgFQN}
		}
		if err := sink.EnsureRelationship(ctx, parentRef, graph.RelContains, graph.NodeRef{Label: graph.LabelModule, Key: moduleFQN}, nil); err != nil {
			return fmt.Errorf("walker: contains edge for %s: %w", moduleFQN, err)
		}

		result.Files = append(result.Files, File{
			RelPath:    relPath,
			FullPath:   path,
			Size:       fi.Size(),
			Language:   lang.Tag,
			ModuleFQN:  moduleFQN,
			PackageFQN: pkgFQN,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walker: walk repository: %w", err)
	}

	sort.Slice(result.Files, func(i, j int) bool { return result.Files[i].RelPath < result.Files[j].RelPath })
	return result, nil
}

// ensurePackageChain emits a Package node (and its CONTAINS ancestry, back to
// the Project root) for dirRel if lang's package rule considers dirRel a
// package, per spec.md §4.D ("Packages are discovered lazily: when a file of
// language L is found in directory D, if L's rule considers D a package,
// emit it"). Returns the package FQN, or "" if dirRel is not a package under
// this language's rule (the file's parent node is then the Project itself).
func ensurePackageChain(ctx context.Context, sink *graph.SinkBuffer, absRoot, projectName, dirRel string, lang langregistry.Language, emitted map[string]string) string {
	if dirRel == "" {
		return ""
	}

	switch lang.PackageRule {
	case langregistry.RootOnly:
		return ""
	case langregistry.MarkerFile:
		if _, err := os.Stat(filepath.Join(absRoot, dirRel, lang.MarkerFileName)); err != nil {
			return ""
		}
		fallthrough
	case langregistry.EveryDirectory:
		if fqn, ok := emitted[dirRel]; ok {
			return fqn
		}
		return emitPackagePath(ctx, sink, projectName, dirRel, emitted)
	}
	return ""
}

// emitPackagePath emits a Package node for every path segment of dirRel that
// hasn't been emitted yet, linking each to its parent with CONTAINS, so deep
// package hierarchies (SPEC_FULL.md §8 scenario (f)) get every intermediate
// Package node.
func emitPackagePath(ctx context.Context, sink *graph.SinkBuffer, projectName, dirRel string, emitted map[string]string) string {
	segments := strings.Split(dirRel, "/")
	parentRef := graph.NodeRef{Label: graph.LabelProject, Key: projectName}
	fqn := projectName

	for i, seg := range segments {
		fqn = fqn + "." + seg
		partial := strings.Join(segments[:i+1], "/")

		if existing, ok := emitted[partial]; ok {
			parentRef = graph.NodeRef{Label: graph.LabelPackage, Key: existing}
			fqn = existing
			continue
		}

		props := graph.Props{graph.KeyName: fqn, "path": partial}
		_ = sink.EnsureNode(ctx, graph.LabelPackage, fqn, props)
		_ = sink.EnsureRelationship(ctx, parentRef, graph.RelContains, graph.NodeRef{Label: graph.LabelPackage, Key: fqn}, nil)

		emitted[partial] = fqn
		parentRef = graph.NodeRef{Label: graph.LabelPackage, Key: fqn}
	}

	return fqn
}

// moduleFQNFor builds a Module's FQN: project + dot-joined package path +
// file stem, per spec.md §3's key rule for Module/File.
func moduleFQNFor(projectName, relPath string) string {
	segs := ids.ModulePathSegments(relPath)
	if len(segs) == 0 {
		return projectName
	}
	return projectName + "." + strings.Join(segs, ".")
}
