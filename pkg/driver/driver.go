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

// Package driver implements the Driver (SPEC_FULL.md §4.H): orchestrates
// walk -> define -> resolve against one project root, flushing the sink
// between the definition and resolution passes and freezing the Symbol
// Table in between, per spec.md §4.E/§5.
//
// Grounded on pkg/ingestion/local_pipeline.go's LocalPipeline.Run five-step
// orchestration and its parseFilesParallel/parseFilesSequential channel
// worker pool (the "<10 files or numWorkers<=1" sequential fallback is
// reused verbatim as the definition phase's parallelism threshold).
package driver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kraklabs/graphupdater/pkg/cst"
	"github.com/kraklabs/graphupdater/pkg/extractor"
	"github.com/kraklabs/graphupdater/pkg/graph"
	"github.com/kraklabs/graphupdater/pkg/metrics"
	"github.com/kraklabs/graphupdater/pkg/resolver"
	"github.com/kraklabs/graphupdater/pkg/symboltable"
	"github.com/kraklabs/graphupdater/pkg/walker"
)

// Config configures one Driver run, matching SPEC_FULL.md §6's external
// interface shape (languages, ignore globs, sink, concurrency).
type Config struct {
	ProjectName string
	IgnoreGlobs []string
	MaxFileSize int64
	// Languages restricts extraction to the named langregistry tags (the
	// config file's `languages` key). Nil or empty means every registered
	// language is enabled.
	Languages    []string
	ParseWorkers int // 0 means sequential, matching the teacher's numWorkers<=1 fallback
	Logger       *slog.Logger
	Metrics      *metrics.Registry
}

// Result summarizes one run, grounded on the teacher's IngestionResult
// (trimmed to the fields that still mean something without an embedding
// or CozoDB-write stage).
type Result struct {
	ProjectFQN      string
	FilesProcessed  int
	ParseErrors     int
	SkipReasons     map[string]int
	WalkDuration    time.Duration
	DefineDuration  time.Duration
	ResolveDuration time.Duration
	TotalDuration   time.Duration
}

// Run executes the full three-phase pipeline against root, writing nodes
// and edges to sink. table is the caller's Symbol Table (freshly created
// per run, per spec.md §9: "resolution state is process-scoped and must
// not outlive a single pipeline run").
func Run(ctx context.Context, root string, sink graph.Sink, table *symboltable.Table, cfg Config) (*Result, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewRegistry()
	}
	start := time.Now()
	buf := graph.NewSinkBuffer(sink, 500)
	adapter := cst.NewAdapter()

	var enabledLanguages map[string]bool
	if len(cfg.Languages) > 0 {
		enabledLanguages = make(map[string]bool, len(cfg.Languages))
		for _, tag := range cfg.Languages {
			enabledLanguages[tag] = true
		}
	}

	// Phase 1: walk.
	walkStart := time.Now()
	walkResult, err := walker.Walk(ctx, root, buf, table, walker.Options{
		ProjectName:      cfg.ProjectName,
		IgnoreGlobs:      cfg.IgnoreGlobs,
		MaxFileSize:      cfg.MaxFileSize,
		EnabledLanguages: enabledLanguages,
		Logger:           cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("driver: walk phase: %w", err)
	}
	walkDuration := time.Since(walkStart)
	cfg.Metrics.FilesWalked.Add(float64(len(walkResult.Files)))
	cfg.Metrics.ModulesDefined.Add(float64(len(walkResult.Files)))
	cfg.Metrics.WalkDuration.Observe(walkDuration.Seconds())

	result := &Result{
		ProjectFQN:   walkResult.ProjectFQN,
		SkipReasons:  walkResult.SkipReasons,
		WalkDuration: walkDuration,
	}

	// Phase 2: define. Per-file parse+extract is a pure function of
	// (bytes, language config, module FQN), so it parallelizes freely;
	// only the Symbol Table's own internal locking serializes writes.
	defineStart := time.Now()
	ex := extractor.New(adapter, cfg.Logger)
	parseErrors := defineAll(ctx, ex, walkResult.Files, buf, table, cfg)
	result.FilesProcessed = len(walkResult.Files) - parseErrors
	result.ParseErrors = parseErrors
	result.DefineDuration = time.Since(defineStart)
	cfg.Metrics.DefinitionErrors.Add(float64(parseErrors))
	cfg.Metrics.DefineDuration.Observe(result.DefineDuration.Seconds())

	if err := buf.Flush(ctx); err != nil {
		return nil, fmt.Errorf("driver: flush after define phase: %w", err)
	}

	// Resolution only ever reads the Symbol Table; freezing it here both
	// documents that contract and catches any accidental late write.
	table.Freeze()

	// Phase 3: resolve.
	resolveStart := time.Now()
	res := resolver.New(adapter, table, cfg.Logger)
	res.Metrics = cfg.Metrics
	modules := make([]resolver.ModuleInfo, 0, len(walkResult.Files))
	files := make([]resolver.File, 0, len(walkResult.Files))
	for _, f := range walkResult.Files {
		modules = append(modules, resolver.ModuleInfo{
			ModuleFQN:  f.ModuleFQN,
			PackageFQN: f.PackageFQN,
			Language:   f.Language,
		})
	}
	res.BuildIndex(modules)
	for _, f := range walkResult.Files {
		src, err := readFile(f.FullPath, cfg.MaxFileSize)
		if err != nil {
			cfg.Logger.Warn("driver.resolve.read_error", "path", f.FullPath, "err", err)
			continue
		}
		files = append(files, resolver.File{ModuleFQN: f.ModuleFQN, Language: f.Language, Source: src})
	}
	if err := res.ResolveAll(ctx, files, buf); err != nil {
		return nil, fmt.Errorf("driver: resolve phase: %w", err)
	}
	res.ResolveStructuralImplements(ctx, buf)
	result.ResolveDuration = time.Since(resolveStart)
	cfg.Metrics.ResolveDuration.Observe(result.ResolveDuration.Seconds())

	if err := buf.Flush(ctx); err != nil {
		return nil, fmt.Errorf("driver: flush after resolve phase: %w", err)
	}

	result.TotalDuration = time.Since(start)
	cfg.Metrics.RunDuration.Observe(result.TotalDuration.Seconds())
	return result, nil
}

// defineAll runs the Definition Extractor over every walked file, in
// parallel once the file count and configured worker count both clear the
// teacher's "<10 files or numWorkers<=1" sequential-fallback threshold.
// Returns the number of files that failed to parse.
func defineAll(ctx context.Context, ex *extractor.Extractor, files []walker.File, buf *graph.SinkBuffer, table *symboltable.Table, cfg Config) int {
	if len(files) < 10 || cfg.ParseWorkers <= 1 {
		return defineSequential(ctx, ex, files, buf, table, cfg)
	}
	return defineParallel(ctx, ex, files, buf, table, cfg)
}

func defineSequential(ctx context.Context, ex *extractor.Extractor, files []walker.File, buf *graph.SinkBuffer, table *symboltable.Table, cfg Config) int {
	errorCount := 0
	for _, f := range files {
		select {
		case <-ctx.Done():
			return errorCount
		default:
		}
		if err := defineOne(ctx, ex, f, buf, table, cfg); err != nil {
			errorCount++
		}
	}
	return errorCount
}

func defineParallel(ctx context.Context, ex *extractor.Extractor, files []walker.File, buf *graph.SinkBuffer, table *symboltable.Table, cfg Config) int {
	jobs := make(chan walker.File, len(files))
	var errorCount int64
	var wg sync.WaitGroup
	var mu sync.Mutex

	for w := 0; w < cfg.ParseWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				if err := defineOne(ctx, ex, f, buf, table, cfg); err != nil {
					mu.Lock()
					errorCount++
					mu.Unlock()
				}
			}
		}()
	}
	for _, f := range files {
		jobs <- f
	}
	close(jobs)
	wg.Wait()
	return int(errorCount)
}

func defineOne(ctx context.Context, ex *extractor.Extractor, f walker.File, buf *graph.SinkBuffer, table *symboltable.Table, cfg Config) error {
	src, err := readFile(f.FullPath, cfg.MaxFileSize)
	if err != nil {
		cfg.Logger.Warn("driver.define.read_error", "path", f.FullPath, "err", err)
		return err
	}
	if err := ex.ExtractFile(ctx, extractor.File{
		ModuleFQN:  f.ModuleFQN,
		PackageFQN: f.PackageFQN,
		Language:   f.Language,
		Source:     src,
	}, buf, table); err != nil {
		cfg.Logger.Warn("driver.define.extract_error", "path", f.FullPath, "err", err)
		return err
	}
	return nil
}
