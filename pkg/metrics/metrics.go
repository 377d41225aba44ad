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

// Package metrics exposes Prometheus counters and histograms for the three
// pipeline phases (walk, define, resolve), grounded on
// pkg/ingestion/metrics.go's metricsIngestion: the same Counter/Histogram
// shape and naming convention, retargeted from CozoDB-write/embedding
// counters (this module has neither) to the phases SPEC_FULL.md §4.H
// actually names.
//
// Unlike the teacher's metricsIngestion (one package-level singleton
// guarded by sync.Once, registered against prometheus's global
// DefaultRegisterer), Registry here owns its own *prometheus.Registry.
// A Driver run constructs one via NewRegistry; a long-lived host process
// (the CLI, or a future server) wires a single Registry's Gatherer into
// its /metrics handler instead of relying on global registration, which
// would panic on a second NewRegistry call within the same process (e.g.
// from tests, or from multiple concurrent project runs).
package metrics

import "github.com/prometheus/client_golang/prometheus"

var buckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// Registry holds every metric one Driver run updates.
type Registry struct {
	reg *prometheus.Registry

	FilesWalked      prometheus.Counter
	ModulesDefined   prometheus.Counter
	DefinitionErrors prometheus.Counter
	CallsResolved    prometheus.Counter
	ImportsResolved  prometheus.Counter
	InheritsResolved prometheus.Counter

	WalkDuration    prometheus.Histogram
	DefineDuration  prometheus.Histogram
	ResolveDuration prometheus.Histogram
	RunDuration     prometheus.Histogram
}

// NewRegistry creates a fresh Registry backed by its own prometheus
// registry, so repeated calls (one per Driver run, or one per test) never
// collide over metric names the way a single global registerer would.
func NewRegistry() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}

	r.FilesWalked = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "graphupdater_files_walked_total", Help: "Source files discovered by the Project Walker.",
	})
	r.ModulesDefined = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "graphupdater_modules_defined_total", Help: "Module nodes registered in the Symbol Table.",
	})
	r.DefinitionErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "graphupdater_definition_errors_total", Help: "Files that failed to parse or extract during the definition phase.",
	})
	r.CallsResolved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "graphupdater_calls_resolved_total", Help: "CALLS edges emitted by the Resolver.",
	})
	r.ImportsResolved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "graphupdater_imports_resolved_total", Help: "IMPORTS edges emitted by the Resolver.",
	})
	r.InheritsResolved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "graphupdater_inherits_resolved_total", Help: "INHERITS/IMPLEMENTS edges emitted by the Resolver.",
	})

	r.WalkDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "graphupdater_walk_seconds", Help: "Duration of the walk phase.", Buckets: buckets,
	})
	r.DefineDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "graphupdater_define_seconds", Help: "Duration of the definition phase.", Buckets: buckets,
	})
	r.ResolveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "graphupdater_resolve_seconds", Help: "Duration of the resolution phase.", Buckets: buckets,
	})
	r.RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "graphupdater_run_seconds", Help: "Duration of one full Driver run.", Buckets: buckets,
	})

	r.reg.MustRegister(
		r.FilesWalked, r.ModulesDefined, r.DefinitionErrors,
		r.CallsResolved, r.ImportsResolved, r.InheritsResolved,
		r.WalkDuration, r.DefineDuration, r.ResolveDuration, r.RunDuration,
	)
	return r
}

// Gatherer exposes the underlying prometheus.Registry for an HTTP
// /metrics handler (promhttp.HandlerFor(reg.Gatherer(), ...)).
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
