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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistry_CountersStartAtZeroAndAccumulate(t *testing.T) {
	r := NewRegistry()

	r.FilesWalked.Add(3)
	r.DefinitionErrors.Add(1)

	if got := testutil.ToFloat64(r.FilesWalked); got != 3 {
		t.Errorf("FilesWalked = %v, want 3", got)
	}
	if got := testutil.ToFloat64(r.DefinitionErrors); got != 1 {
		t.Errorf("DefinitionErrors = %v, want 1", got)
	}
}

func TestNewRegistry_DoesNotPanicOnRepeatedConstruction(t *testing.T) {
	// The teacher's metricsIngestion uses a sync.Once against the global
	// registerer, which panics on a second registration in one process.
	// Registry's per-instance registry must tolerate being constructed
	// repeatedly (once per Driver run, or once per test).
	for i := 0; i < 3; i++ {
		r := NewRegistry()
		if r.Gatherer() == nil {
			t.Fatal("Gatherer() returned nil")
		}
	}
}
