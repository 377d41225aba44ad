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

package graph

import (
	"context"
	"testing"
)

func TestSinkBuffer_EnsureNode_Idempotent(t *testing.T) {
	sink := NewMemorySink()
	buf := NewSinkBuffer(sink, 0)
	ctx := context.Background()

	if err := buf.EnsureNode(ctx, LabelFunction, "proj.pkg.mod.foo", Props{"start_line": 1}); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if err := buf.EnsureNode(ctx, LabelFunction, "proj.pkg.mod.foo", Props{"end_line": 3}); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if err := buf.EnsureNode(ctx, LabelFunction, "proj.pkg.mod.foo", Props{"end_line": 3}); err != nil {
		t.Fatalf("third ensure: %v", err)
	}

	if got := buf.NodeCount(); got != 1 {
		t.Errorf("expected 1 distinct node, got %d", got)
	}
	nodes := sink.Nodes()
	if len(nodes) != 1 {
		t.Fatalf("expected sink to record 1 node, got %d", len(nodes))
	}
	if nodes[0].Props["start_line"] != 1 || nodes[0].Props["end_line"] != 3 {
		t.Errorf("expected merged props, got %+v", nodes[0].Props)
	}
}

func TestSinkBuffer_EnsureRelationship_Idempotent(t *testing.T) {
	sink := NewMemorySink()
	buf := NewSinkBuffer(sink, 0)
	ctx := context.Background()

	src := NodeRef{Label: LabelFunction, Key: "proj.pkg.mod.process"}
	dst := NodeRef{Label: LabelFunction, Key: "proj.utils.helpers.short"}

	for i := 0; i < 5; i++ {
		if err := buf.EnsureRelationship(ctx, src, RelCalls, dst, nil); err != nil {
			t.Fatalf("ensure relationship #%d: %v", i, err)
		}
	}

	if got := buf.RelationshipCount(); got != 1 {
		t.Errorf("expected 1 distinct relationship, got %d", got)
	}
	if got := len(sink.Relationships()); got != 1 {
		t.Errorf("expected sink to record 1 relationship, got %d", got)
	}
}

func TestSinkBuffer_DistinctKeysNotDeduped(t *testing.T) {
	sink := NewMemorySink()
	buf := NewSinkBuffer(sink, 0)
	ctx := context.Background()

	if err := buf.EnsureNode(ctx, LabelFunction, "a", nil); err != nil {
		t.Fatal(err)
	}
	if err := buf.EnsureNode(ctx, LabelFunction, "b", nil); err != nil {
		t.Fatal(err)
	}
	if got := buf.NodeCount(); got != 2 {
		t.Errorf("expected 2 distinct nodes, got %d", got)
	}
}

func TestSinkBuffer_AutoFlushAtTargetBatchSize(t *testing.T) {
	sink := NewMemorySink()
	buf := NewSinkBuffer(sink, 2)
	ctx := context.Background()

	_ = buf.EnsureNode(ctx, LabelFunction, "a", nil)
	if sink.FlushCount() != 0 {
		t.Fatalf("expected no flush yet, got %d", sink.FlushCount())
	}
	_ = buf.EnsureNode(ctx, LabelFunction, "b", nil)
	if sink.FlushCount() != 1 {
		t.Errorf("expected exactly 1 auto-flush at threshold, got %d", sink.FlushCount())
	}
}

func TestSinkBuffer_FlushDoesNotClearDedup(t *testing.T) {
	sink := NewMemorySink()
	buf := NewSinkBuffer(sink, 0)
	ctx := context.Background()

	_ = buf.EnsureNode(ctx, LabelFunction, "a", nil)
	_ = buf.Flush(ctx)
	_ = buf.EnsureNode(ctx, LabelFunction, "a", nil)

	if got := len(sink.Nodes()); got != 1 {
		t.Errorf("expected idempotence to hold across a flush boundary, got %d nodes", got)
	}
}
