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
	"fmt"
	"sync"
)

// nodeKey and relKey are the in-memory dedup keys. Batching mechanics here
// generalize pkg/ingestion/batcher.go's "bound script size, flush on
// threshold" discipline from one CozoDB Datalog script to an abstract Sink:
// instead of splitting a fixed string into size-bounded chunks, the buffer
// accumulates ensure_node/ensure_relationship calls and forwards a flush to
// the underlying Sink once a target batch size is reached or Flush is called
// explicitly.
type nodeKey struct {
	label Label
	key   string
}

type relKey struct {
	src     nodeKey
	relType RelType
	dst     nodeKey
}

// SinkBuffer is the write-through buffer described by the specification's
// Sink Buffer component: ensure_node/ensure_relationship are idempotent per
// key tuple, and flush forces any batched writes downstream. Deduplication
// uses an in-memory set keyed by the tuple; memory is bounded by the project
// size (one entry per distinct node/relationship ever emitted).
type SinkBuffer struct {
	sink Sink

	mu      sync.Mutex
	nodes   map[nodeKey]Props
	rels    map[relKey]struct{}
	pending int

	// targetBatchSize bounds how many pending operations accumulate before
	// an automatic flush, mirroring Batcher.targetMutations.
	targetBatchSize int
}

// NewSinkBuffer wraps sink with idempotent dedup and batched flushing.
// targetBatchSize <= 0 disables automatic flushing; callers must call Flush
// themselves (typically at phase boundaries, per the Driver's contract).
func NewSinkBuffer(sink Sink, targetBatchSize int) *SinkBuffer {
	return &SinkBuffer{
		sink:            sink,
		nodes:           make(map[nodeKey]Props),
		rels:            make(map[relKey]struct{}),
		targetBatchSize: targetBatchSize,
	}
}

// EnsureNode merges props into the buffer's own record for (label, key) and
// forwards every call to the underlying sink, which per the sink contract
// merges repeated calls for the same key into one node; props added by a
// later call (such as end_line) therefore reach the sink as well.
func (b *SinkBuffer) EnsureNode(ctx context.Context, label Label, key string, props Props) error {
	b.mu.Lock()
	nk := nodeKey{label: label, key: key}
	existing, seen := b.nodes[nk]
	if !seen {
		merged := make(Props, len(props))
		for k, v := range props {
			merged[k] = v
		}
		b.nodes[nk] = merged
	} else {
		for k, v := range props {
			existing[k] = v
		}
	}
	b.pending++
	shouldFlush := b.targetBatchSize > 0 && b.pending >= b.targetBatchSize
	b.mu.Unlock()

	if err := b.sink.EnsureNode(ctx, label, key, props); err != nil {
		return fmt.Errorf("ensure node %s/%s: %w", label, key, err)
	}
	if shouldFlush {
		return b.Flush(ctx)
	}
	return nil
}

// EnsureRelationship is idempotent per (src, relType, dst): a tuple already
// seen by this buffer is never forwarded to the sink a second time.
func (b *SinkBuffer) EnsureRelationship(ctx context.Context, src NodeRef, relType RelType, dst NodeRef, props Props) error {
	rk := relKey{
		src:     nodeKey{label: src.Label, key: src.Key},
		relType: relType,
		dst:     nodeKey{label: dst.Label, key: dst.Key},
	}

	b.mu.Lock()
	_, seen := b.rels[rk]
	if !seen {
		b.rels[rk] = struct{}{}
	}
	if !seen {
		b.pending++
	}
	shouldFlush := b.targetBatchSize > 0 && b.pending >= b.targetBatchSize
	b.mu.Unlock()

	if seen {
		return nil
	}
	if err := b.sink.EnsureRelationship(ctx, src, relType, dst, props); err != nil {
		return fmt.Errorf("ensure relationship %s-%s->%s: %w", src.Key, relType, dst.Key, err)
	}
	if shouldFlush {
		return b.Flush(ctx)
	}
	return nil
}

// Flush forces the underlying sink to flush and resets the pending counter.
// The dedup sets themselves are never cleared: relationship/node idempotence
// holds across flush boundaries, for the lifetime of the buffer, matching
// invariant 6 ("the same tuple emitted N times must result in a single
// edge").
func (b *SinkBuffer) Flush(ctx context.Context) error {
	b.mu.Lock()
	b.pending = 0
	b.mu.Unlock()
	return b.sink.Flush(ctx)
}

// NodeCount returns the number of distinct nodes ensured so far.
func (b *SinkBuffer) NodeCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.nodes)
}

// RelationshipCount returns the number of distinct relationships ensured so far.
func (b *SinkBuffer) RelationshipCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.rels)
}
