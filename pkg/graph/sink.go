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

import "context"

// Sink is the external collaborator every pipeline run writes to. It is
// deliberately the exact contract described by the specification's external
// interfaces: implementers may back it with a graph database, a file, or
// nothing at all (tests). Sinks must treat repeated calls with the same key
// tuple as idempotent; the SinkBuffer in front of a Sink already deduplicates,
// but a Sink used directly (bypassing the buffer) must honor this too.
type Sink interface {
	// EnsureNode emits a node. label+key together form the unique identity;
	// props are merged into any prior emission for the same key.
	EnsureNode(ctx context.Context, label Label, key string, props Props) error

	// EnsureRelationship emits a relationship. Idempotent per (src, relType, dst).
	EnsureRelationship(ctx context.Context, src NodeRef, relType RelType, dst NodeRef, props Props) error

	// Flush forces any batched writes downstream. The sink must not reorder
	// emissions that occurred before a Flush call relative to one another.
	Flush(ctx context.Context) error
}
