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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// jsonlRecord is one line of a JSONL sink file. Kind discriminates node vs.
// relationship records so a single file can hold both in emission order.
type jsonlRecord struct {
	Kind  string  `json:"kind"`
	Label Label   `json:"label,omitempty"`
	Key   string  `json:"key,omitempty"`
	Props Props   `json:"props,omitempty"`
	Src   *NodeRef `json:"src,omitempty"`
	Type  RelType `json:"type,omitempty"`
	Dst   *NodeRef `json:"dst,omitempty"`
}

// JSONLSink appends newline-delimited JSON records to a writer, one per
// ensure_node/ensure_relationship call, using its own streaming encoder
// rather than building the whole document in memory before writing.
type JSONLSink struct {
	mu  sync.Mutex
	enc *json.Encoder
	w   io.Writer
	c   io.Closer
}

// NewJSONLSink wraps an existing writer. The caller owns closing w.
func NewJSONLSink(w io.Writer) *JSONLSink {
	return &JSONLSink{enc: json.NewEncoder(w), w: w}
}

// OpenJSONLSink creates (or truncates) the file at path and returns a sink
// that owns it; Close must be called when the pipeline run finishes.
func OpenJSONLSink(path string) (*JSONLSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open jsonl sink: %w", err)
	}
	s := NewJSONLSink(f)
	s.c = f
	return s, nil
}

func (s *JSONLSink) EnsureNode(_ context.Context, label Label, key string, props Props) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(jsonlRecord{Kind: "node", Label: label, Key: key, Props: props})
}

func (s *JSONLSink) EnsureRelationship(_ context.Context, src NodeRef, relType RelType, dst NodeRef, props Props) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(jsonlRecord{Kind: "relationship", Src: &src, Type: relType, Dst: &dst, Props: props})
}

func (s *JSONLSink) Flush(_ context.Context) error {
	if f, ok := s.w.(*os.File); ok {
		return f.Sync()
	}
	return nil
}

// Close releases the underlying file, if this sink opened one.
func (s *JSONLSink) Close() error {
	if s.c != nil {
		return s.c.Close()
	}
	return nil
}
