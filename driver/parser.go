package driver

import (
	"fmt"
	"strings"

	"streamspot/graphstore"
	"streamspot/streamerr"
)

// ParseEdgeLine parses one line of the edge input format (spec §6):
// src_id, src_type, dst_id, dst_type, edge_type, graph_id, tab-separated.
//
// src_type, dst_type, and edge_type must each be a single typed token (one
// code unit in the streaming variant, spec §3): stream.edgeChunkDelta's
// incremental case analysis assumes exactly two characters are appended to
// a graph's shingle text per edge (one edge_type byte, one dst_type byte),
// so a wider type token would silently corrupt that projection instead of
// failing loudly.
func ParseEdgeLine(line string) (graphstore.Edge, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 6 {
		return graphstore.Edge{}, fmt.Errorf("edge line has %d fields, want 6: %w", len(fields), streamerr.ErrBadInput)
	}
	for _, f := range fields {
		if f == "" {
			return graphstore.Edge{}, fmt.Errorf("edge line has an empty field: %w", streamerr.ErrBadInput)
		}
	}
	typeFields := [...]struct {
		idx  int
		name string
	}{{1, "src_type"}, {3, "dst_type"}, {4, "edge_type"}}
	for _, tf := range typeFields {
		if len(fields[tf.idx]) != 1 {
			return graphstore.Edge{}, fmt.Errorf("edge line %s %q is %d bytes, want a single code unit: %w", tf.name, fields[tf.idx], len(fields[tf.idx]), streamerr.ErrBadInput)
		}
	}
	return graphstore.Edge{
		SrcID:    fields[0],
		SrcType:  fields[1],
		DstID:    fields[2],
		DstType:  fields[3],
		EdgeType: fields[4],
		GraphID:  fields[5],
	}, nil
}
