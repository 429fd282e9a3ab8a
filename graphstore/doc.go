// Package graphstore holds the per-graph adjacency used to reconstruct
// shingles: for each (graph id, source node key), an ordered list of
// outgoing (dst_id, dst_type, edge_type) triples, in arrival order (spec
// §3, §4.2).
//
// Per design note §9, source keys are not nested in a map-of-maps; instead
// (node_id, node_type) is composed into a single 64-bit bucket hash with
// github.com/cespare/xxhash/v2, avoiding the pointer-graph structure a
// naive map[string]map[string][]Edge would produce.
package graphstore
