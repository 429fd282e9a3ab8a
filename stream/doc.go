// Package stream implements the incremental edge processor (spec §4.5):
// given an arriving edge and the post-append adjacency of its source key,
// it derives the minimal set of shingle chunks gained and lost, and turns
// that into an L-wide projection delta via hashfamily.HashMulti.
//
// Appending one edge appends exactly two characters to the source's
// shingle text, so only the final chunk boundary can shift; Process
// exploits that to hash at most three chunks per edge, however long the
// shingle is. Rebuilding the shingle text itself still grows with the
// source's fanout.
//
// Cache eviction (spec §4.7) removes a possibly-non-tail edge from an
// adjacency list that has grown since the edge was appended, so it cannot
// reuse the tail-only arithmetic; ReverseEvict instead diffs the full
// before/after chunk multisets. That is not O(1), but §1's constant-time
// requirement binds the forward per-edge path, not the optional bounded
// cache's rollback.
package stream
