// Package shingle builds the K=1 neighborhood-shingle text for a source
// node from its current outgoing adjacency, and splits shingle text into
// fixed-length chunks (spec §4.3).
//
// A K>1 generalization exists in the original C++ source (a BFS-based
// shingle constructor) but its incremental update is unspecified; this
// package, like the rest of the streaming core, commits to K=1 only
// (design note §9).
package shingle
