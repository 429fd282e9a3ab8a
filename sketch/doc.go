// Package sketch implements the StreamHash per-graph/per-cluster sketch:
// an integer projection vector of width L and the {0,1}^L sign sketch
// derived from it (bit i set iff projection[i] >= 0), plus the similarity
// estimator used to compare two sketches.
//
// The sketch is stored as a word-aligned bitset (a flat []uint64), never as
// a string of '0'/'1' characters — design note §9 calls out the batch
// path's string round-tripping as an anti-pattern to avoid here.
package sketch
