// Package edgecache implements the optional bounded edge cache (spec
// §4.7): a FIFO of the W most recently accepted edges. Enqueuing past
// capacity evicts the oldest edge and reverse-applies it through
// graphstore, stream, sketch, and cluster, so that resource usage stays
// bounded without losing the reference cluster set's view of steady
// recent behavior.
//
// The cache only ever evicts in FIFO order, which is what makes reverse
// apply well-defined: forward and reverse updates on one edge compose to
// the identity on (proj, sketch) as long as no intervening edge for the
// same source changed the adjacency between them (spec §4.7's ordering
// invariant).
package edgecache
