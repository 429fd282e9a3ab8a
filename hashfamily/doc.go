// Package hashfamily implements the StreamHash strongly-universal hash
// family: L rows of C+2 random 64-bit words, each row mapping a byte
// sequence of length <= C to {-1, +1}.
//
// The family is process-wide read-only state: it is built once at startup
// from a seeded PRNG and never mutated or regenerated mid-stream (design
// note §9).
package hashfamily
