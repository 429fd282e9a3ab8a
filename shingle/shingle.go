package shingle

import (
	"streamspot/graphstore"
)

// Text builds the K=1 shingle for a source node of type srcType whose
// current outgoing adjacency (in arrival order) is adj: one sentinel
// space, the source type token, then edge_type+dst_type for each outgoing
// edge (spec §4.3). Length is always 2*(len(adj)+1).
func Text(srcType string, adj []graphstore.DestTriple) []byte {
	out := make([]byte, 0, 2*(len(adj)+1))
	out = append(out, ' ')
	out = append(out, srcType...)
	for _, d := range adj {
		out = append(out, d.EdgeType...)
		out = append(out, d.DstType...)
	}
	return out
}

// GetChunks splits text into consecutive chunkLen-length substrings; the
// last chunk may be shorter (length in [1, chunkLen]). Returned slices
// alias text's backing array; callers must not mutate text afterward if
// they retain chunks.
func GetChunks(text []byte, chunkLen int) [][]byte {
	if len(text) == 0 {
		return nil
	}
	n := (len(text) + chunkLen - 1) / chunkLen
	chunks := make([][]byte, 0, n)
	for i := 0; i < len(text); i += chunkLen {
		end := i + chunkLen
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[i:end])
	}
	return chunks
}

// ConstructTempShingleVector cold-constructs the chunk multiset for every
// source node of graphID currently in store, counting chunk occurrences across the
// whole graph. Used only for bootstrap (spec §4.3); not on the per-edge
// hot path.
func ConstructTempShingleVector(store *graphstore.Store, graphID string, chunkLen int) map[string]int {
	counts := make(map[string]int)
	for _, key := range store.SourceKeys(graphID) {
		adj := store.Adjacency(graphID, key)
		text := Text(key.NodeType, adj)
		for _, chunk := range GetChunks(text, chunkLen) {
			counts[string(chunk)]++
		}
	}
	return counts
}
