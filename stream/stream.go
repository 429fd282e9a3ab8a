package stream

import (
	"streamspot/graphstore"
	"streamspot/hashfamily"
	"streamspot/shingle"
)

// Delta computes, for every row of fam, the sum of HashMulti over added
// chunks minus the sum over removed chunks (spec §4.5: "projection_delta
// passed to C4").
func Delta(fam *hashfamily.Family, added, removed [][]byte) []int64 {
	delta := make([]int64, fam.L())
	for row := range delta {
		var sum int64
		for _, c := range added {
			sum += int64(fam.HashMulti(c, row))
		}
		for _, c := range removed {
			sum -= int64(fam.HashMulti(c, row))
		}
		delta[row] = sum
	}
	return delta
}

// Process appends e to store and returns the L-wide projection delta that
// C4 (package sketch) should apply, per the case analysis of spec §4.5.
//
// Complexity: hashing is O(L) — at most three chunks of length <= C,
// independent of the source's current fanout; rebuilding the source's
// shingle text with shingle.Text is O(fanout).
func Process(store *graphstore.Store, fam *hashfamily.Family, e graphstore.Edge) []int64 {
	adj, n := store.Append(e)
	text := shingle.Text(e.SrcType, adj)
	chunkLen := fam.ChunkLen()

	added, removed := edgeChunkDelta(text, n, chunkLen)
	return Delta(fam, added, removed)
}

// edgeChunkDelta implements the §4.5 case analysis directly on the
// post-append shingle text. n is the post-append adjacency length; S is
// len(text) == 2*(n+1).
func edgeChunkDelta(text []byte, n, chunkLen int) (added, removed [][]byte) {
	s := len(text)

	if n == 1 {
		// First edge for this source: C >= 4 is enforced at startup, so
		// S == 4 <= C and the whole shingle is a single chunk.
		return [][]byte{text}, nil
	}

	lastLen := ((s - 1) % chunkLen) + 1

	switch {
	case lastLen == 2:
		// The two appended characters form a whole new chunk; nothing
		// else changed.
		return [][]byte{text[s-2 : s]}, nil

	case lastLen == 1:
		// The appended characters straddle a chunk boundary: the
		// previous last chunk (length C-1) is filled to length C by the
		// first appended character, and the second appended character
		// starts a fresh length-1 chunk.
		filled := text[s-1-chunkLen : s-1]
		newLast := text[s-1 : s]
		oldLast := text[s-1-chunkLen : s-2]
		return [][]byte{newLast, filled}, [][]byte{oldLast}

	default:
		// 3 <= lastLen <= chunkLen: the previous last chunk (length
		// lastLen-2) simply grew by the two appended characters.
		newLast := text[s-lastLen : s]
		oldLast := text[s-lastLen : s-2]
		return [][]byte{newLast}, [][]byte{oldLast}
	}
}

// ReverseEvict removes e from store (the mirror of Process, used by
// package edgecache on eviction) and returns the projection delta that
// undoes e's earlier contribution. Unlike Process, it does not assume e
// sits at the tail of its source's adjacency list: it diffs the full
// chunk multiset before and after removal, which is correct for removal
// at any position (spec §4.7's "recompute ... from the shingle-length
// decrement, mirror of §4.5").
//
// Returns a nil delta and the error from graphstore.Remove if e is not
// present in store (streamerr.ErrMissingEdge).
func ReverseEvict(store *graphstore.Store, fam *hashfamily.Family, e graphstore.Edge) ([]int64, error) {
	key := e.Source()
	oldAdj := store.Adjacency(e.GraphID, key)
	oldText := shingle.Text(e.SrcType, oldAdj)

	if err := store.Remove(e); err != nil {
		return nil, err
	}

	newAdj := store.Adjacency(e.GraphID, key)
	newText := shingle.Text(e.SrcType, newAdj)

	added, removed := multisetDiff(oldText, newText, fam.ChunkLen())
	return Delta(fam, added, removed), nil
}

// multisetDiff returns, as added/removed chunk slices (with repeats for
// multiplicity), the difference between GetChunks(newText) and
// GetChunks(oldText) as multisets over chunk content.
func multisetDiff(oldText, newText []byte, chunkLen int) (added, removed [][]byte) {
	oldCounts := make(map[string]int)
	for _, c := range shingle.GetChunks(oldText, chunkLen) {
		oldCounts[string(c)]++
	}
	newCounts := make(map[string]int)
	for _, c := range shingle.GetChunks(newText, chunkLen) {
		newCounts[string(c)]++
	}

	for chunk, nc := range newCounts {
		diff := nc - oldCounts[chunk]
		for i := 0; i < diff; i++ {
			added = append(added, []byte(chunk))
		}
	}
	for chunk, oc := range oldCounts {
		diff := oc - newCounts[chunk]
		for i := 0; i < diff; i++ {
			removed = append(removed, []byte(chunk))
		}
	}
	return added, removed
}
