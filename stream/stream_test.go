package stream

import (
	"testing"

	"github.com/stretchr/testify/require"

	"streamspot/graphstore"
	"streamspot/hashfamily"
	"streamspot/shingle"
	"streamspot/sketch"
)

func edge(src, srcType, dst, dstType, edgeType, gid string) graphstore.Edge {
	return graphstore.Edge{SrcID: src, SrcType: srcType, DstID: dst, DstType: dstType, EdgeType: edgeType, GraphID: gid}
}

// coldProjection reconstructs the projection vector by building the full
// adjacency first and summing count*HashMulti(chunk) per row (spec §8,
// "Equivalence of cold and incremental").
func coldProjection(store *graphstore.Store, fam *hashfamily.Family, graphID string) []int64 {
	counts := shingle.ConstructTempShingleVector(store, graphID, fam.ChunkLen())
	proj := make([]int64, fam.L())
	for chunk, count := range counts {
		for row := 0; row < fam.L(); row++ {
			proj[row] += int64(count) * int64(fam.HashMulti([]byte(chunk), row))
		}
	}
	return proj
}

func TestScenarioSingleEdge(t *testing.T) {
	fam, err := hashfamily.New(4, 4, 1)
	require.NoError(t, err)
	store := graphstore.New()

	delta := Process(store, fam, edge("0", "A", "1", "B", "X", "7"))

	want := make([]int64, fam.L())
	for row := range want {
		want[row] = int64(fam.HashMulti([]byte(" AXB"), row))
	}
	require.Equal(t, want, delta)
}

func TestScenarioTwoEdgesSameSource(t *testing.T) {
	fam, err := hashfamily.New(4, 4, 2)
	require.NoError(t, err)
	store := graphstore.New()

	d1 := Process(store, fam, edge("0", "A", "1", "B", "X", "7"))
	d2 := Process(store, fam, edge("0", "A", "2", "C", "Y", "7"))

	s := sketch.Initial(fam.L())
	s = sketch.ApplyDelta(s, d1)
	s = sketch.ApplyDelta(s, d2)

	require.Equal(t, coldProjection(store, fam, "7"), s.Proj)
}

func TestEquivalenceColdVsIncrementalManyEdges(t *testing.T) {
	fam, err := hashfamily.New(8, 4, 7)
	require.NoError(t, err)
	store := graphstore.New()

	edges := []graphstore.Edge{
		edge("0", "A", "1", "B", "X", "7"),
		edge("0", "A", "2", "C", "Y", "7"),
		edge("0", "A", "3", "D", "Z", "7"),
		edge("0", "A", "4", "B", "X", "7"),
		edge("5", "A", "1", "B", "X", "7"),
		edge("5", "A", "2", "C", "Q", "7"),
	}

	s := sketch.Initial(fam.L())
	for _, e := range edges {
		d := Process(store, fam, e)
		s = sketch.ApplyDelta(s, d)
	}

	require.Equal(t, coldProjection(store, fam, "7"), s.Proj)
	for i := 0; i < fam.L(); i++ {
		require.Equal(t, s.Proj[i] >= 0, s.Bits.Get(i))
	}
}

func TestProcessThenReverseEvictIsIdentity(t *testing.T) {
	fam, err := hashfamily.New(6, 4, 11)
	require.NoError(t, err)
	store := graphstore.New()

	e1 := edge("0", "A", "1", "B", "X", "7")
	s := sketch.Initial(fam.L())
	d1 := Process(store, fam, e1)
	s = sketch.ApplyDelta(s, d1)
	before := s.Clone()

	e2 := edge("0", "A", "2", "C", "Y", "7")
	d2 := Process(store, fam, e2)
	s = sketch.ApplyDelta(s, d2)

	rev, err := ReverseEvict(store, fam, e2)
	require.NoError(t, err)
	s = sketch.ApplyDelta(s, rev)

	require.Equal(t, before.Proj, s.Proj)
	for i := 0; i < fam.L(); i++ {
		require.Equal(t, before.Bits.Get(i), s.Bits.Get(i))
	}
}

func TestReverseEvictFromFrontOfAdjacency(t *testing.T) {
	// e1 arrives, then e2 (same source); evict e1 (the front, oldest
	// entry) while e2 remains. Resulting state must equal cold-building
	// the graph from {e2} alone.
	fam, err := hashfamily.New(6, 4, 5)
	require.NoError(t, err)
	store := graphstore.New()

	e1 := edge("0", "A", "1", "B", "X", "7")
	e2 := edge("0", "A", "2", "C", "Y", "7")

	s := sketch.Initial(fam.L())
	s = sketch.ApplyDelta(s, Process(store, fam, e1))
	s = sketch.ApplyDelta(s, Process(store, fam, e2))

	rev, err := ReverseEvict(store, fam, e1)
	require.NoError(t, err)
	s = sketch.ApplyDelta(s, rev)

	// Cold-build a reference graph containing only e2.
	ref := graphstore.New()
	ref.Append(e2)
	require.Equal(t, coldProjection(ref, fam, "7"), s.Proj)
}

func TestReverseEvictMissingEdge(t *testing.T) {
	fam, err := hashfamily.New(4, 4, 3)
	require.NoError(t, err)
	store := graphstore.New()

	_, err = ReverseEvict(store, fam, edge("0", "A", "1", "B", "X", "7"))
	require.Error(t, err)
}
