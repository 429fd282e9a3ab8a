package graphstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"streamspot/streamerr"
)

func edge(src, srcType, dst, dstType, edgeType, gid string) Edge {
	return Edge{SrcID: src, SrcType: srcType, DstID: dst, DstType: dstType, EdgeType: edgeType, GraphID: gid}
}

func TestAppendCreatesKeyAndGrowsList(t *testing.T) {
	s := New()
	list, n := s.Append(edge("0", "A", "1", "B", "X", "7"))
	require.Equal(t, 1, n)
	require.Equal(t, []DestTriple{{DstID: "1", DstType: "B", EdgeType: "X"}}, list)

	list, n = s.Append(edge("0", "A", "2", "C", "Y", "7"))
	require.Equal(t, 2, n)
	require.Len(t, list, 2)
}

func TestRemoveFirstOccurrenceOnly(t *testing.T) {
	s := New()
	e := edge("0", "A", "1", "B", "X", "7")
	s.Append(e)
	s.Append(e) // duplicate triple

	require.NoError(t, s.Remove(e))
	list := s.Adjacency("7", SourceKey{NodeID: "0", NodeType: "A"})
	require.Len(t, list, 1, "only the first occurrence should be removed")
}

func TestRemoveEmptiesKeyAndGraph(t *testing.T) {
	s := New()
	e := edge("0", "A", "1", "B", "X", "7")
	s.Append(e)
	require.NoError(t, s.Remove(e))

	require.Nil(t, s.Adjacency("7", SourceKey{NodeID: "0", NodeType: "A"}))
	require.False(t, s.HasGraph("7"))
}

func TestRemoveMissingEdgeFails(t *testing.T) {
	s := New()
	err := s.Remove(edge("0", "A", "1", "B", "X", "7"))
	require.ErrorIs(t, err, streamerr.ErrMissingEdge)

	s.Append(edge("0", "A", "1", "B", "X", "7"))
	err = s.Remove(edge("0", "A", "9", "B", "X", "7"))
	require.ErrorIs(t, err, streamerr.ErrMissingEdge)
}

func TestAppendThenRemoveIsIdentity(t *testing.T) {
	s := New()
	e1 := edge("0", "A", "1", "B", "X", "7")
	e2 := edge("0", "A", "2", "C", "Y", "7")
	s.Append(e1)
	s.Append(e2)

	before := append([]DestTriple(nil), s.Adjacency("7", SourceKey{NodeID: "0", NodeType: "A"})...)

	s.Append(edge("0", "A", "3", "D", "Z", "7"))
	require.NoError(t, s.Remove(edge("0", "A", "3", "D", "Z", "7")))

	after := s.Adjacency("7", SourceKey{NodeID: "0", NodeType: "A"})
	require.Equal(t, before, after)
}

func TestDistinctSourceKeysAreIndependent(t *testing.T) {
	s := New()
	s.Append(edge("0", "A", "1", "B", "X", "7"))
	s.Append(edge("5", "A", "1", "B", "X", "7"))

	keys := s.SourceKeys("7")
	require.Len(t, keys, 2)
}

func TestGraphsAreIsolated(t *testing.T) {
	s := New()
	s.Append(edge("0", "A", "1", "B", "X", "7"))
	require.False(t, s.HasGraph("8"))
	require.Nil(t, s.Adjacency("8", SourceKey{NodeID: "0", NodeType: "A"}))
}
