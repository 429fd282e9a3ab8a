package cluster

import (
	"testing"

	"github.com/stretchr/testify/require"

	"streamspot/sketch"
)

// bits builds a sketch.Bits of width l with the given bit positions set.
func bits(l int, set ...int) sketch.Bits {
	b := sketch.NewBits(l)
	for _, i := range set {
		b.Set(i, true)
	}
	return b
}

func TestUpdateUnseenGraphJoinsNearestCluster(t *testing.T) {
	near := bits(4, 0, 1, 2, 3)
	far := bits(4)
	tr := NewTracker([]Cluster{
		{Size: 1, CentroidProj: []float64{1, 1, 1, 1}, CentroidSketch: near, Threshold: 1.0, active: true},
		{Size: 1, CentroidProj: []float64{-1, -1, -1, -1}, CentroidSketch: far, Threshold: 1.0, active: true},
	}, 1.0)

	proj := []int64{2, 2, 2, 2}
	delta := []int64{2, 2, 2, 2}
	graphSketch := bits(4, 0, 1, 2, 3)

	err := tr.Update("g1", proj, graphSketch, delta)
	require.NoError(t, err)
	require.Equal(t, 0, tr.ClusterOf("g1"))
	require.Equal(t, 2, tr.clusters[0].Size)
}

func TestUpdateMigratesWhenCloserClusterEmerges(t *testing.T) {
	clusterA := bits(4, 0, 1, 2, 3)
	clusterB := bits(4)
	tr := NewTracker([]Cluster{
		{Size: 1, CentroidProj: []float64{1, 1, 1, 1}, CentroidSketch: clusterA, Threshold: 2.0, active: true},
		{Size: 1, CentroidProj: []float64{-1, -1, -1, -1}, CentroidSketch: clusterB, Threshold: 2.0, active: true},
	}, 2.0)

	// First update: join cluster A (matches its sketch exactly).
	require.NoError(t, tr.Update("g1", []int64{3, 3, 3, 3}, bits(4, 0, 1, 2, 3), []int64{3, 3, 3, 3}))
	require.Equal(t, 0, tr.ClusterOf("g1"))
	require.Equal(t, 2, tr.clusters[0].Size)

	// Second update: g1's own sketch has now flipped fully negative,
	// matching cluster B; it should migrate, and A should shrink back.
	require.NoError(t, tr.Update("g1", []int64{-4, -4, -4, -4}, bits(4), []int64{-7, -7, -7, -7}))
	require.Equal(t, 1, tr.ClusterOf("g1"))
	require.Equal(t, 1, tr.clusters[0].Size)
	require.Equal(t, 2, tr.clusters[1].Size)
}

func TestUpdateMarksAnomalyBeyondThreshold(t *testing.T) {
	clusterA := bits(4, 0, 1, 2, 3)
	tr := NewTracker([]Cluster{
		{Size: 1, CentroidProj: []float64{1, 1, 1, 1}, CentroidSketch: clusterA, Threshold: 0.01, active: true},
	}, 0.01)

	// A graph sketch with nothing in common with the only cluster: far
	// beyond even a permissive threshold.
	graphSketch := bits(4)
	err := tr.Update("g1", []int64{-1, -1, -1, -1}, graphSketch, []int64{-1, -1, -1, -1})
	require.NoError(t, err)
	require.Equal(t, Anomaly, tr.ClusterOf("g1"))
	require.Equal(t, 1, tr.clusters[0].Size) // untouched: g1 was never a member
}

func TestFirstClassificationAnomalyDoesNotMutateClusters(t *testing.T) {
	clusterA := bits(4, 0, 1, 2, 3)
	tr := NewTracker([]Cluster{
		{Size: 2, CentroidProj: []float64{1, 1, 1, 1}, CentroidSketch: clusterA, Threshold: 0.01, active: true},
	}, 0.01)

	require.NoError(t, tr.Update("g1", []int64{-1, -1, -1, -1}, bits(4), []int64{-1, -1, -1, -1}))
	require.Equal(t, Anomaly, tr.ClusterOf("g1"))
	require.Equal(t, 2, tr.clusters[0].Size)
	require.Equal(t, []float64{1, 1, 1, 1}, tr.clusters[0].CentroidProj)
}

func TestClassifyUnseenOnFirstEdgeFalseJoinsNearestClusterInstead(t *testing.T) {
	clusterA := bits(4, 0, 1, 2, 3)
	tr := NewTracker([]Cluster{
		{Size: 2, CentroidProj: []float64{1, 1, 1, 1}, CentroidSketch: clusterA, Threshold: 0.01, active: true},
	}, 0.01, WithClassifyUnseenOnFirstEdge(false))

	// Same distance-beyond-threshold case as
	// TestFirstClassificationAnomalyDoesNotMutateClusters, but with the
	// policy knob off: g1's first-ever edge must join the nearest cluster
	// instead of landing on Anomaly.
	require.NoError(t, tr.Update("g1", []int64{-1, -1, -1, -1}, bits(4), []int64{-1, -1, -1, -1}))
	require.Equal(t, 0, tr.ClusterOf("g1"))
	require.Equal(t, 3, tr.clusters[0].Size)
}

func TestRemoveMemberGuardsZeroDivisionOnLastMember(t *testing.T) {
	clusterA := bits(4, 0, 1, 2, 3)
	clusterB := bits(4)
	tr := NewTracker([]Cluster{
		{Size: 1, CentroidProj: []float64{1, 1, 1, 1}, CentroidSketch: clusterA, Threshold: 2.0, active: true},
		{Size: 1, CentroidProj: []float64{-1, -1, -1, -1}, CentroidSketch: clusterB, Threshold: 2.0, active: true},
	}, 2.0)

	// A is its only member's last anchor: removing it must not divide by
	// zero, and must mark the centroid undefined instead.
	tr.removeMember(0, []int64{3, 3, 3, 3})

	require.False(t, tr.clusters[0].active)
	require.Equal(t, 0, tr.clusters[0].Size)
	require.Equal(t, []float64{0, 0, 0, 0}, tr.clusters[0].CentroidProj)

	// Cluster A must be excluded from argmin until it regains a member:
	// a graph identical to A's old centroid sketch should still land in
	// B, the only remaining active cluster, rather than panicking.
	idx, _, ok := tr.nearest(bits(4, 0, 1, 2, 3))
	require.True(t, ok)
	require.Equal(t, 1, idx)

	// Once A regains a member it becomes eligible again.
	tr.addMember(0, []int64{5, 5, 5, 5})
	require.True(t, tr.clusters[0].active)
	require.Equal(t, 1, tr.clusters[0].Size)
	require.Equal(t, []float64{5, 5, 5, 5}, tr.clusters[0].CentroidProj)
}

func TestNearestTieBreaksOnLowestIndex(t *testing.T) {
	same := bits(4, 0, 1, 2, 3)
	tr := NewTracker([]Cluster{
		{Size: 1, CentroidProj: []float64{1, 1, 1, 1}, CentroidSketch: same, Threshold: 2.0, active: true},
		{Size: 1, CentroidProj: []float64{1, 1, 1, 1}, CentroidSketch: same, Threshold: 2.0, active: true},
	}, 2.0)

	idx, _, ok := tr.nearest(bits(4, 0, 1, 2, 3))
	require.True(t, ok)
	require.Equal(t, 0, idx)
}

func TestClusterSizeConservationAcrossUpdates(t *testing.T) {
	clusterA := bits(4, 0, 1, 2, 3)
	clusterB := bits(4)
	tr := NewTracker([]Cluster{
		{Size: 0, CentroidProj: []float64{0, 0, 0, 0}, CentroidSketch: clusterA, Threshold: 2.0, active: true},
		{Size: 0, CentroidProj: []float64{0, 0, 0, 0}, CentroidSketch: clusterB, Threshold: 2.0, active: true},
	}, 2.0)

	gids := []string{"g1", "g2", "g3"}
	sketches := []sketch.Bits{bits(4, 0, 1, 2, 3), bits(4), bits(4, 0, 1, 2, 3)}
	projs := [][]int64{{3, 3, 3, 3}, {-4, -4, -4, -4}, {2, 2, 2, 2}}

	for i, gid := range gids {
		require.NoError(t, tr.Update(gid, projs[i], sketches[i], projs[i]))
	}

	total := 0
	for _, c := range tr.clusters {
		total += c.Size
	}

	real := 0
	for _, gid := range gids {
		if tr.ClusterOf(gid) >= 0 {
			real++
		}
	}
	require.Equal(t, real, total)
}

func TestSnapshotReportsSizeAndMeanScore(t *testing.T) {
	clusterA := bits(4, 0, 1, 2, 3)
	tr := NewTracker([]Cluster{
		{Size: 0, CentroidProj: []float64{0, 0, 0, 0}, CentroidSketch: clusterA, Threshold: 2.0, active: true},
	}, 2.0)

	require.NoError(t, tr.Update("g1", []int64{3, 3, 3, 3}, bits(4, 0, 1, 2, 3), []int64{3, 3, 3, 3}))
	require.NoError(t, tr.Update("g2", []int64{1, 1, 1, 1}, bits(4, 0, 1, 2, 3), []int64{1, 1, 1, 1}))

	snaps := tr.Snapshot()
	require.Len(t, snaps, 1)
	require.Equal(t, 2, snaps[0].Size)
	require.InDelta(t, (tr.ScoreOf("g1")+tr.ScoreOf("g2"))/2, snaps[0].MeanScore, 1e-9)
}
