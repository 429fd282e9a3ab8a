package cluster

import (
	"math"

	"streamspot/sketch"
	"streamspot/streamerr"
)

// Tracker holds the fixed cluster set and the graph-id-keyed
// graph->cluster membership and anomaly-score maps (spec §4.6, §6).
type Tracker struct {
	clusters        []Cluster
	globalThreshold float64
	membership      map[string]int
	score           map[string]float64

	classifyUnseenOnFirstEdge bool
}

// TrackerOption configures optional Tracker behavior beyond its required
// cluster set and global threshold.
type TrackerOption func(*Tracker)

// WithClassifyUnseenOnFirstEdge controls whether a graph's first-ever
// classification is allowed to land on Anomaly. Spec §4.6/§9 notes that
// the reference implementation always classifies against all clusters on
// a graph's first edge and may write ANOMALY, but flags this as a
// deployment policy knob; set false to instead fold a graph's first edge
// into its nearest cluster regardless of distance. Default true (the
// inherited behavior).
func WithClassifyUnseenOnFirstEdge(v bool) TrackerOption {
	return func(t *Tracker) {
		t.classifyUnseenOnFirstEdge = v
	}
}

// NewTracker builds a tracker over a fixed, already-seeded cluster set
// (typically produced by the bootstrap loader via NewCluster). Clusters
// are addressed by their index in clusters for the lifetime of the
// tracker.
func NewTracker(clusters []Cluster, globalThreshold float64, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		clusters:                  clusters,
		globalThreshold:           globalThreshold,
		membership:                make(map[string]int),
		score:                     make(map[string]float64),
		classifyUnseenOnFirstEdge: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ClusterOf returns gid's current cluster assignment: a real cluster
// index, Anomaly, or Unseen if gid has never been classified.
func (t *Tracker) ClusterOf(gid string) int {
	if c, ok := t.membership[gid]; ok {
		return c
	}
	return Unseen
}

// ScoreOf returns gid's most recently computed anomaly score, the
// distance to its assigned (or nearest, if anomalous) cluster.
func (t *Tracker) ScoreOf(gid string) float64 {
	return t.score[gid]
}

// Snapshot summarizes every cluster's current size and the mean anomaly
// score of its current members (the supplemented periodic report of
// SPEC_FULL.md, modelled on the original's per-cycle cluster summary).
type Snapshot struct {
	ClusterID int
	Size      int
	MeanScore float64
}

// Snapshot returns one Snapshot per cluster, indexed by cluster id.
func (t *Tracker) Snapshot() []Snapshot {
	sums := make([]float64, len(t.clusters))
	counts := make([]int, len(t.clusters))
	for gid, cid := range t.membership {
		if cid < 0 {
			continue
		}
		sums[cid] += t.score[gid]
		counts[cid]++
	}

	out := make([]Snapshot, len(t.clusters))
	for i, c := range t.clusters {
		mean := 0.0
		if counts[i] > 0 {
			mean = sums[i] / float64(counts[i])
		}
		out[i] = Snapshot{ClusterID: i, Size: c.Size, MeanScore: mean}
	}
	return out
}

// distance implements d(g, c) = 1 - cos(pi * (1 - sim(s, centroid))),
// re-mapping sign-sketch similarity through its cosine interpretation
// (spec §4.6).
func distance(graphSketch sketch.Bits, c Cluster) float64 {
	sim := sketch.Similarity(graphSketch, c.CentroidSketch)
	return 1 - math.Cos(math.Pi*(1-sim))
}

// nearest returns the index of the active cluster closest to
// graphSketch, tie-breaking on the lowest index, and its distance. ok
// is false if no cluster is currently active.
func (t *Tracker) nearest(graphSketch sketch.Bits) (idx int, dist float64, ok bool) {
	best := math.Inf(1)
	bestIdx := -1
	for i, c := range t.clusters {
		if !c.active {
			continue
		}
		d := distance(graphSketch, c)
		if d < best {
			best = d
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return 0, 0, false
	}
	return bestIdx, best, true
}

// removeMember subtracts preDeltaProj (gid's projection immediately
// before the edge that triggered this Update) from cluster cid's
// centroid, per spec §4.6's removal formula. If cid's membership drops
// to zero, the cluster is marked inactive rather than divided by zero
// (edge case: "exclude the cluster from future argmin until it gains a
// member").
func (t *Tracker) removeMember(cid int, preDeltaProj []int64) {
	c := &t.clusters[cid]
	m := c.Size
	if m <= 1 {
		c.Size = 0
		c.active = false
		for i := range c.CentroidProj {
			c.CentroidProj[i] = 0
		}
		refreshSketch(c)
		return
	}
	for i, v := range preDeltaProj {
		c.CentroidProj[i] = (c.CentroidProj[i]*float64(m) - float64(v)) / float64(m-1)
	}
	c.Size = m - 1
	refreshSketch(c)
}

// addMember adds proj (gid's current, post-delta projection) to cluster
// cid's centroid, per spec §4.6's addition formula. Adding to a cluster
// that is inactive (size 0, undefined centroid) simply sets the
// centroid to proj, the mean of a single member.
func (t *Tracker) addMember(cid int, proj []int64) {
	c := &t.clusters[cid]
	m := c.Size
	if !c.active {
		for i, v := range proj {
			c.CentroidProj[i] = float64(v)
		}
		c.Size = 1
		c.active = true
		refreshSketch(c)
		return
	}
	for i, v := range proj {
		c.CentroidProj[i] = (c.CentroidProj[i]*float64(m) + float64(v)) / float64(m+1)
	}
	c.Size = m + 1
	refreshSketch(c)
}

// stayUpdate folds delta into the current cluster's centroid
// incrementally (spec §4.6's "stay" case), rather than recomputing the
// mean from scratch.
func (t *Tracker) stayUpdate(cid int, delta []int64) {
	c := &t.clusters[cid]
	for i, d := range delta {
		c.CentroidProj[i] += float64(d) / float64(c.Size)
	}
	refreshSketch(c)
}

// Update classifies gid against the current cluster set and updates
// membership, centroids, and the anomaly score, implementing the
// outlier/migrate/stay decision of spec §4.6.
//
// proj is gid's current (post-delta) StreamHash projection and graphSketch
// its sign sketch; delta is the projection delta just applied by this
// edge. Centroid removal math needs gid's pre-delta projection, which is
// proj - delta.
func (t *Tracker) Update(gid string, proj []int64, graphSketch sketch.Bits, delta []int64) error {
	cStar, dStar, ok := t.nearest(graphSketch)
	if !ok {
		return streamerr.ErrInvariantViolated
	}

	threshold := t.globalThreshold
	if t.clusters[cStar].Threshold < threshold {
		threshold = t.clusters[cStar].Threshold
	}

	prev := t.ClusterOf(gid)
	firstEdge := prev == Unseen

	preDelta := make([]int64, len(proj))
	for i := range proj {
		preDelta[i] = proj[i] - delta[i]
	}

	switch {
	case dStar > threshold && (t.classifyUnseenOnFirstEdge || !firstEdge):
		// Outlier.
		if prev >= 0 {
			t.removeMember(prev, preDelta)
			if prev == cStar {
				// The cluster gid is leaving is the same one that was
				// nearest; its centroid just moved, so re-evaluate.
				_, dStar, _ = t.nearest(graphSketch)
			}
		}
		t.membership[gid] = Anomaly
		t.score[gid] = dStar

	case prev != cStar:
		// Migrate (covers Unseen/Anomaly -> real cluster too, since
		// neither is a real prior membership to remove from).
		if prev >= 0 {
			t.removeMember(prev, preDelta)
		}
		t.addMember(cStar, proj)
		t.membership[gid] = cStar
		t.score[gid] = distance(graphSketch, t.clusters[cStar])

	default:
		// Stay.
		t.stayUpdate(cStar, delta)
		t.membership[gid] = cStar
		t.score[gid] = distance(graphSketch, t.clusters[cStar])
	}

	return nil
}
