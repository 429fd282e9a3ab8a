package cluster

import "streamspot/sketch"

// Sentinel cluster-map values (spec §6): real cluster ids are >= 0.
const (
	Anomaly = -1
	Unseen  = -2
)

// Cluster holds one reference cluster's mutable state: member count,
// centroid projection (real-valued, it's a mean), the centroid's sign
// sketch, and its learned threshold.
//
// active is false exactly when Size == 0: per spec §4.6's edge case, a
// cluster that loses its last member has an undefined centroid and must
// be excluded from argmin until it regains a member.
type Cluster struct {
	Size           int
	CentroidProj   []float64
	CentroidSketch sketch.Bits
	Threshold      float64
	active         bool
}

// NewCluster builds a cluster of width l, threshold thr, bootstrapped from
// the projections of its initial training members (spec §6's bootstrap
// clusters file, via the supplemented bootstrap loader). The centroid is
// the arithmetic mean of members; members may be empty only if the
// cluster is meant to start inactive (not expected in a well-formed
// bootstrap, but handled without dividing by zero).
func NewCluster(l int, thr float64, members [][]int64) Cluster {
	c := Cluster{Threshold: thr, CentroidProj: make([]float64, l), CentroidSketch: sketch.NewBits(l)}
	if len(members) == 0 {
		return c
	}
	for _, m := range members {
		for i, v := range m {
			c.CentroidProj[i] += float64(v)
		}
	}
	n := float64(len(members))
	for i := range c.CentroidProj {
		c.CentroidProj[i] /= n
	}
	c.Size = len(members)
	c.active = true
	refreshSketch(&c)
	return c
}

func refreshSketch(c *Cluster) {
	for i, v := range c.CentroidProj {
		c.CentroidSketch.Set(i, v >= 0)
	}
}
