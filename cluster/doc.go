// Package cluster implements the centroid and cluster membership tracker
// (spec §4.6): per-cluster projection sum/centroid sketch, and graph
// membership reassignment against per-cluster and global thresholds.
//
// Per design note §9 ("arena over ownership webs"), membership is a flat
// id-keyed map (graph ids are open-ended, so a dense array doesn't fit)
// plus a per-cluster member count, rather than a bipartite web of
// pointers between graphs and clusters.
package cluster
