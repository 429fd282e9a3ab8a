package edgecache

import (
	"streamspot/cluster"
	"streamspot/graphstore"
	"streamspot/hashfamily"
	"streamspot/sketch"
	"streamspot/stream"
	"streamspot/streamerr"
)

// Graphs is the live per-graph sketch registry shared with the forward
// processing path (package driver): a map is reference-typed in Go, so
// driver and Cache mutate the same underlying state without a separate
// synchronization layer, matching the single-threaded cooperative core
// of spec §5.
type Graphs map[string]sketch.Sketch

// Cache holds the FIFO of accepted edges and the collaborators needed to
// reverse-apply an evicted one: the adjacency store, the hash family, the
// live per-graph sketches, and the cluster tracker.
type Cache struct {
	capacity int
	queue    []graphstore.Edge

	store   *graphstore.Store
	fam     *hashfamily.Family
	graphs  Graphs
	tracker *cluster.Tracker
}

// New returns a Cache bounded to capacity edges. capacity must be > 0.
func New(capacity int, store *graphstore.Store, fam *hashfamily.Family, graphs Graphs, tracker *cluster.Tracker) (*Cache, error) {
	if capacity <= 0 {
		return nil, streamerr.ErrParameterOutOfRange
	}
	return &Cache{
		capacity: capacity,
		store:    store,
		fam:      fam,
		graphs:   graphs,
		tracker:  tracker,
	}, nil
}

// Len reports the number of edges currently cached.
func (c *Cache) Len() int {
	return len(c.queue)
}

// Accept enqueues e, assumed already processed through the forward path
// (graphstore.Append, stream.Process, sketch.ApplyDelta, cluster.Update)
// by the caller. If enqueuing pushes the cache past capacity, the oldest
// edge is evicted and reverse-applied.
func (c *Cache) Accept(e graphstore.Edge) error {
	c.queue = append(c.queue, e)
	if len(c.queue) > c.capacity {
		return c.evictOldest()
	}
	return nil
}

// evictOldest removes the head of the FIFO and undoes its contribution
// to adjacency, projection, sketch bits, and cluster membership — the
// mirror of the forward path, using the negated projection delta (spec
// §4.7).
func (c *Cache) evictOldest() error {
	old := c.queue[0]
	c.queue = c.queue[1:]

	delta, err := stream.ReverseEvict(c.store, c.fam, old)
	if err != nil {
		return err
	}

	s := c.graphs[old.GraphID]
	s = sketch.ApplyDelta(s, delta)
	c.graphs[old.GraphID] = s

	return c.tracker.Update(old.GraphID, s.Proj, s.Bits, delta)
}
