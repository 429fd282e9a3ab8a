package graphstore

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"

	"streamspot/streamerr"
)

// Store is the per-graph adjacency store (spec §3, §4.2): for every
// (graph_id, source key), an ordered list of outgoing destination triples.
// A source key exists iff it has at least one outgoing edge; removing the
// last outgoing edge deletes the key (spec §3 invariant).
//
// Thread-safety mirrors the teacher's core.Graph: a single RWMutex guards
// every mutation. The concurrency model (spec §5) partitions the stream by
// graph id across shards in the safe-parallelization design, so in that
// deployment each shard owns its own Store and the lock is uncontended;
// Store itself makes no assumption about how many goroutines share it.
type Store struct {
	mu     sync.RWMutex
	graphs map[string]*graphAdjacency
}

// New returns an empty Store.
func New() *Store {
	return &Store{graphs: make(map[string]*graphAdjacency)}
}

func sourceHash(k SourceKey) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(k.NodeID)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(k.NodeType)
	return h.Sum64()
}

// Append pushes e's destination triple onto the ordered list for
// (e.GraphID, e.Source()), creating the graph and/or source key if absent.
// Returns the post-append adjacency list (shared slice header; callers
// must not mutate it) and its new length n.
//
// Complexity: O(1) amortized, plus O(b) to scan a hash bucket of b
// colliding source keys (b is 0 in practice).
func (s *Store) Append(e Edge) (list []DestTriple, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ga, ok := s.graphs[e.GraphID]
	if !ok {
		ga = newGraphAdjacency()
		s.graphs[e.GraphID] = ga
	}

	key := e.Source()
	h := sourceHash(key)
	bucket := ga.buckets[h]
	for i := range bucket {
		if bucket[i].key == key {
			bucket[i].list = append(bucket[i].list, e.Dest())
			ga.buckets[h] = bucket
			return bucket[i].list, len(bucket[i].list)
		}
	}

	bucket = append(bucket, bucketEntry{key: key, list: []DestTriple{e.Dest()}})
	ga.buckets[h] = bucket
	return bucket[len(bucket)-1].list, 1
}

// Remove locates e's destination triple in (e.GraphID, e.Source())'s list
// and erases the first matching occurrence (spec §4.2). If the list
// becomes empty, the source key is erased; if the source key was the last
// one for the graph, the graph entry is also erased.
//
// Remove returns streamerr.ErrMissingEdge if the triple is not present:
// per spec §4.2 this is a fatal invariant violation under normal
// operation, and the edge cache is the only legitimate caller.
func (s *Store) Remove(e Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ga, ok := s.graphs[e.GraphID]
	if !ok {
		return fmt.Errorf("graphstore: remove from unknown graph %q: %w", e.GraphID, streamerr.ErrMissingEdge)
	}

	key := e.Source()
	h := sourceHash(key)
	bucket := ga.buckets[h]
	dest := e.Dest()
	for i := range bucket {
		if bucket[i].key != key {
			continue
		}
		list := bucket[i].list
		idx := -1
		for j, d := range list {
			if d == dest {
				idx = j
				break
			}
		}
		if idx == -1 {
			return fmt.Errorf("graphstore: edge not found in adjacency of %+v: %w", key, streamerr.ErrMissingEdge)
		}
		list = append(list[:idx], list[idx+1:]...)

		if len(list) == 0 {
			bucket = append(bucket[:i], bucket[i+1:]...)
			if len(bucket) == 0 {
				delete(ga.buckets, h)
			} else {
				ga.buckets[h] = bucket
			}
			if len(ga.buckets) == 0 {
				delete(s.graphs, e.GraphID)
			}
		} else {
			bucket[i].list = list
			ga.buckets[h] = bucket
		}
		return nil
	}

	return fmt.Errorf("graphstore: source key %+v not found: %w", key, streamerr.ErrMissingEdge)
}

// Adjacency returns the current ordered destination list for
// (graphID, key), or nil if the key has no outgoing edges.
func (s *Store) Adjacency(graphID string, key SourceKey) []DestTriple {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ga, ok := s.graphs[graphID]
	if !ok {
		return nil
	}
	bucket := ga.buckets[sourceHash(key)]
	for i := range bucket {
		if bucket[i].key == key {
			return bucket[i].list
		}
	}
	return nil
}

// SourceKeys returns every source key with at least one outgoing edge in
// graphID. Used only by shingle.ConstructTempShingleVector during
// bootstrap; not on the per-edge hot path.
func (s *Store) SourceKeys(graphID string) []SourceKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ga, ok := s.graphs[graphID]
	if !ok {
		return nil
	}
	out := make([]SourceKey, 0, len(ga.buckets))
	for _, bucket := range ga.buckets {
		for _, e := range bucket {
			out = append(out, e.key)
		}
	}
	return out
}

// HasGraph reports whether graphID has any adjacency at all.
func (s *Store) HasGraph(graphID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.graphs[graphID]
	return ok
}
