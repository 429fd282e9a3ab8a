package graphstore

// SourceKey identifies the source endpoint of an adjacency list: a node id
// plus its type token (spec §3, "source key (node_id, node_type)").
type SourceKey struct {
	NodeID   string
	NodeType string
}

// DestTriple is one outgoing edge's destination-side data, in the order it
// was appended (spec §3).
type DestTriple struct {
	DstID    string
	DstType  string
	EdgeType string
}

// Edge is the full wire tuple from spec §3.
type Edge struct {
	SrcID    string
	SrcType  string
	DstID    string
	DstType  string
	EdgeType string
	GraphID  string
}

// Source returns the edge's source key.
func (e Edge) Source() SourceKey {
	return SourceKey{NodeID: e.SrcID, NodeType: e.SrcType}
}

// Dest returns the edge's destination triple.
func (e Edge) Dest() DestTriple {
	return DestTriple{DstID: e.DstID, DstType: e.DstType, EdgeType: e.EdgeType}
}

// bucketEntry is one occupied slot of the flat hash table: the real key is
// kept alongside the hash so colliding keys can share a bucket without
// corrupting each other's adjacency list.
type bucketEntry struct {
	key  SourceKey
	list []DestTriple
}

// graphAdjacency is the flat-hashed adjacency for a single graph id.
type graphAdjacency struct {
	buckets map[uint64][]bucketEntry
}

func newGraphAdjacency() *graphAdjacency {
	return &graphAdjacency{buckets: make(map[uint64][]bucketEntry)}
}
