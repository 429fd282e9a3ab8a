// Package driver wires the adjacency store, hash family, incremental
// processor, cluster tracker, and optional edge cache into the single-pass
// streaming loop of spec §5: bootstrap on the training prefix, then
// classify every edge as it arrives.
package driver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"streamspot/cluster"
	"streamspot/config"
	"streamspot/edgecache"
	"streamspot/graphstore"
	"streamspot/hashfamily"
	"streamspot/metrics"
	"streamspot/shingle"
	"streamspot/sketch"
	"streamspot/stream"
	"streamspot/streamerr"
)

// Record is one edge's classification outcome, emitted by Run for every
// classified edge; training-prefix edges, blank lines and skipped bad
// lines emit none (spec §6's per-edge output contract: origin tag, graph id,
// millisecond wall-clock timestamp, anomaly score, cluster id).
type Record struct {
	Origin      string
	GraphID     string
	TimestampMs int64
	Score       float64
	ClusterID   int
}

// Driver holds the whole engine's live state for one run: the adjacency
// store, the live per-graph sketch registry, the cluster tracker, and the
// optional bounded edge cache.
//
// A Driver is single-pass and not safe for concurrent use from more than
// one goroutine; spec §5's safe-parallelization design shards by graph id
// across independent Drivers instead of sharing one.
type Driver struct {
	cfg *config.Config
	fam *hashfamily.Family
	log *slog.Logger
	m   *metrics.Metrics

	store   *graphstore.Store
	graphs  edgecache.Graphs
	tracker *cluster.Tracker
	cache   *edgecache.Cache

	bootstrap     *BootstrapSpec
	trainGids     map[string]bool
	seenTrainGids map[string]bool
	bootstrapped  bool

	edgesSinceSnapshot int
}

// New builds a Driver ready to stream. bootstrap is the parsed bootstrap
// clusters file (spec §6); it must be non-nil, since StreamSpot has no
// unsupervised cold-start path (Non-goal: "offline bootstrap clusterer").
func New(cfg *config.Config, fam *hashfamily.Family, bootstrap *BootstrapSpec, log *slog.Logger, m *metrics.Metrics) (*Driver, error) {
	if bootstrap == nil {
		return nil, fmt.Errorf("driver: bootstrap spec required: %w", streamerr.ErrBadInput)
	}

	d := &Driver{
		cfg:           cfg,
		fam:           fam,
		log:           log,
		m:             m,
		store:         graphstore.New(),
		graphs:        make(edgecache.Graphs),
		bootstrap:     bootstrap,
		trainGids:     bootstrap.TrainGids(),
		seenTrainGids: make(map[string]bool, len(bootstrap.TrainGids())),
	}
	return d, nil
}

// FinalizeBootstrap cold-constructs every training graph's sketch, seeds
// the cluster set from the bootstrap spec, and builds the tracker. Called
// automatically by Run at the first non-training edge or EOF; exported so
// callers that know the training prefix has ended early can force it.
//
// Returns streamerr.ErrUnknownGraphInBootstrap if a declared training gid
// never appeared in the edges seen so far (spec §6).
func (d *Driver) FinalizeBootstrap() error {
	if d.bootstrapped {
		return nil
	}

	for gid := range d.trainGids {
		if !d.seenTrainGids[gid] {
			return fmt.Errorf("bootstrap graph %q never appeared in the training edges: %w", gid, streamerr.ErrUnknownGraphInBootstrap)
		}
	}

	clusters := make([]cluster.Cluster, len(d.bootstrap.Clusters))
	for i, cs := range d.bootstrap.Clusters {
		members := make([][]int64, 0, len(cs.Gids))
		for _, gid := range cs.Gids {
			s := d.coldSketch(gid)
			d.graphs[gid] = s
			members = append(members, s.Proj)
		}
		clusters[i] = cluster.NewCluster(d.fam.L(), cs.Threshold, members)
	}

	d.tracker = cluster.NewTracker(clusters, d.bootstrap.GlobalThreshold,
		cluster.WithClassifyUnseenOnFirstEdge(d.cfg.Stream.ClassifyUnseenOnFirstEdge))

	if d.cfg.CacheEnabled() {
		c, err := edgecache.New(d.cfg.Cache.Capacity, d.store, d.fam, d.graphs, d.tracker)
		if err != nil {
			return fmt.Errorf("driver: edge cache: %w", err)
		}
		d.cache = c
	}

	d.bootstrapped = true
	return nil
}

// coldSketch builds gid's sketch from scratch off the adjacency already in
// d.store (spec §4.3's cold bootstrap path), reusing sketch.ApplyDelta on
// a zero sketch rather than duplicating the sign-bit derivation.
func (d *Driver) coldSketch(gid string) sketch.Sketch {
	counts := shingle.ConstructTempShingleVector(d.store, gid, d.fam.ChunkLen())
	proj := make([]int64, d.fam.L())
	for chunk, count := range counts {
		for row := 0; row < d.fam.L(); row++ {
			proj[row] += int64(count) * int64(d.fam.HashMulti([]byte(chunk), row))
		}
	}
	return sketch.ApplyDelta(sketch.Initial(d.fam.L()), proj)
}

// ProcessEdge runs one edge through the full pipeline: append to
// adjacency, derive its incremental projection delta, apply it to the
// graph's live sketch, update the cluster tracker, and optionally hand the
// edge to the bounded cache. Bootstrap must already be finalized.
func (d *Driver) ProcessEdge(e graphstore.Edge) (Record, error) {
	delta := stream.Process(d.store, d.fam, e)

	s, ok := d.graphs[e.GraphID]
	if !ok {
		s = sketch.Initial(d.fam.L())
	}
	s = sketch.ApplyDelta(s, delta)
	d.graphs[e.GraphID] = s

	prevCluster := d.tracker.ClusterOf(e.GraphID)
	if err := d.tracker.Update(e.GraphID, s.Proj, s.Bits, delta); err != nil {
		return Record{}, err
	}

	cid := d.tracker.ClusterOf(e.GraphID)
	if d.m != nil {
		d.m.EdgesProcessedTotal.Inc()
		if cid == cluster.Anomaly {
			d.m.AnomaliesTotal.Inc()
		} else if prevCluster >= 0 && prevCluster != cid {
			d.m.ClusterMigrationsTotal.Inc()
		}
	}

	if d.cache != nil {
		wasFull := d.cache.Len() == d.cfg.Cache.Capacity
		if err := d.cache.Accept(e); err != nil {
			return Record{}, fmt.Errorf("driver: cache accept: %w", err)
		}
		if wasFull && d.m != nil {
			d.m.CacheEvictionsTotal.Inc()
		}
	}

	return Record{
		Origin:      d.cfg.App.Name,
		GraphID:     e.GraphID,
		TimestampMs: time.Now().UnixMilli(),
		Score:       d.tracker.ScoreOf(e.GraphID),
		ClusterID:   cid,
	}, nil
}

// snapshot logs and, if metrics are wired, publishes the current
// per-cluster size and mean anomaly score (the supplemented periodic
// report of SPEC_FULL.md §C8/§C6).
func (d *Driver) snapshot() {
	for _, snap := range d.tracker.Snapshot() {
		d.log.Info("cluster snapshot",
			"cluster_id", snap.ClusterID,
			"size", snap.Size,
			"mean_score", snap.MeanScore,
		)
		if d.m != nil {
			label := fmt.Sprintf("%d", snap.ClusterID)
			d.m.ClusterSize.WithLabelValues(label).Set(float64(snap.Size))
			d.m.ClusterMeanScore.WithLabelValues(label).Set(snap.MeanScore)
		}
	}
}

// Run reads tab-separated edge lines from r until EOF or ctx is done,
// classifying each and passing one Record per classified edge to emit. The training
// prefix (edges whose graph id is declared in the bootstrap spec) is
// buffered into the adjacency store only; the first edge whose graph id is
// not in the training set (or EOF, if every edge is a training edge)
// triggers FinalizeBootstrap before that edge is classified.
//
// Run honors ctx between edges only: it never cancels mid-edge (spec §5),
// and it has no internal retry loop (spec §4.8/§7) — a bad-input or
// pipeline error is handled per cfg.Input.BadInputPolicy and otherwise
// returned immediately.
func (d *Driver) Run(ctx context.Context, r io.Reader, emit func(Record) error) error {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		start := time.Now()
		line := scanner.Text()
		if line == "" {
			continue
		}

		e, err := ParseEdgeLine(line)
		if err != nil {
			if d.badInputIsFatal() {
				return err
			}
			d.log.Warn("skipping bad input line", "error", err)
			if d.m != nil {
				d.m.BadInputTotal.Inc()
			}
			continue
		}

		if !d.bootstrapped && d.trainGids[e.GraphID] {
			d.store.Append(e)
			d.seenTrainGids[e.GraphID] = true
			continue
		}

		if !d.bootstrapped {
			if err := d.FinalizeBootstrap(); err != nil {
				return err
			}
		}

		rec, err := d.ProcessEdge(e)
		if err != nil {
			return fmt.Errorf("driver: process edge: %w", err)
		}

		if d.m != nil {
			d.m.ObserveEdge(time.Since(start))
		}

		if err := emit(rec); err != nil {
			return fmt.Errorf("driver: emit record: %w", err)
		}

		d.edgesSinceSnapshot++
		if d.cfg.Stream.SnapshotInterval > 0 && d.edgesSinceSnapshot >= d.cfg.Stream.SnapshotInterval {
			d.snapshot()
			d.edgesSinceSnapshot = 0
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("driver: read input: %w", err)
	}

	if !d.bootstrapped {
		if err := d.FinalizeBootstrap(); err != nil {
			return err
		}
	}

	return nil
}

func (d *Driver) badInputIsFatal() bool {
	return d.cfg.Input.BadInputPolicy != "skip"
}
