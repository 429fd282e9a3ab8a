package driver

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"streamspot/streamerr"
)

// ClusterSpec is one line of the bootstrap clusters file: a learned
// threshold and the training graph ids assigned to it (spec §6).
type ClusterSpec struct {
	Threshold float64
	Gids      []string
}

// BootstrapSpec is the parsed bootstrap clusters file.
type BootstrapSpec struct {
	GlobalThreshold float64
	ChunkLength     int
	Clusters        []ClusterSpec
}

// TrainGids returns the union of every cluster's training graph ids.
func (b *BootstrapSpec) TrainGids() map[string]bool {
	out := make(map[string]bool)
	for _, c := range b.Clusters {
		for _, gid := range c.Gids {
			out[gid] = true
		}
	}
	return out
}

// ParseBootstrap reads the bootstrap clusters file (spec §6): a header
// line followed by one line per cluster.
//
// The header accepts two variants (an Open Question resolved in
// DESIGN.md): the 3-field `nclusters global_threshold chunk_length`, or a
// legacy 2-field `nclusters global_threshold` that takes its chunk length
// from fallbackChunkLength (the configured chunk length C, config key
// stream.c) instead. When the
// 3-field header's chunk length disagrees with fallbackChunkLength, that
// is a ParameterOutOfRange: the 3-field value is authoritative and a
// mismatch means the startup parameters and the bootstrap file were not
// produced together.
func ParseBootstrap(r io.Reader, fallbackChunkLength int) (*BootstrapSpec, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		return nil, fmt.Errorf("bootstrap file is empty: %w", streamerr.ErrBadInput)
	}
	header := strings.Fields(scanner.Text())

	var nclusters int
	var globalThreshold float64
	chunkLength := fallbackChunkLength

	switch len(header) {
	case 2:
		var err error
		nclusters, globalThreshold, err = parseHeaderFields(header)
		if err != nil {
			return nil, err
		}
	case 3:
		var err error
		nclusters, globalThreshold, err = parseHeaderFields(header[:2])
		if err != nil {
			return nil, err
		}
		declared, err := strconv.Atoi(header[2])
		if err != nil {
			return nil, fmt.Errorf("bootstrap header chunk_length %q: %w", header[2], streamerr.ErrBadInput)
		}
		if declared != fallbackChunkLength {
			return nil, fmt.Errorf("bootstrap header chunk_length %d != startup C %d: %w", declared, fallbackChunkLength, streamerr.ErrParameterOutOfRange)
		}
		chunkLength = declared
	default:
		return nil, fmt.Errorf("bootstrap header has %d fields, want 2 or 3: %w", len(header), streamerr.ErrBadInput)
	}

	spec := &BootstrapSpec{GlobalThreshold: globalThreshold, ChunkLength: chunkLength}

	for i := 0; i < nclusters; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("bootstrap file has %d cluster lines, want %d: %w", i, nclusters, streamerr.ErrBadInput)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			return nil, fmt.Errorf("bootstrap cluster line %d has %d fields, want >= 2: %w", i, len(fields), streamerr.ErrBadInput)
		}
		threshold, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("bootstrap cluster %d threshold %q: %w", i, fields[0], streamerr.ErrBadInput)
		}
		spec.Clusters = append(spec.Clusters, ClusterSpec{Threshold: threshold, Gids: fields[1:]})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("bootstrap file: %w", err)
	}

	return spec, nil
}

func parseHeaderFields(fields []string) (nclusters int, globalThreshold float64, err error) {
	nclusters, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bootstrap header nclusters %q: %w", fields[0], streamerr.ErrBadInput)
	}
	globalThreshold, err = strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bootstrap header global_threshold %q: %w", fields[1], streamerr.ErrBadInput)
	}
	return nclusters, globalThreshold, nil
}
