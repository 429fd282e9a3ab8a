// Package streamerr defines the sentinel error kinds shared across the
// streaming engine's packages, per the error handling design in spec §7.
//
// Callers branch on these with errors.Is; implementations should wrap a
// sentinel with fmt.Errorf("context: %w", ...) rather than defining new
// error values.
package streamerr

import (
	"errors"
	"fmt"
)

var (
	// ErrBadInput marks a malformed edge or bootstrap line.
	ErrBadInput = errors.New("streamspot: bad input")

	// ErrUnknownGraphInBootstrap marks a training gid with no edges in the
	// training set at bootstrap completion.
	ErrUnknownGraphInBootstrap = errors.New("streamspot: unknown graph in bootstrap")

	// ErrInvariantViolated marks a violated core invariant: remove on an
	// absent edge, an empty cluster chosen by argmin, L != B*R, etc.
	ErrInvariantViolated = errors.New("streamspot: invariant violated")

	// ErrParameterOutOfRange marks a startup parameter outside its
	// allowed range (C < 4, K != 1, W < 0, ...).
	ErrParameterOutOfRange = errors.New("streamspot: parameter out of range")

	// ErrMissingEdge is a specialization of ErrInvariantViolated returned
	// by graphstore.Remove when the triple is not present in the
	// adjacency list.
	ErrMissingEdge = fmt.Errorf("%w: remove of absent edge", ErrInvariantViolated)
)
