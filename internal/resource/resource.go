// Package resource holds the fetch/loading/error triplet every screen needs as one
// generic remote resource with an explicit reload hook.
package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrSuperseded is returned to a load that a newer load replaced
	ErrSuperseded = errors.New("load superseded by a newer request")
	// ErrClosed is returned once the owning screen has gone away
	ErrClosed = errors.New("resource closed")
)

// State is the load indicator of a resource
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return "idle"
}

// Loader fetches and normalizes one value
type Loader[T any] func(ctx context.Context) (T, error)

// Snapshot is a consistent view of a resource
type Snapshot[T any] struct {
	State State
	Data  T
	// HasData is true once a load has succeeded; a later failure keeps the data
	HasData bool
	Err     error
	// Refreshes counts explicit reloads
	Refreshes uint64
}

// Resource is one remote value: {data, state, error, reload}.
// Starting a load cancels the one in flight, and only the newest load may publish.
type Resource[T any] struct {
	name   string
	loader Loader[T]
	logger *zap.Logger

	mu         sync.Mutex
	state      State
	data       T
	hasData    bool
	err        error
	refreshes  uint64
	generation uint64
	cancel     context.CancelFunc
	closed     bool
}

// New creates an idle resource; nothing is fetched until Load
func New[T any](name string, loader Loader[T], logger *zap.Logger) *Resource[T] {
	return &Resource[T]{
		name:   name,
		loader: loader,
		logger: logger,
	}
}

// Name returns the resource name used in logs
func (r *Resource[T]) Name() string {
	return r.name
}

// Load fetches the value. A failed load records the error and keeps previous data.
func (r *Resource[T]) Load(ctx context.Context) (T, error) {
	var zero T

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return zero, ErrClosed
	}
	if r.cancel != nil {
		r.cancel()
	}
	r.generation++
	gen := r.generation
	loadCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.state = StateLoading
	r.err = nil
	r.mu.Unlock()

	value, err := r.loader(loadCtx)

	r.mu.Lock()
	defer r.mu.Unlock()
	cancel()

	if r.closed {
		return zero, ErrClosed
	}
	if gen != r.generation {
		r.logger.Debug("discarding superseded load", zap.String("resource", r.name))
		return zero, ErrSuperseded
	}
	r.cancel = nil

	if err != nil {
		r.state = StateError
		r.err = err
		r.logger.Warn("failed to load resource",
			zap.String("resource", r.name),
			zap.Error(err),
		)
		return zero, fmt.Errorf("failed to load %s: %w", r.name, err)
	}

	r.state = StateReady
	r.data = value
	r.hasData = true
	return value, nil
}

// Reload bumps the refresh counter and loads again
func (r *Resource[T]) Reload(ctx context.Context) (T, error) {
	r.mu.Lock()
	r.refreshes++
	r.mu.Unlock()
	return r.Load(ctx)
}

// Snapshot returns the current state
func (r *Resource[T]) Snapshot() Snapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot[T]{
		State:     r.state,
		Data:      r.data,
		HasData:   r.hasData,
		Err:       r.err,
		Refreshes: r.refreshes,
	}
}

// Update patches the loaded value in place without a fetch. It is a no-op until a
// load has succeeded.
func (r *Resource[T]) Update(fn func(T) T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || !r.hasData {
		return false
	}
	r.data = fn(r.data)
	return true
}

// Close cancels any load in flight; later results are discarded
func (r *Resource[T]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// Discarded reports whether err only means a result was thrown away
func Discarded(err error) bool {
	return errors.Is(err, ErrSuperseded) || errors.Is(err, ErrClosed)
}
