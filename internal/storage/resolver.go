package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"coursehub/internal/common"

	"github.com/rs/zerolog/log"
)

// BackendStatus is the last observed availability of one backend,
// maintained passively as requests flow through the resolver.
type BackendStatus struct {
	Name      string    `json:"name"`
	Available bool      `json:"available"`
	LastError string    `json:"last_error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Resolver tries each configured backend in priority order and falls
// through on unavailability. Reads that exhaust the chain are served
// from a static read-only fixture store; writes fail with
// ErrAllBackendsUnavailable because a write cannot silently fall back
// to static data without being lost.
type Resolver struct {
	backends []Backend
	static   Backend
	timeout  time.Duration

	mu     sync.RWMutex
	status map[string]BackendStatus
}

func NewResolver(backends []Backend, static Backend, timeout time.Duration) *Resolver {
	r := &Resolver{
		backends: backends,
		static:   static,
		timeout:  timeout,
		status:   make(map[string]BackendStatus, len(backends)),
	}
	for _, b := range backends {
		r.status[b.Name()] = BackendStatus{Name: b.Name(), Available: true}
	}
	return r
}

// Backends exposes the configured chain for operational endpoints
// (health probes, migration targets).
func (r *Resolver) Backends() []Backend {
	return r.backends
}

// Status reports last observed availability in chain order.
func (r *Resolver) Status() []BackendStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]BackendStatus, 0, len(r.backends))
	for _, b := range r.backends {
		out = append(out, r.status[b.Name()])
	}
	return out
}

func (r *Resolver) markUp(name string) {
	r.mu.Lock()
	r.status[name] = BackendStatus{Name: name, Available: true, CheckedAt: time.Now().UTC()}
	r.mu.Unlock()
}

func (r *Resolver) markDown(name string, err error) {
	r.mu.Lock()
	r.status[name] = BackendStatus{Name: name, Available: false, LastError: err.Error(), CheckedAt: time.Now().UTC()}
	r.mu.Unlock()
}

// terminal errors carry meaning for the caller and must not trigger
// fallthrough: the backend answered, the answer just wasn't a record.
func isTerminal(err error) bool {
	return errors.Is(err, common.ErrNotFound) ||
		errors.Is(err, common.ErrConflict) ||
		errors.Is(err, common.ErrValidation) ||
		errors.Is(err, common.ErrBadRequest)
}

func attempt[T any](ctx context.Context, r *Resolver, b Backend, fn func(context.Context, Backend) (T, error)) (T, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	res, err := fn(attemptCtx, b)
	if err != nil && attemptCtx.Err() != nil && ctx.Err() == nil {
		// The per-backend budget expired, not the request itself.
		err = common.Errorf("%s timed out after %s: %w", b.Name(), r.timeout, common.ErrBackendUnavailable)
	}
	return res, err
}

// Read resolves a read operation through the fallback chain, ending at
// the static dataset when every backend is down.
func Read[T any](ctx context.Context, r *Resolver, op string, fn func(context.Context, Backend) (T, error)) (T, error) {
	var zero T
	for _, b := range r.backends {
		res, err := attempt(ctx, r, b, fn)
		if err == nil {
			r.markUp(b.Name())
			return res, nil
		}
		if isTerminal(err) {
			r.markUp(b.Name())
			return zero, err
		}
		r.markDown(b.Name(), err)
		log.Warn().Str("backend", b.Name()).Str("op", op).Err(err).
			Msg("backend failed, falling through")
	}
	log.Warn().Str("op", op).Msg("all backends unavailable, serving static fallback data")
	return fn(ctx, r.static)
}

// Write resolves a mutating operation through the fallback chain.
// There is no static fallback for writes.
func Write[T any](ctx context.Context, r *Resolver, op string, fn func(context.Context, Backend) (T, error)) (T, error) {
	var zero T
	for _, b := range r.backends {
		res, err := attempt(ctx, r, b, fn)
		if err == nil {
			r.markUp(b.Name())
			return res, nil
		}
		if isTerminal(err) {
			r.markUp(b.Name())
			return zero, err
		}
		r.markDown(b.Name(), err)
		log.Warn().Str("backend", b.Name()).Str("op", op).Err(err).
			Msg("backend failed, falling through")
	}
	log.Error().Str("op", op).Msg("write rejected: all backends unavailable")
	return zero, common.ErrAllBackendsUnavailable
}
