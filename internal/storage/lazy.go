package storage

import (
	"context"
	"sync"
)

type connState int

const (
	stateIdle connState = iota
	stateConnecting
	stateConnected
)

func (s connState) String() string {
	switch s {
	case stateConnecting:
		return "connecting"
	case stateConnected:
		return "connected"
	default:
		return "idle"
	}
}

// attempt is one in-flight setup shared by every caller that arrives while
// it runs.
type attempt[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// lazy memoizes an expensive setup such as a database connection. The first
// Get runs setup, concurrent callers wait on the same attempt, and a failed
// attempt returns the cell to idle so a later Get retries.
type lazy[T any] struct {
	setup func(ctx context.Context) (T, error)

	mu      sync.Mutex
	state   connState
	val     T
	pending *attempt[T]
}

func newLazy[T any](setup func(ctx context.Context) (T, error)) *lazy[T] {
	return &lazy[T]{setup: setup}
}

func (l *lazy[T]) Get(ctx context.Context) (T, error) {
	l.mu.Lock()
	switch l.state {
	case stateConnected:
		v := l.val
		l.mu.Unlock()
		return v, nil
	case stateConnecting:
		a := l.pending
		l.mu.Unlock()
		return l.wait(ctx, a)
	}

	a := &attempt[T]{done: make(chan struct{})}
	l.state = stateConnecting
	l.pending = a
	l.mu.Unlock()

	// The setup outlives any single caller; a waiter giving up must not
	// abort it for the others.
	go l.run(context.WithoutCancel(ctx), a)
	return l.wait(ctx, a)
}

func (l *lazy[T]) run(ctx context.Context, a *attempt[T]) {
	v, err := l.setup(ctx)

	l.mu.Lock()
	a.val, a.err = v, err
	if err != nil {
		l.state = stateIdle
	} else {
		l.state = stateConnected
		l.val = v
	}
	l.pending = nil
	l.mu.Unlock()
	close(a.done)
}

func (l *lazy[T]) wait(ctx context.Context, a *attempt[T]) (T, error) {
	select {
	case <-a.done:
		return a.val, a.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Peek returns the value if setup already succeeded.
func (l *lazy[T]) Peek() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.val, l.state == stateConnected
}

func (l *lazy[T]) State() connState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}
