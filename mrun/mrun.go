// Package mrun provides ordered init/shutdown hooks for an mcmp.Component
// tree. Hooks are registered onto the root of whichever Component they're
// attached to, so they run in the single global order they were
// registered on Init, and in the exact reverse of that order on Shutdown.
// A hook registered on a Component anywhere in the tree fires in a stable
// place relative to every other hook, regardless of nesting.
package mrun

import (
	"context"
	"errors"

	"github.com/meilisearch/MeiliES/mcmp"
)

// Hook is a function registered to run during Init or Shutdown.
type Hook func(context.Context) error

type hooksKey int

const (
	initHooksKey hooksKey = iota
	shutdownHooksKey
)

func root(cmp *mcmp.Component) *mcmp.Component {
	for {
		parent, ok := cmp.Parent()
		if !ok {
			return cmp
		}
		cmp = parent
	}
}

func addHook(cmp *mcmp.Component, key hooksKey, hook Hook) {
	r := root(cmp)
	existing, _ := r.Value(key).([]Hook)
	r.SetValue(key, append(existing, hook))
}

// InitHook registers a Hook to be run, in the global order it and every
// other InitHook were registered, when Init is called on cmp or any
// Component in its tree.
func InitHook(cmp *mcmp.Component, hook Hook) {
	addHook(cmp, initHooksKey, hook)
}

// ShutdownHook registers a Hook to be run, in the reverse of the global
// order it and every other ShutdownHook were registered, when Shutdown is
// called on cmp or any Component in its tree.
func ShutdownHook(cmp *mcmp.Component, hook Hook) {
	addHook(cmp, shutdownHooksKey, hook)
}

// Init runs every InitHook registered anywhere in cmp's tree, in
// registration order. If any Hook returns an error, Init stops and
// returns that error immediately.
func Init(ctx context.Context, cmp *mcmp.Component) error {
	hooks, _ := root(cmp).Value(initHooksKey).([]Hook)
	for _, h := range hooks {
		if err := h(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ErrShutdownCanceled is returned from Shutdown if ctx is canceled before
// every ShutdownHook has run.
var ErrShutdownCanceled = errors.New("shutdown canceled before completing")

// Shutdown runs every ShutdownHook registered anywhere in cmp's tree, in
// the reverse of the order they were registered, continuing even if
// individual Hooks error so that every registered Hook gets a chance to
// clean up. It returns the first error encountered, if any.
func Shutdown(ctx context.Context, cmp *mcmp.Component) error {
	hooks, _ := root(cmp).Value(shutdownHooksKey).([]Hook)

	var firstErr error
	for i := len(hooks) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			if firstErr == nil {
				firstErr = ErrShutdownCanceled
			}
			return firstErr
		default:
		}
		if err := hooks[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
