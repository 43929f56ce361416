// Package aggregate runs independent lookups concurrently and merges their
// results into one mapping. Either every lookup succeeds and all results are
// returned, or the first failure is returned and nothing else is.
package aggregate

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Lookup fetches one independent piece of a view.
type Lookup func(ctx context.Context) (any, error)

// Of adapts a typed fetch function into a Lookup.
func Of[T any](fn func(ctx context.Context) (T, error)) Lookup {
	return func(ctx context.Context) (any, error) {
		return fn(ctx)
	}
}

// Results maps lookup keys to their values.
type Results map[string]any

// Run executes every lookup concurrently and waits for all of them. The
// context handed to lookups is cancelled once any lookup fails.
func Run(ctx context.Context, lookups map[string]Lookup) (Results, error) {
	g, gCtx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	out := make(Results, len(lookups))

	for key, lookup := range lookups {
		g.Go(func() error {
			v, err := lookup(gCtx)
			if err != nil {
				return err
			}
			mu.Lock()
			out[key] = v
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the value stored under key as T. It panics when the key is
// missing or holds another type, which is a programming error in the caller's
// lookup table.
func Get[T any](r Results, key string) T {
	v, ok := r[key]
	if !ok {
		panic(fmt.Sprintf("aggregate: no result for %q", key))
	}
	t, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("aggregate: result %q is %T", key, v))
	}
	return t
}
