// Package pipeline implements the entity-agnostic create/update pipeline and
// the dependency-checked deletion workflow. Entity-specific behaviour is
// supplied as plain functions, so the same code serves every collection.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/starford/libris/internal/aggregate"
	"github.com/starford/libris/internal/apperr"
	"github.com/starford/libris/internal/form"
)

// Action tells the caller what to do with a MutationResult.
type Action int

const (
	// Redisplay means validation failed: show the form again.
	Redisplay Action = iota + 1
	// Redirect means the entity was persisted (or already existed).
	Redirect
)

func (a Action) String() string {
	switch a {
	case Redisplay:
		return "redisplay"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// MutationResult is the domain outcome of one create or update.
type MutationResult[T any] struct {
	Action Action
	// Entity is the candidate built from the sanitized input on Redisplay,
	// and the persisted (or pre-existing) entity on Redirect.
	Entity   T
	Failures []form.Failure
	// Refs holds the reference lists needed to render the form on Redisplay.
	Refs     aggregate.Results
	Location string
	// Existing is set when a natural-key match made the insert unnecessary.
	Existing bool
}

// Mutation configures create or update for one entity type.
type Mutation[T any] struct {
	Schema form.Schema
	// Build turns sanitized fields into a candidate. id is empty on create.
	Build func(res form.Result, id string) T
	// Refs lists the lookups needed to redisplay the form. May be nil.
	Refs map[string]aggregate.Lookup
	// FindExisting looks the candidate up by natural key and returns
	// apperr.ErrNotFound when there is no match. Nil disables the check.
	FindExisting func(ctx context.Context, candidate T) (T, error)
	// Save inserts or replaces the candidate and returns what was stored.
	Save func(ctx context.Context, candidate T) (T, error)
	// Location returns where to send the requester after a save.
	Location func(saved T) string
}

// Run validates fields, builds a candidate and either persists it or returns
// it for redisplay. Only store failures are returned as errors.
func (m Mutation[T]) Run(ctx context.Context, fields url.Values, id string) (MutationResult[T], error) {
	res := m.Schema.Apply(fields)
	candidate := m.Build(res, id)

	if !res.Valid() {
		refs, err := aggregate.Run(ctx, m.Refs)
		if err != nil {
			return MutationResult[T]{}, fmt.Errorf("pipeline: reference lists: %w", err)
		}
		return MutationResult[T]{
			Action:   Redisplay,
			Entity:   candidate,
			Failures: res.Failures,
			Refs:     refs,
		}, nil
	}

	if m.FindExisting != nil {
		found, err := m.FindExisting(ctx, candidate)
		switch {
		case err == nil:
			return MutationResult[T]{
				Action:   Redirect,
				Entity:   found,
				Location: m.Location(found),
				Existing: true,
			}, nil
		case !errors.Is(err, apperr.ErrNotFound):
			return MutationResult[T]{}, fmt.Errorf("pipeline: natural key lookup: %w", err)
		}
	}

	saved, err := m.Save(ctx, candidate)
	if err != nil {
		return MutationResult[T]{}, fmt.Errorf("pipeline: save: %w", err)
	}
	return MutationResult[T]{
		Action:   Redirect,
		Entity:   saved,
		Location: m.Location(saved),
	}, nil
}
