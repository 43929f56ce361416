package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/starford/libris/internal/aggregate"
	"github.com/starford/libris/internal/apperr"
)

// DeleteState is where a deletion request ended up.
type DeleteState int

const (
	// Gone means the target does not exist; callers treat it as deleted.
	Gone DeleteState = iota + 1
	// Blocked means dependents still reference the target.
	Blocked
	// Confirmable means a preview found no dependents.
	Confirmable
	// Deleted means the target was removed.
	Deleted
)

func (s DeleteState) String() string {
	switch s {
	case Gone:
		return "gone"
	case Blocked:
		return "blocked"
	case Confirmable:
		return "confirmable"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// None is the dependent type of entities nothing else references.
type None = struct{}

// DeletionResult carries the target and, when Blocked, every dependent.
type DeletionResult[T, D any] struct {
	State      DeleteState
	Target     T
	Dependents []D
}

// Deletion configures the dependency check for one entity type.
type Deletion[T, D any] struct {
	// Find returns the target or apperr.ErrNotFound.
	Find func(ctx context.Context, id string) (T, error)
	// Dependents returns the entities referencing id. Nil means none can exist.
	Dependents func(ctx context.Context, id string) ([]D, error)
	// Remove deletes the target.
	Remove func(ctx context.Context, id string) error
}

// Preview reports whether id could be deleted right now without deleting it.
func (d Deletion[T, D]) Preview(ctx context.Context, id string) (DeletionResult[T, D], error) {
	out, err := d.inspect(ctx, id)
	if err != nil || out.State != 0 {
		return out, err
	}
	out.State = Confirmable
	return out, nil
}

// Execute deletes id unless dependents reference it. A missing target is
// reported as Gone, never as an error. The check and the delete are not
// atomic: a dependent created in between is not detected.
func (d Deletion[T, D]) Execute(ctx context.Context, id string) (DeletionResult[T, D], error) {
	out, err := d.inspect(ctx, id)
	if err != nil || out.State != 0 {
		return out, err
	}
	if err := d.Remove(ctx, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return DeletionResult[T, D]{State: Gone}, nil
		}
		return DeletionResult[T, D]{}, fmt.Errorf("pipeline: remove: %w", err)
	}
	out.State = Deleted
	return out, nil
}

// inspect loads the target and its dependents concurrently. It leaves State
// unset when the target exists and nothing references it.
func (d Deletion[T, D]) inspect(ctx context.Context, id string) (DeletionResult[T, D], error) {
	lookups := map[string]aggregate.Lookup{
		"target": aggregate.Of(func(ctx context.Context) (T, error) { return d.Find(ctx, id) }),
	}
	if d.Dependents != nil {
		lookups["dependents"] = aggregate.Of(func(ctx context.Context) ([]D, error) { return d.Dependents(ctx, id) })
	}

	res, err := aggregate.Run(ctx, lookups)
	if errors.Is(err, apperr.ErrNotFound) {
		return DeletionResult[T, D]{State: Gone}, nil
	}
	if err != nil {
		return DeletionResult[T, D]{}, fmt.Errorf("pipeline: dependency check: %w", err)
	}

	out := DeletionResult[T, D]{Target: aggregate.Get[T](res, "target")}
	if d.Dependents != nil {
		out.Dependents = aggregate.Get[[]D](res, "dependents")
	}
	if len(out.Dependents) > 0 {
		out.State = Blocked
	}
	return out, nil
}
