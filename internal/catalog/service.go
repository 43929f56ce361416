// Package catalog wires the mutation, deletion and aggregation pipelines onto
// the entity store for each of the four catalog entities.
package catalog

import (
	"context"
	"net/url"
	"time"

	"github.com/starford/libris/internal/aggregate"
	"github.com/starford/libris/internal/metrics"
	"github.com/starford/libris/internal/models"
	"github.com/starford/libris/internal/pipeline"
	"github.com/starford/libris/internal/store"
)

// Entity names used in events, metrics and logs.
const (
	EntityAuthor       = "author"
	EntityGenre        = "genre"
	EntityBook         = "book"
	EntityBookInstance = "bookinstance"
)

// Reference list keys in MutationResult.Refs.
const (
	RefAuthors = "authors"
	RefGenres  = "genres"
	RefBooks   = "books"
)

// Notifier receives a message after every successful change.
// kind is one of "created", "updated", "deleted".
type Notifier interface {
	PublishChange(kind, entity, id string)
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records pipeline outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithNotifier publishes changes to n.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.events = n
	}
}

// Service exposes the catalog operations used by the HTTP and MCP surfaces.
type Service struct {
	db      store.Catalog
	metrics *metrics.Metrics
	events  Notifier
}

// NewService creates a catalog service on top of db.
func NewService(db store.Catalog, opts ...Option) *Service {
	s := &Service{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks that the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// assemble runs lookups through the aggregator and times the view.
func (s *Service) assemble(ctx context.Context, view string, lookups map[string]aggregate.Lookup) (aggregate.Results, error) {
	start := time.Now()
	res, err := aggregate.Run(ctx, lookups)
	s.metrics.ObserveAggregation(view, time.Since(start))
	return res, err
}

func (s *Service) publish(kind, entity, id string) {
	if s.events != nil {
		s.events.PublishChange(kind, entity, id)
	}
}

// mutate runs m and records its outcome.
func mutate[T any](ctx context.Context, s *Service, entity, op string, m pipeline.Mutation[T], fields url.Values, id string, idOf func(T) string) (pipeline.MutationResult[T], error) {
	res, err := m.Run(ctx, fields, id)
	switch {
	case err != nil:
		s.metrics.IncrementMutation(entity, op, "error")
	case res.Action == pipeline.Redisplay:
		s.metrics.IncrementMutation(entity, op, "redisplay")
	case res.Existing:
		s.metrics.IncrementMutation(entity, op, "existing")
	default:
		s.metrics.IncrementMutation(entity, op, "redirect")
		kind := "created"
		if op == "update" {
			kind = "updated"
		}
		s.publish(kind, entity, idOf(res.Entity))
	}
	return res, err
}

// remove runs the deletion workflow and records its outcome.
func remove[T, D any](ctx context.Context, s *Service, entity string, d pipeline.Deletion[T, D], id string) (pipeline.DeletionResult[T, D], error) {
	res, err := d.Execute(ctx, id)
	if err != nil {
		s.metrics.IncrementDeletion(entity, "error")
		return res, err
	}
	s.metrics.IncrementDeletion(entity, res.State.String())
	if res.State == pipeline.Deleted {
		s.publish("deleted", entity, id)
	}
	return res, nil
}

// Home holds the record counts shown on the catalog landing page.
type Home struct {
	Books           int `json:"books"`
	Copies          int `json:"copies"`
	CopiesAvailable int `json:"copies_available"`
	Authors         int `json:"authors"`
	Genres          int `json:"genres"`
}

// Home counts every collection concurrently.
func (s *Service) Home(ctx context.Context) (Home, error) {
	count := func(c store.Collection) aggregate.Lookup {
		return aggregate.Of(func(ctx context.Context) (int, error) { return s.db.Count(ctx, c) })
	}
	res, err := s.assemble(ctx, "home", map[string]aggregate.Lookup{
		"books":   count(store.Books),
		"copies":  count(store.BookInstances),
		"authors": count(store.Authors),
		"genres":  count(store.Genres),
		"available": aggregate.Of(func(ctx context.Context) (int, error) {
			return s.db.CountBookInstancesByStatus(ctx, models.StatusAvailable)
		}),
	})
	if err != nil {
		return Home{}, err
	}
	return Home{
		Books:           aggregate.Get[int](res, "books"),
		Copies:          aggregate.Get[int](res, "copies"),
		CopiesAvailable: aggregate.Get[int](res, "available"),
		Authors:         aggregate.Get[int](res, "authors"),
		Genres:          aggregate.Get[int](res, "genres"),
	}, nil
}
