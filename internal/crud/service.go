package crud

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/incubation-console/internal/apiclient"
	"github.com/frahmantamala/incubation-console/internal/core/common/form"
	"github.com/frahmantamala/incubation-console/internal/listing"
)

// Service is a management screen over a plain REST collection.
type Service[T any, F Form] struct {
	*listing.Controller[T]
	path     string
	resource *apiclient.Resource[T]
	payload  func(F) interface{}
	logger   *slog.Logger
}

// NewService builds the screen. payload turns a validated form into the request body.
func NewService[T any, F Form](path string, desc listing.Descriptor[T], resource *apiclient.Resource[T],
	payload func(F) interface{}, logger *slog.Logger) *Service[T, F] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service[T, F]{
		Controller: listing.NewController(desc, resource, logger),
		path:       path,
		resource:   resource,
		payload:    payload,
		logger:     logger.With("entity", desc.Name),
	}
}

func (s *Service[T, F]) Path() string { return s.path }

func (s *Service[T, F]) LastError() string { return s.Summary().Error }

// Create validates f and posts it. Validation failures never reach the network.
func (s *Service[T, F]) Create(ctx context.Context, f F) error {
	validate := f.Validate
	if cv, ok := any(f).(CreateValidator); ok {
		validate = cv.ValidateCreate
	}
	if err := validate(); err != nil {
		return err
	}
	return s.Controller.Create(ctx, func(ctx context.Context) error {
		return s.resource.Create(ctx, s.payload(f))
	})
}

// Update validates f and puts it to the record id.
func (s *Service[T, F]) Update(ctx context.Context, id string, f F) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return s.Controller.Update(ctx, id, func(ctx context.Context, _ T) error {
		return s.resource.Update(ctx, id, s.payload(f))
	})
}

func (s *Service[T, F]) CreateFrom(ctx context.Context, pairs []string) error {
	var f F
	if err := form.FromPairs(pairs, &f); err != nil {
		return err
	}
	return s.Create(ctx, f)
}

func (s *Service[T, F]) UpdateFrom(ctx context.Context, id string, pairs []string) error {
	if err := s.Mount(ctx); err != nil {
		return err
	}
	var f F
	if err := form.FromPairs(pairs, &f); err != nil {
		return err
	}
	return s.Update(ctx, id, f)
}
