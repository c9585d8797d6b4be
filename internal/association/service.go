package association

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	errors "github.com/frahmantamala/incubation-console/internal"
	"github.com/frahmantamala/incubation-console/internal/apiclient"
	"github.com/frahmantamala/incubation-console/internal/bulk"
	dm "github.com/frahmantamala/incubation-console/internal/core/datamodel/association"
	userdm "github.com/frahmantamala/incubation-console/internal/core/datamodel/user"
	"github.com/frahmantamala/incubation-console/internal/guard"
	"github.com/frahmantamala/incubation-console/internal/listing"
	"github.com/frahmantamala/incubation-console/internal/user"
)

const ActionLink = "link"

type repository struct {
	users *apiclient.Resource[userdm.User]
	links *apiclient.Resource[dm.Link]
}

// List fetches users and join rows in parallel and groups them.
func (r *repository) List(ctx context.Context) ([]UserLinks, error) {
	var (
		users []userdm.User
		links []dm.Link
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = r.users.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		links, err = r.links.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Group(users, links), nil
}

func (r *repository) Delete(ctx context.Context, _ UserLinks) error {
	return errUnsupported
}

var errUnsupported = errors.NewValidationError("Links are changed by editing the user's incubatee set", errors.ErrCodeValidationFailed)

type Service struct {
	*listing.Controller[UserLinks]
	kind        Kind
	client      *apiclient.Client
	links       *apiclient.Resource[dm.Link]
	incubatees  *apiclient.Resource[dm.Incubatee]
	coordinator *bulk.Coordinator
	logger      *slog.Logger
}

func NewService(client *apiclient.Client, kind Kind, coordinator *bulk.Coordinator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	desc := NewDescriptor(kind)
	links := apiclient.NewResource(client, "/associations/"+string(kind), Module, string(kind)+" association",
		func(l dm.Link) string { return l.ID.String() })
	repo := &repository{
		users: user.Lister(client, kind.Role(), Module),
		links: links,
	}
	return &Service{
		Controller: listing.NewController[UserLinks](desc, repo, logger),
		kind:       kind,
		client:     client,
		links:      links,
		incubatees: apiclient.NewResource(client, "/incubatees", Module, "incubatee",
			func(i dm.Incubatee) string { return i.ID.String() }),
		coordinator: coordinator,
		logger:      logger.With("entity", desc.Name),
	}
}

func (s *Service) Kind() Kind { return s.kind }

func (s *Service) Path() string { return guard.ScreenAssociations }

func (s *Service) LastError() string { return s.Summary().Error }

// Incubatees lists the incubatees a user can be linked to.
func (s *Service) Incubatees(ctx context.Context) ([]dm.Incubatee, error) {
	return s.incubatees.List(ctx)
}

// Reconcile makes the user's links equal desired, one request per difference. Partial
// application is kept and the list refreshed; when every request failed the list is left
// alone so the edit can be retried. The returned error carries every failure.
func (s *Service) Reconcile(ctx context.Context, userID string, desired []string) (bulk.Result, error) {
	if err := s.Mount(ctx); err != nil {
		return bulk.Result{}, err
	}
	row, ok := s.Find(userID)
	if !ok {
		return bulk.Result{}, errors.ErrRecordNotFound
	}

	linkByIncubatee := make(map[string]string, len(row.Links))
	for _, l := range row.Links {
		linkByIncubatee[l.IncubateeID.String()] = l.ID.String()
	}

	var res bulk.Result
	err := s.Mutate(ctx, userID, ActionLink, func(ctx context.Context) error {
		res = bulk.Reconcile(ctx, s.coordinator, row.IncubateeIDs(), desired,
			func(ctx context.Context, incubateeID string) error {
				return s.client.Do(ctx, apiclient.Request{
					Method: http.MethodPost,
					Path:   s.links.Path(),
					Body:   map[string]string{"userId": userID, "incubateeId": incubateeID},
					Module: Module,
					Action: "Link incubatee " + incubateeID + " to user " + userID,
				}, nil)
			},
			func(ctx context.Context, incubateeID string) error {
				linkID := linkByIncubatee[incubateeID]
				return s.client.Do(ctx, apiclient.Request{
					Method: http.MethodDelete,
					Path:   s.links.Path() + "/" + linkID,
					Module: Module,
					Action: "Unlink incubatee " + incubateeID + " from user " + userID,
				}, nil)
			})
		if !res.Refresh() {
			return res.Err()
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	return res, res.Err()
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return errUnsupported
}

func (s *Service) CreateFrom(ctx context.Context, pairs []string) error {
	return errUnsupported
}

// UpdateFrom accepts incubatees=<id>,<id>... and reconciles the user's links.
func (s *Service) UpdateFrom(ctx context.Context, id string, pairs []string) error {
	var f LinkForm
	for _, p := range pairs {
		key, value, _ := strings.Cut(p, "=")
		if key == "incubatees" || key == "incubateeIds" {
			f.IncubateeIDs = SplitIDs(value)
			f.set = true
		}
	}
	if err := f.Validate(); err != nil {
		return err
	}
	_, err := s.Reconcile(ctx, id, f.IncubateeIDs)
	return err
}
