package navigation

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/ridasaidd/byteforge-sub002/internal/identity"
	"github.com/ridasaidd/byteforge-sub002/internal/logging"
	"github.com/ridasaidd/byteforge-sub002/pkg/interfaces"
)

var (
	ErrRepositoryRequired = errors.New("navigation: repository required")
	ErrSiteRequired       = errors.New("navigation: site id required")
	ErrNameRequired       = errors.New("navigation: name required")
	ErrNavigationExists   = errors.New("navigation: name already exists for site")
	ErrNavigationNotFound = errors.New("navigation: not found")
)

// Invalidator drops derived data of a site after its navigation changes.
type Invalidator interface {
	Invalidate(ctx context.Context, siteID uuid.UUID) error
}

// CreateInput describes a new navigation.
type CreateInput struct {
	SiteID    uuid.UUID
	Name      string
	Structure []any
}

func (in CreateInput) Validate() error {
	if in.SiteID == uuid.Nil {
		return ErrSiteRequired
	}
	if strings.TrimSpace(in.Name) == "" {
		return ErrNameRequired
	}
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Length(1, 120)),
		validation.Field(&in.Structure, validation.Each(validation.By(structureItem))),
	)
}

func structureItem(value any) error {
	if _, ok := value.(map[string]any); !ok {
		return validation.NewError("navigation.structure.item", "navigation items must be objects")
	}
	return nil
}

// Service manages navigations and implements the navigation provider and
// lister contracts.
type Service interface {
	interfaces.NavigationProvider
	interfaces.NavigationLister
	Create(ctx context.Context, input CreateInput) (*Navigation, error)
	Get(ctx context.Context, id uuid.UUID) (*Navigation, error)
	UpdateStructure(ctx context.Context, id uuid.UUID, structure []any) (*Navigation, error)
	Publish(ctx context.Context, id uuid.UUID) (*Navigation, error)
	Unpublish(ctx context.Context, id uuid.UUID) (*Navigation, error)
}

type ServiceOption func(*service)

func WithInvalidator(invalidator Invalidator) ServiceOption {
	return func(s *service) {
		if invalidator != nil {
			s.invalidators = append(s.invalidators, invalidator)
		}
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the deterministic id derived from site and name.
func WithIDGenerator(fn func(siteID uuid.UUID, name string) uuid.UUID) ServiceOption {
	return func(s *service) {
		if fn != nil {
			s.id = fn
		}
	}
}

type service struct {
	repo         NavigationRepository
	invalidators []Invalidator
	logger       interfaces.Logger
	now          func() time.Time
	id           func(siteID uuid.UUID, name string) uuid.UUID
}

func NewService(repo NavigationRepository, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrRepositoryRequired)
	}
	s := &service{
		repo:   repo,
		logger: logging.NoOp(),
		now:    time.Now,
		id:     identity.NavigationUUID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Navigation, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	existing, err := s.repo.ListBySite(ctx, input.SiteID, false)
	if err != nil {
		return nil, err
	}
	for _, nav := range existing {
		if strings.EqualFold(nav.Name, name) {
			return nil, ErrNavigationExists
		}
	}
	now := s.now()
	nav := &Navigation{
		ID:        s.id(input.SiteID, name),
		SiteID:    input.SiteID,
		Name:      name,
		Structure: cloneSlice(input.Structure),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if nav.Structure == nil {
		nav.Structure = []any{}
	}
	return s.repo.Create(ctx, nav)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Navigation, error) {
	nav, err := s.repo.GetByID(ctx, id)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrNavigationNotFound
		}
		return nil, err
	}
	return nav, nil
}

func (s *service) UpdateStructure(ctx context.Context, id uuid.UUID, structure []any) (*Navigation, error) {
	nav, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	input := CreateInput{SiteID: nav.SiteID, Name: nav.Name, Structure: structure}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	nav.Structure = cloneSlice(structure)
	nav.UpdatedAt = s.now()
	updated, err := s.repo.Update(ctx, nav)
	if err != nil {
		return nil, err
	}
	if updated.Published {
		s.invalidate(ctx, updated.SiteID)
	}
	return updated, nil
}

func (s *service) Publish(ctx context.Context, id uuid.UUID) (*Navigation, error) {
	return s.setPublished(ctx, id, true)
}

func (s *service) Unpublish(ctx context.Context, id uuid.UUID) (*Navigation, error) {
	return s.setPublished(ctx, id, false)
}

func (s *service) setPublished(ctx context.Context, id uuid.UUID, published bool) (*Navigation, error) {
	nav, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	nav.Published = published
	nav.UpdatedAt = now
	if published {
		nav.PublishedAt = &now
	} else {
		nav.PublishedAt = nil
	}
	updated, err := s.repo.Update(ctx, nav)
	if err != nil {
		return nil, err
	}
	logging.WithSite(s.logger, updated.SiteID).Info("navigation.visibility_changed",
		"navigation_id", updated.ID.String(), "published", published)
	s.invalidate(ctx, updated.SiteID)
	return updated, nil
}

// FindPublished returns (nil, nil) for missing or unpublished navigations.
func (s *service) FindPublished(ctx context.Context, id uuid.UUID) (*interfaces.PublishedNavigation, error) {
	nav, err := s.Get(ctx, id)
	if errors.Is(err, ErrNavigationNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !nav.Published {
		return nil, nil
	}
	view := nav.View()
	return &view, nil
}

func (s *service) ListPublished(ctx context.Context, siteID uuid.UUID) ([]interfaces.PublishedNavigation, error) {
	records, err := s.repo.ListBySite(ctx, siteID, true)
	if err != nil {
		return nil, err
	}
	out := make([]interfaces.PublishedNavigation, 0, len(records))
	for _, record := range records {
		out = append(out, record.View())
	}
	return out, nil
}

func (s *service) invalidate(ctx context.Context, siteID uuid.UUID) {
	for _, invalidator := range s.invalidators {
		if err := invalidator.Invalidate(ctx, siteID); err != nil {
			logging.WithSite(s.logger, siteID).Warn("navigation.invalidate_failed", "error", err)
		}
	}
}
