package settings

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/ridasaidd/byteforge-sub002/internal/logging"
	"github.com/ridasaidd/byteforge-sub002/pkg/interfaces"
)

var ErrRepositoryRequired = errors.New("settings: repository required")

// Invalidator drops derived data of a site after its settings change.
type Invalidator interface {
	Invalidate(ctx context.Context, siteID uuid.UUID) error
}

// Service reads and updates site settings. It implements
// interfaces.SettingsProvider.
type Service interface {
	interfaces.SettingsProvider
	Update(ctx context.Context, siteID uuid.UUID, values map[string]any) (Settings, error)
	Clear(ctx context.Context, siteID uuid.UUID) error
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

type service struct {
	repo         Repository
	invalidators []Invalidator
	logger       interfaces.Logger
	now          func() time.Time
}

func NewService(repo Repository, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrRepositoryRequired)
	}
	s := &service{repo: repo, logger: logging.NoOp(), now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Get returns ErrUnavailable when the site has no settings.
func (s *service) Get(ctx context.Context, siteID uuid.UUID) (map[string]any, error) {
	stored, err := s.repo.Get(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if stored.Values == nil {
		return map[string]any{}, nil
	}
	return stored.Values, nil
}

func (s *service) Update(ctx context.Context, siteID uuid.UUID, values map[string]any) (Settings, error) {
	if err := validation.Validate(siteID, validation.By(requireSite)); err != nil {
		return Settings{}, ErrSiteRequired
	}
	if err := validation.Validate(values, validation.By(validKeys)); err != nil {
		return Settings{}, err
	}
	stored, err := s.repo.Upsert(ctx, Settings{SiteID: siteID, Values: values, UpdatedAt: s.now()})
	if err != nil {
		return Settings{}, err
	}
	s.invalidate(ctx, siteID)
	return stored, nil
}

func (s *service) Clear(ctx context.Context, siteID uuid.UUID) error {
	if err := s.repo.Delete(ctx, siteID); err != nil {
		return err
	}
	s.invalidate(ctx, siteID)
	return nil
}

func (s *service) invalidate(ctx context.Context, siteID uuid.UUID) {
	for _, invalidator := range s.invalidators {
		if err := invalidator.Invalidate(ctx, siteID); err != nil {
			logging.WithSite(s.logger, siteID).Warn("settings.invalidate_failed", "error", err)
		}
	}
}

func requireSite(value any) error {
	if id, _ := value.(uuid.UUID); id == uuid.Nil {
		return ErrSiteRequired
	}
	return nil
}

func validKeys(value any) error {
	values, _ := value.(map[string]any)
	for key := range values {
		if strings.TrimSpace(key) == "" {
			return validation.NewError("settings.invalid_key", "setting keys must not be blank")
		}
	}
	return nil
}
