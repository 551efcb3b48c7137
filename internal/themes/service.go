package themes

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

// Service manages themes and their activation per scope.
type Service interface {
	RegisterTheme(ctx context.Context, input RegisterThemeInput) (*Theme, error)
	GetTheme(ctx context.Context, id uuid.UUID) (*Theme, error)
	GetThemeByName(ctx context.Context, siteID uuid.UUID, name string) (*Theme, error)
	ListThemes(ctx context.Context, siteID uuid.UUID) ([]*Theme, error)

	// ActiveTheme returns the active theme of the site, falling back to the
	// active global theme. ErrNoActiveTheme when neither exists.
	ActiveTheme(ctx context.Context, siteID uuid.UUID) (*Theme, error)
	ActivateTheme(ctx context.Context, id uuid.UUID) (*Theme, error)
	DeactivateTheme(ctx context.Context, id uuid.UUID) (*Theme, error)
	UpdateTokens(ctx context.Context, id uuid.UUID, tokens map[string]any) (*Theme, error)
	ImportManifest(ctx context.Context, siteID uuid.UUID, manifest *Manifest) (*Theme, error)
}

// RegisterThemeInput describes a new theme. SiteID uuid.Nil registers a
// global theme.
type RegisterThemeInput struct {
	SiteID      uuid.UUID
	Name        string
	Description *string
	Version     string
	Author      *string
	Tokens      map[string]any
}

func (in RegisterThemeInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrThemeNameRequired
	}
	if strings.TrimSpace(in.Version) == "" {
		return ErrThemeVersionRequired
	}
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Length(1, 120)),
		validation.Field(&in.Version, validation.Length(1, 40)),
		validation.Field(&in.Tokens, validation.By(validTokenKeys)),
	)
}

// validTokenKeys rejects empty keys and keys containing dots, which could
// never be addressed by a dotted path.
func validTokenKeys(value any) error {
	tree, _ := value.(map[string]any)
	var walk func(map[string]any) error
	walk = func(node map[string]any) error {
		for key, child := range node {
			if strings.TrimSpace(key) == "" || strings.Contains(key, ".") {
				return validation.NewError("themes.tokens.invalid_key", "token keys must be non-empty and must not contain dots")
			}
			if nested, ok := child.(map[string]any); ok {
				if err := walk(nested); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return walk(tree)
}

var (
	ErrThemeRepositoryRequired = errors.New("themes: theme repository required")
	ErrThemeNameRequired       = errors.New("themes: name required")
	ErrThemeVersionRequired    = errors.New("themes: version required")
	ErrThemeExists             = errors.New("themes: theme already exists")
	ErrThemeNotFound           = errors.New("themes: theme not found")
	ErrNoActiveTheme           = errors.New("themes: no active theme")
	ErrManifestRequired        = errors.New("themes: manifest required")
)

// IDGenerator produces unique identifiers.
type IDGenerator func() uuid.UUID

// ActivationHook runs after the active theme of a scope changed.
type ActivationHook func(ctx context.Context, theme *Theme)

type ServiceOption func(*service)

func WithThemeIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
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

// WithActivationHook registers a hook called after activation, deactivation
// and token updates of an active theme.
func WithActivationHook(hook ActivationHook) ServiceOption {
	return func(s *service) {
		if hook != nil {
			s.hooks = append(s.hooks, hook)
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

type service struct {
	themes ThemeRepository
	id     IDGenerator
	now    func() time.Time
	hooks  []ActivationHook
	logger interfaces.Logger
}

func NewService(repo ThemeRepository, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrThemeRepositoryRequired)
	}
	s := &service{
		themes: repo,
		id:     uuid.New,
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) RegisterTheme(ctx context.Context, input RegisterThemeInput) (*Theme, error) {
	return s.register(ctx, input, s.id())
}

func (s *service) register(ctx context.Context, input RegisterThemeInput, id uuid.UUID) (*Theme, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)

	if existing, err := s.themes.GetByName(ctx, input.SiteID, name); err == nil && existing != nil {
		return nil, ErrThemeExists
	} else if err != nil && !isNotFound(err) {
		return nil, err
	}

	now := s.now().UTC()
	record := &Theme{
		ID:          id,
		SiteID:      input.SiteID,
		Name:        name,
		Description: cloneString(input.Description),
		Version:     strings.TrimSpace(input.Version),
		Author:      cloneString(input.Author),
		Tokens:      normalizeTokens(input.Tokens),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.themes.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("theme.registered", "theme_id", created.ID, "name", created.Name)
	return cloneTheme(created), nil
}

func (s *service) GetTheme(ctx context.Context, id uuid.UUID) (*Theme, error) {
	if id == uuid.Nil {
		return nil, ErrThemeNotFound
	}
	theme, err := s.themes.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, ErrThemeNotFound)
	}
	return cloneTheme(theme), nil
}

func (s *service) GetThemeByName(ctx context.Context, siteID uuid.UUID, name string) (*Theme, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrThemeNotFound
	}
	theme, err := s.themes.GetByName(ctx, siteID, name)
	if err != nil {
		return nil, translateRepoError(err, ErrThemeNotFound)
	}
	return cloneTheme(theme), nil
}

func (s *service) ListThemes(ctx context.Context, siteID uuid.UUID) ([]*Theme, error) {
	records, err := s.themes.ListByScope(ctx, siteID)
	if err != nil {
		return nil, err
	}
	return cloneThemes(records), nil
}

func (s *service) ActiveTheme(ctx context.Context, siteID uuid.UUID) (*Theme, error) {
	theme, err := s.themes.GetActive(ctx, siteID)
	if err == nil {
		return cloneTheme(theme), nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	if siteID == uuid.Nil {
		return nil, ErrNoActiveTheme
	}
	global, err := s.themes.GetActive(ctx, uuid.Nil)
	if err != nil {
		return nil, translateRepoError(err, ErrNoActiveTheme)
	}
	return cloneTheme(global), nil
}

func (s *service) ActivateTheme(ctx context.Context, id uuid.UUID) (*Theme, error) {
	activated, err := s.themes.Activate(ctx, id, s.now().UTC())
	if err != nil {
		return nil, translateRepoError(err, ErrThemeNotFound)
	}
	s.logger.Info("theme.activated", "theme_id", activated.ID, "site_id", activated.SiteID)
	s.notify(ctx, activated)
	return cloneTheme(activated), nil
}

func (s *service) DeactivateTheme(ctx context.Context, id uuid.UUID) (*Theme, error) {
	theme, err := s.themes.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, ErrThemeNotFound)
	}
	if !theme.IsActive {
		return cloneTheme(theme), nil
	}
	theme.IsActive = false
	theme.UpdatedAt = s.now().UTC()
	updated, err := s.themes.Update(ctx, theme)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, updated)
	return cloneTheme(updated), nil
}

func (s *service) UpdateTokens(ctx context.Context, id uuid.UUID, tokens map[string]any) (*Theme, error) {
	if err := validTokenKeys(tokens); err != nil {
		return nil, err
	}
	theme, err := s.themes.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, ErrThemeNotFound)
	}
	theme.Tokens = normalizeTokens(tokens)
	theme.UpdatedAt = s.now().UTC()
	updated, err := s.themes.Update(ctx, theme)
	if err != nil {
		return nil, err
	}
	if updated.IsActive {
		s.notify(ctx, updated)
	}
	return cloneTheme(updated), nil
}

// ImportManifest registers or refreshes the theme described by manifest. The
// id is derived from scope and name so repeated imports hit the same record.
func (s *service) ImportManifest(ctx context.Context, siteID uuid.UUID, manifest *Manifest) (*Theme, error) {
	input, err := ManifestToThemeInput(siteID, manifest)
	if err != nil {
		return nil, err
	}
	existing, err := s.themes.GetByName(ctx, siteID, strings.TrimSpace(input.Name))
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if existing == nil {
		return s.register(ctx, input, identity.ThemeUUID(siteID, input.Name))
	}
	existing.Version = strings.TrimSpace(input.Version)
	existing.Description = cloneString(input.Description)
	existing.Author = cloneString(input.Author)
	existing.Tokens = normalizeTokens(input.Tokens)
	existing.UpdatedAt = s.now().UTC()
	updated, err := s.themes.Update(ctx, existing)
	if err != nil {
		return nil, err
	}
	if updated.IsActive {
		s.notify(ctx, updated)
	}
	return cloneTheme(updated), nil
}

func (s *service) notify(ctx context.Context, theme *Theme) {
	for _, hook := range s.hooks {
		hook(ctx, cloneTheme(theme))
	}
}

func isNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func translateRepoError(err error, fallback error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return fallback
	}
	return err
}
