package themes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const themeNamespace = "theme"

// NewThemeRepository builds the generic go-repository-bun repository for themes.
func NewThemeRepository(db *bun.DB) repository.Repository[*Theme] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Theme]{
		NewRecord:          func() *Theme { return &Theme{} },
		GetID:              func(theme *Theme) uuid.UUID { return theme.ID },
		SetID:              func(theme *Theme, id uuid.UUID) { theme.ID = id },
		GetIdentifier:      func() string { return "name" },
		GetIdentifierValue: func(theme *Theme) string { return theme.Name },
	})
}

// BunThemeRepository implements ThemeRepository on bun with optional caching.
type BunThemeRepository struct {
	db   *bun.DB
	repo repository.Repository[*Theme]
	// scoped queries are built from closures and always go to the database
	raw          repository.Repository[*Theme]
	cacheService cache.CacheService
	cachePrefix  string
}

func NewBunThemeRepository(db *bun.DB) *BunThemeRepository {
	return NewBunThemeRepositoryWithCache(db, nil, nil)
}

func NewBunThemeRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunThemeRepository {
	base := NewThemeRepository(db)
	out := &BunThemeRepository{db: db, raw: base}
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		out.cacheService = cacheService
		out.cachePrefix = themeNamespace + cache.KeySeparator
	}
	out.repo = base
	return out
}

func (r *BunThemeRepository) Create(ctx context.Context, theme *Theme) (*Theme, error) {
	return r.repo.Create(ctx, theme)
}

func (r *BunThemeRepository) Update(ctx context.Context, theme *Theme) (*Theme, error) {
	record, err := r.repo.Update(ctx, theme)
	if err != nil {
		return nil, mapRepositoryError(err, "theme", theme.ID.String())
	}
	return record, nil
}

func (r *BunThemeRepository) GetByID(ctx context.Context, id uuid.UUID) (*Theme, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "theme", id.String())
	}
	return record, nil
}

func (r *BunThemeRepository) GetByName(ctx context.Context, siteID uuid.UUID, name string) (*Theme, error) {
	records, _, err := r.raw.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return whereScope(q, siteID).Where("?TableAlias.name = ?", name)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "theme", Key: name}
	}
	return records[0], nil
}

func (r *BunThemeRepository) ListByScope(ctx context.Context, siteID uuid.UUID) ([]*Theme, error) {
	records, _, err := r.raw.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return whereScope(q, siteID).Order("name ASC", "id ASC")
	}))
	return records, err
}

func (r *BunThemeRepository) GetActive(ctx context.Context, siteID uuid.UUID) (*Theme, error) {
	records, _, err := r.raw.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return whereScope(q, siteID).Where("?TableAlias.is_active = ?", true)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "active theme", Key: siteID.String()}
	}
	return records[0], nil
}

// Activate flips the active flag inside one transaction: every other active
// theme of the same scope is cleared before the target is set.
func (r *BunThemeRepository) Activate(ctx context.Context, id uuid.UUID, at time.Time) (*Theme, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		target := new(Theme)
		if err := tx.NewSelect().Model(target).Where("?TableAlias.id = ?", id).Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return &NotFoundError{Resource: "theme", Key: id.String()}
			}
			return fmt.Errorf("load theme: %w", err)
		}

		siblings := tx.NewUpdate().
			Model((*Theme)(nil)).
			Set("is_active = ?", false).
			Set("updated_at = ?", at).
			Where("id <> ?", id).
			Where("is_active = ?", true)
		if target.SiteID == uuid.Nil {
			siblings = siblings.Where("site_id IS NULL")
		} else {
			siblings = siblings.Where("site_id = ?", target.SiteID)
		}
		if _, err := siblings.Exec(ctx); err != nil {
			return fmt.Errorf("deactivate siblings: %w", err)
		}

		if _, err := tx.NewUpdate().
			Model((*Theme)(nil)).
			Set("is_active = ?", true).
			Set("updated_at = ?", at).
			Where("id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("activate theme: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// InvalidateCache drops cached theme reads. Writes issued outside the cached
// repository (the activation transaction) call it.
func (r *BunThemeRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func whereScope(q *bun.SelectQuery, siteID uuid.UUID) *bun.SelectQuery {
	if siteID == uuid.Nil {
		return q.Where("?TableAlias.site_id IS NULL")
	}
	return q.Where("?TableAlias.site_id = ?", siteID)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
