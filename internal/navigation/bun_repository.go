package navigation

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const navigationNamespace = "navigation"

func NewNavigationRepository(db *bun.DB) repository.Repository[*Navigation] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Navigation]{
		NewRecord:          func() *Navigation { return &Navigation{} },
		GetID:              func(nav *Navigation) uuid.UUID { return nav.ID },
		SetID:              func(nav *Navigation, id uuid.UUID) { nav.ID = id },
		GetIdentifier:      func() string { return "name" },
		GetIdentifierValue: func(nav *Navigation) string { return nav.Name },
	})
}

// BunNavigationRepository implements NavigationRepository with optional
// caching of id lookups.
type BunNavigationRepository struct {
	repo         repository.Repository[*Navigation]
	raw          repository.Repository[*Navigation]
	cacheService cache.CacheService
	cachePrefix  string
}

func NewBunNavigationRepository(db *bun.DB) *BunNavigationRepository {
	return NewBunNavigationRepositoryWithCache(db, nil, nil)
}

func NewBunNavigationRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunNavigationRepository {
	base := NewNavigationRepository(db)
	out := &BunNavigationRepository{raw: base}
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		out.cacheService = cacheService
		out.cachePrefix = navigationNamespace + cache.KeySeparator
	}
	out.repo = base
	return out
}

func (r *BunNavigationRepository) Create(ctx context.Context, nav *Navigation) (*Navigation, error) {
	return r.repo.Create(ctx, nav)
}

func (r *BunNavigationRepository) Update(ctx context.Context, nav *Navigation) (*Navigation, error) {
	record, err := r.repo.Update(ctx, nav)
	if err != nil {
		return nil, mapRepositoryError(err, "navigation", nav.ID.String())
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunNavigationRepository) GetByID(ctx context.Context, id uuid.UUID) (*Navigation, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "navigation", id.String())
	}
	return record, nil
}

func (r *BunNavigationRepository) ListBySite(ctx context.Context, siteID uuid.UUID, publishedOnly bool) ([]*Navigation, error) {
	records, _, err := r.raw.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("?TableAlias.site_id = ?", siteID)
		if publishedOnly {
			q = q.Where("?TableAlias.is_published = ?", true)
		}
		return q.Order("name ASC", "id ASC")
	}))
	return records, err
}

func (r *BunNavigationRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
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
