package pages

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const pagesNamespace = "pages"

func NewFragmentRepository(db *bun.DB) repository.Repository[*Fragment] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Fragment]{
		NewRecord:          func() *Fragment { return &Fragment{} },
		GetID:              func(f *Fragment) uuid.UUID { return f.ID },
		SetID:              func(f *Fragment, id uuid.UUID) { f.ID = id },
		GetIdentifier:      func() string { return "name" },
		GetIdentifierValue: func(f *Fragment) string { return f.Name },
	})
}

func NewLayoutRepository(db *bun.DB) repository.Repository[*Layout] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Layout]{
		NewRecord:          func() *Layout { return &Layout{} },
		GetID:              func(l *Layout) uuid.UUID { return l.ID },
		SetID:              func(l *Layout, id uuid.UUID) { l.ID = id },
		GetIdentifier:      func() string { return "name" },
		GetIdentifierValue: func(l *Layout) string { return l.Name },
	})
}

func NewPageRepository(db *bun.DB) repository.Repository[*Page] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Page]{
		NewRecord:          func() *Page { return &Page{} },
		GetID:              func(p *Page) uuid.UUID { return p.ID },
		SetID:              func(p *Page, id uuid.UUID) { p.ID = id },
		GetIdentifier:      func() string { return "slug" },
		GetIdentifierValue: func(p *Page) string { return p.Slug },
	})
}

// BunRepository implements Repository with bun. Id lookups go through the
// optional cache; scoped listings always hit the database.
type BunRepository struct {
	db           *bun.DB
	fragments    repository.Repository[*Fragment]
	layouts      repository.Repository[*Layout]
	pages        repository.Repository[*Page]
	rawFragments repository.Repository[*Fragment]
	rawLayouts   repository.Repository[*Layout]
	rawPages     repository.Repository[*Page]
	cacheService cache.CacheService
	cachePrefix  string
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	r := &BunRepository{
		db:           db,
		rawFragments: NewFragmentRepository(db),
		rawLayouts:   NewLayoutRepository(db),
		rawPages:     NewPageRepository(db),
	}
	r.fragments = wrapWithCache(r.rawFragments, cacheService, serializer)
	r.layouts = wrapWithCache(r.rawLayouts, cacheService, serializer)
	r.pages = wrapWithCache(r.rawPages, cacheService, serializer)
	if cacheService != nil && serializer != nil {
		r.cacheService = cacheService
		r.cachePrefix = pagesNamespace + cache.KeySeparator
	}
	return r
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, serializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || serializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, serializer)
}

func (r *BunRepository) SaveFragment(ctx context.Context, fragment *Fragment) error {
	_, err := r.rawFragments.GetByID(ctx, fragment.ID.String())
	switch {
	case err == nil:
		_, err = r.fragments.Update(ctx, fragment)
	case isDatabaseNotFound(err):
		_, err = r.fragments.Create(ctx, fragment)
	}
	if err != nil {
		return mapRepositoryError(err, "fragment", fragment.ID.String())
	}
	return r.InvalidateCache(ctx)
}

func (r *BunRepository) GetFragment(ctx context.Context, id uuid.UUID) (*Fragment, error) {
	record, err := r.fragments.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "fragment", id.String())
	}
	return record, nil
}

func (r *BunRepository) ListFragments(ctx context.Context, siteID uuid.UUID, kind FragmentKind) ([]*Fragment, error) {
	records, _, err := r.rawFragments.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("?TableAlias.site_id = ?", siteID)
		if kind != "" {
			q = q.Where("?TableAlias.kind = ?", kind)
		}
		return q.Order("name ASC", "id ASC")
	}))
	if err != nil {
		return nil, mapRepositoryError(err, "fragment", siteID.String())
	}
	return records, nil
}

// SaveLayout clears the default flag of the site's other layouts in the same
// transaction when layout is the default.
func (r *BunRepository) SaveLayout(ctx context.Context, layout *Layout) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if layout.Default {
			if _, err := tx.NewUpdate().
				Model((*Layout)(nil)).
				Set("is_default = ?", false).
				Where("site_id = ?", layout.SiteID).
				Where("id <> ?", layout.ID).
				Exec(ctx); err != nil {
				return fmt.Errorf("clear default layouts: %w", err)
			}
		}
		exists, err := tx.NewSelect().Model((*Layout)(nil)).Where("id = ?", layout.ID).Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			_, err = tx.NewUpdate().Model(layout).WherePK().Exec(ctx)
			return err
		}
		_, err = tx.NewInsert().Model(layout).Exec(ctx)
		return err
	})
	if err != nil {
		return mapRepositoryError(err, "layout", layout.ID.String())
	}
	return r.InvalidateCache(ctx)
}

func (r *BunRepository) GetLayout(ctx context.Context, id uuid.UUID) (*Layout, error) {
	record, err := r.layouts.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "layout", id.String())
	}
	return record, nil
}

func (r *BunRepository) ListLayouts(ctx context.Context, siteID uuid.UUID) ([]*Layout, error) {
	records, _, err := r.rawLayouts.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.site_id = ?", siteID).Order("name ASC", "id ASC")
	}))
	if err != nil {
		return nil, mapRepositoryError(err, "layout", siteID.String())
	}
	return records, nil
}

func (r *BunRepository) SavePage(ctx context.Context, page *Page) error {
	_, err := r.rawPages.GetByID(ctx, page.ID.String())
	switch {
	case err == nil:
		_, err = r.pages.Update(ctx, page)
	case isDatabaseNotFound(err):
		_, err = r.pages.Create(ctx, page)
	}
	if err != nil {
		return mapRepositoryError(err, "page", page.ID.String())
	}
	return r.InvalidateCache(ctx)
}

func (r *BunRepository) GetPage(ctx context.Context, id uuid.UUID) (*Page, error) {
	record, err := r.pages.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "page", id.String())
	}
	return record, nil
}

func (r *BunRepository) GetPageBySlug(ctx context.Context, siteID uuid.UUID, slug string) (*Page, error) {
	records, _, err := r.rawPages.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.site_id = ?", siteID).Where("?TableAlias.slug = ?", slug)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "page", slug)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "page", Key: slug}
	}
	return records[0], nil
}

// InvalidateCache drops cached reads of every pages model.
func (r *BunRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func isDatabaseNotFound(err error) bool {
	return goerrors.IsCategory(err, repository.CategoryDatabaseNotFound)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if isDatabaseNotFound(err) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
