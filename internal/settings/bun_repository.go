package settings

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record is the site_settings row.
type Record struct {
	bun.BaseModel `bun:"table:site_settings,alias:ss"`

	SiteID    uuid.UUID      `bun:"site_id,pk,type:uuid"`
	Data      map[string]any `bun:"data,type:jsonb"`
	UpdatedAt time.Time      `bun:"updated_at,notnull"`
}

// BunRepository persists settings with bun.
type BunRepository struct {
	db          *bun.DB
	now         func() time.Time
	broadcaster *changeBroadcaster
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{
		db:          db,
		now:         func() time.Time { return time.Now().UTC() },
		broadcaster: newChangeBroadcaster(),
	}
}

func (r *BunRepository) Get(ctx context.Context, siteID uuid.UUID) (Settings, error) {
	if r.db == nil {
		return Settings{}, errors.New("settings: bun repository requires a database")
	}
	var record Record
	if err := r.db.NewSelect().Model(&record).Where("?TableAlias.site_id = ?", siteID).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Settings{}, ErrUnavailable
		}
		return Settings{}, err
	}
	return recordToSettings(&record), nil
}

func (r *BunRepository) Upsert(ctx context.Context, settings Settings) (Settings, error) {
	if r.db == nil {
		return Settings{}, errors.New("settings: bun repository requires a database")
	}
	if settings.SiteID == uuid.Nil {
		return Settings{}, ErrSiteRequired
	}

	created := false
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*Record)(nil)).Where("site_id = ?", settings.SiteID).Exists(ctx)
		if err != nil {
			return err
		}
		record := &Record{SiteID: settings.SiteID, Data: settings.Values, UpdatedAt: r.now()}
		if record.Data == nil {
			record.Data = map[string]any{}
		}
		if !exists {
			created = true
			_, err = tx.NewInsert().Model(record).Exec(ctx)
			return err
		}
		_, err = tx.NewUpdate().Model(record).Column("data", "updated_at").WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return Settings{}, err
	}

	stored, err := r.Get(ctx, settings.SiteID)
	if err != nil {
		return Settings{}, err
	}
	changeType := ChangeUpdated
	if created {
		changeType = ChangeCreated
	}
	r.broadcaster.Broadcast(ChangeEvent{Type: changeType, SiteID: settings.SiteID})
	return stored, nil
}

func (r *BunRepository) Delete(ctx context.Context, siteID uuid.UUID) error {
	if r.db == nil {
		return errors.New("settings: bun repository requires a database")
	}
	res, err := r.db.NewDelete().Model((*Record)(nil)).Where("site_id = ?", siteID).Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrUnavailable
	}
	r.broadcaster.Broadcast(ChangeEvent{Type: ChangeDeleted, SiteID: siteID})
	return nil
}

func (r *BunRepository) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return r.broadcaster.Subscribe(ctx)
}

func recordToSettings(record *Record) Settings {
	return Settings{SiteID: record.SiteID, Values: record.Data, UpdatedAt: record.UpdatedAt}
}
