// Package settings stores per-site key/value settings and exposes them to
// the metadata gatherer.
package settings

import (
	"context"
	"errors"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/ridasaidd/byteforge-sub002/pkg/interfaces"
)

// ErrUnavailable indicates that a site has no settings record yet. It is the
// shared interfaces sentinel so the gatherer can recognise it.
var ErrUnavailable = interfaces.ErrSettingsUnavailable

var ErrSiteRequired = errors.New("settings: site id required")

// Settings are the values of one site.
type Settings struct {
	SiteID    uuid.UUID
	Values    map[string]any
	UpdatedAt time.Time
}

func (s Settings) clone() Settings {
	out := s
	if s.Values != nil {
		out.Values = maps.Clone(s.Values)
	}
	return out
}

// Repository persists site settings and emits change notifications.
type Repository interface {
	Get(ctx context.Context, siteID uuid.UUID) (Settings, error)
	Upsert(ctx context.Context, settings Settings) (Settings, error)
	Delete(ctx context.Context, siteID uuid.UUID) error
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}

type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// ChangeEvent reports a settings mutation of one site.
type ChangeEvent struct {
	Type   ChangeType
	SiteID uuid.UUID
}
