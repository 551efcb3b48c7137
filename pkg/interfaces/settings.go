package interfaces

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrSettingsUnavailable signals that a site has no settings record. Callers
// treat it as an absent value rather than a failure.
var ErrSettingsUnavailable = errors.New("settings: unavailable")

// SettingsProvider loads the key/value settings of a site.
type SettingsProvider interface {
	Get(ctx context.Context, siteID uuid.UUID) (map[string]any, error)
}
