package themes

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TokenTree is the nested design-token map of a theme. Leaves are scalars;
// string leaves may alias other paths (see internal/tokens).
type TokenTree map[string]any

// Theme is a named token set owned by a site, or global when SiteID is nil.
// At most one theme per scope is active.
type Theme struct {
	bun.BaseModel `bun:"table:themes,alias:t"`

	ID          uuid.UUID `bun:",pk,type:uuid" json:"id"`
	SiteID      uuid.UUID `bun:"site_id,type:uuid,nullzero" json:"site_id,omitempty"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description *string   `bun:"description" json:"description,omitempty"`
	Version     string    `bun:"version,notnull" json:"version"`
	Author      *string   `bun:"author" json:"author,omitempty"`
	IsActive    bool      `bun:"is_active,notnull,default:false" json:"is_active"`
	Tokens      TokenTree `bun:"tokens,type:jsonb" json:"tokens"`
	CreatedAt   time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Global reports whether the theme belongs to the global scope.
func (t *Theme) Global() bool {
	return t == nil || t.SiteID == uuid.Nil
}

// Summary is the reduced view of an active theme embedded in page metadata.
type Summary struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Version string    `json:"version"`
}

// Summarize returns nil for a nil theme.
func Summarize(theme *Theme) *Summary {
	if theme == nil {
		return nil
	}
	return &Summary{ID: theme.ID, Name: theme.Name, Version: theme.Version}
}
