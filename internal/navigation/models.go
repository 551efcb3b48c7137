// Package navigation stores site navigation menus and serves the published
// ones to the compiler and the metadata gatherer.
package navigation

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/ridasaidd/byteforge-sub002/pkg/interfaces"
)

// Navigation is a named menu of a site. Structure holds the editor's item
// tree as stored.
type Navigation struct {
	bun.BaseModel `bun:"table:navigations,alias:n"`

	ID          uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	SiteID      uuid.UUID  `bun:"site_id,notnull,type:uuid" json:"site_id"`
	Name        string     `bun:"name,notnull" json:"name"`
	Structure   []any      `bun:"structure,type:jsonb" json:"structure"`
	Published   bool       `bun:"is_published,notnull,default:false" json:"published"`
	PublishedAt *time.Time `bun:"published_at,nullzero" json:"published_at,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// View returns the embedded representation of the navigation.
func (n *Navigation) View() interfaces.PublishedNavigation {
	structure := n.Structure
	if structure == nil {
		structure = []any{}
	}
	return interfaces.PublishedNavigation{ID: n.ID, Name: n.Name, Structure: structure}
}

func cloneNavigation(n *Navigation) *Navigation {
	if n == nil {
		return nil
	}
	out := *n
	if n.Structure != nil {
		out.Structure = cloneSlice(n.Structure)
	}
	if n.PublishedAt != nil {
		at := *n.PublishedAt
		out.PublishedAt = &at
	}
	return &out
}

func cloneSlice(items []any) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = cloneValue(item)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, inner := range typed {
			out[key] = cloneValue(inner)
		}
		return out
	case []any:
		return cloneSlice(typed)
	default:
		return typed
	}
}
