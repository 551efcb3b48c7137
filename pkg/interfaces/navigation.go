package interfaces

import (
	"context"

	"github.com/google/uuid"
)

// PublishedNavigation is the view of a navigation menu embedded into compiled
// documents.
type PublishedNavigation struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Structure []any     `json:"structure"`
}

// NavigationProvider resolves a single published navigation. Implementations
// return (nil, nil) when the navigation is missing or not published.
type NavigationProvider interface {
	FindPublished(ctx context.Context, id uuid.UUID) (*PublishedNavigation, error)
}

// NavigationLister lists every published navigation of a site.
type NavigationLister interface {
	ListPublished(ctx context.Context, siteID uuid.UUID) ([]PublishedNavigation, error)
}
