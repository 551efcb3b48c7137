// Package pages stores the editor fragments, layouts and pages a site is
// built from and assembles them into compiler and stylesheet inputs.
package pages

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FragmentKind is the role of a stored component tree.
type FragmentKind string

const (
	FragmentPage     FragmentKind = "page"
	FragmentHeader   FragmentKind = "header"
	FragmentFooter   FragmentKind = "footer"
	FragmentTemplate FragmentKind = "template"
)

// ParseFragmentKind reports false for unknown kinds.
func ParseFragmentKind(value string) (FragmentKind, bool) {
	switch FragmentKind(value) {
	case FragmentPage, FragmentHeader, FragmentFooter, FragmentTemplate:
		return FragmentKind(value), true
	}
	return "", false
}

// Fragment is a stored editor document.
type Fragment struct {
	bun.BaseModel `bun:"table:page_fragments,alias:pf" json:"-"`

	ID      uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	SiteID  uuid.UUID      `bun:"site_id,notnull,type:uuid" json:"site_id"`
	Kind    FragmentKind   `bun:"kind,notnull" json:"kind"`
	Name    string         `bun:"name,notnull" json:"name"`
	Content []any          `bun:"content,type:jsonb" json:"content"`
	Zones   map[string]any `bun:"zones,type:jsonb" json:"zones,omitempty"`
	Root    map[string]any `bun:"root,type:jsonb" json:"root,omitempty"`
}

// Document returns the fragment as an editor document.
func (f *Fragment) Document() map[string]any {
	doc := map[string]any{"content": f.Content}
	if f.Content == nil {
		doc["content"] = []any{}
	}
	if len(f.Zones) > 0 {
		doc["zones"] = f.Zones
	}
	if f.Root != nil {
		doc["root"] = map[string]any{"props": f.Root}
	}
	return doc
}

// Layout pairs a default header and footer. One layout per site may be the
// default used for stylesheet generation.
type Layout struct {
	bun.BaseModel `bun:"table:page_layouts,alias:pl" json:"-"`

	ID       uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	SiteID   uuid.UUID  `bun:"site_id,notnull,type:uuid" json:"site_id"`
	Name     string     `bun:"name,notnull" json:"name"`
	HeaderID *uuid.UUID `bun:"header_id,type:uuid" json:"header_id,omitempty"`
	FooterID *uuid.UUID `bun:"footer_id,type:uuid" json:"footer_id,omitempty"`
	Default  bool       `bun:"is_default,notnull,default:false" json:"default"`
}

// Page is a routable document. HeaderID and FooterID override the layout.
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:p" json:"-"`

	ID         uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	SiteID     uuid.UUID  `bun:"site_id,notnull,type:uuid" json:"site_id"`
	Title      string     `bun:"title,notnull" json:"title"`
	Slug       string     `bun:"slug,notnull" json:"slug"`
	LayoutID   *uuid.UUID `bun:"layout_id,type:uuid" json:"layout_id,omitempty"`
	HeaderID   *uuid.UUID `bun:"header_id,type:uuid" json:"header_id,omitempty"`
	FooterID   *uuid.UUID `bun:"footer_id,type:uuid" json:"footer_id,omitempty"`
	FragmentID uuid.UUID  `bun:"fragment_id,notnull,type:uuid" json:"fragment_id"`
}

// NotFoundError is returned when a record cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}
