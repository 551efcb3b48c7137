// Package components models the editor's component tree: a closed set of
// node kinds and a shared traversal over content arrays, zones and slots.
package components

import "strings"

// Kind is the closed set of component types the pipeline understands.
type Kind int

const (
	KindUnknown Kind = iota
	KindContainer
	KindSection
	KindColumns
	KindGrid
	KindHeading
	KindText
	KindLink
	KindRichText
	KindButton
	KindImage
	KindSpacer
	KindDivider
	KindNavigation
)

// Kinds lists every known kind, KindUnknown excluded.
var Kinds = []Kind{
	KindContainer, KindSection, KindColumns, KindGrid,
	KindHeading, KindText, KindLink, KindRichText,
	KindButton, KindImage, KindSpacer, KindDivider, KindNavigation,
}

func (k Kind) String() string {
	switch k {
	case KindContainer:
		return "container"
	case KindSection:
		return "section"
	case KindColumns:
		return "columns"
	case KindGrid:
		return "grid"
	case KindHeading:
		return "heading"
	case KindText:
		return "text"
	case KindLink:
		return "link"
	case KindRichText:
		return "rich-text"
	case KindButton:
		return "button"
	case KindImage:
		return "image"
	case KindSpacer:
		return "spacer"
	case KindDivider:
		return "divider"
	case KindNavigation:
		return "navigation"
	case KindUnknown:
		return "unknown"
	}
	return "unknown"
}

var kindAliases = map[string]Kind{
	"container":  KindContainer,
	"box":        KindContainer,
	"flex":       KindContainer,
	"section":    KindSection,
	"columns":    KindColumns,
	"grid":       KindGrid,
	"heading":    KindHeading,
	"text":       KindText,
	"paragraph":  KindText,
	"link":       KindLink,
	"richtext":   KindRichText,
	"button":     KindButton,
	"image":      KindImage,
	"spacer":     KindSpacer,
	"divider":    KindDivider,
	"navigation": KindNavigation,
	"nav":        KindNavigation,
	"menu":       KindNavigation,
}

// ParseKind maps an editor type name to a Kind. Matching ignores case,
// dashes, underscores and spaces, so "RichText" and "rich-text" agree.
func ParseKind(name string) Kind {
	key := strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
	if kind, ok := kindAliases[key]; ok {
		return kind
	}
	return KindUnknown
}

// Traits describes which CSS rule families apply to a kind.
type Traits struct {
	Layout bool
	Text   bool
	// Hover allows a :hover block when a hover prop is set.
	Hover bool
	// NavLinks emits link colour rules for nested anchors.
	NavLinks bool
}

// Traits is exhaustive over Kind; unknown kinds produce no rules.
func (k Kind) Traits() Traits {
	switch k {
	case KindContainer, KindSection, KindColumns, KindGrid, KindImage, KindSpacer, KindDivider:
		return Traits{Layout: true}
	case KindHeading, KindText, KindRichText:
		return Traits{Layout: true, Text: true}
	case KindLink:
		return Traits{Layout: true, Text: true, Hover: true}
	case KindButton:
		return Traits{Layout: true, Text: true, Hover: true}
	case KindNavigation:
		return Traits{Layout: true, NavLinks: true}
	case KindUnknown:
		return Traits{}
	}
	return Traits{}
}
