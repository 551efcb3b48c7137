// Package cssgen builds static CSS from component trees. The same rule
// builders serve the live preview and the batch publish path, so both produce
// identical output for identical input.
package cssgen

import (
	"strings"

	"github.com/ridasaidd/byteforge-sub002/internal/tokens"
)

// Declaration is one "property: value" pair.
type Declaration struct {
	Property string
	Value    string
}

// Rule is a selector with its declarations, optionally wrapped in a media
// query.
type Rule struct {
	Media        string
	Selector     string
	Declarations []Declaration
}

var mediaQueries = map[tokens.Breakpoint]string{
	tokens.Mobile:  "",
	tokens.Tablet:  "@media (min-width: 768px)",
	tokens.Desktop: "@media (min-width: 1024px)",
}

// MediaQuery returns the media query of a breakpoint; mobile has none.
func MediaQuery(bp tokens.Breakpoint) string {
	return mediaQueries[bp]
}

// Render writes rules in order. Rules without declarations are dropped.
func Render(rules []Rule) string {
	var b strings.Builder
	first := true
	for _, rule := range rules {
		if len(rule.Declarations) == 0 {
			continue
		}
		if !first {
			b.WriteByte('\n')
		}
		first = false
		indent := ""
		if rule.Media != "" {
			b.WriteString(rule.Media)
			b.WriteString(" {\n")
			indent = "  "
		}
		b.WriteString(indent)
		b.WriteString(rule.Selector)
		b.WriteString(" {\n")
		for _, decl := range rule.Declarations {
			b.WriteString(indent)
			b.WriteString("  ")
			b.WriteString(decl.Property)
			b.WriteString(": ")
			b.WriteString(decl.Value)
			b.WriteString(";\n")
		}
		b.WriteString(indent)
		b.WriteString("}\n")
		if rule.Media != "" {
			b.WriteString("}\n")
		}
	}
	return b.String()
}

// ClassName returns the selector of a node: ".<kind>-<id>" with every
// character outside [A-Za-z0-9_-] replaced by a dash.
func ClassName(kind, id string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, id)
	return "." + kind + "-" + clean
}
