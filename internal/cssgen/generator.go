package cssgen

import (
	"strings"

	"github.com/ridasaidd/byteforge-sub002/internal/components"
	"github.com/ridasaidd/byteforge-sub002/internal/sections"
	"github.com/ridasaidd/byteforge-sub002/internal/tokens"
)

// Collect walks nodes in document order and returns the rules of every
// node, zones and slots included.
func Collect(nodes []*components.Node, theme map[string]any) []Rule {
	var rules []Rule
	components.Walk(nodes, func(n *components.Node, _ int) bool {
		rules = append(rules, BuildRules(n, theme)...)
		return true
	})
	return rules
}

// Generate renders the stylesheet of a component tree. Output is byte
// identical for identical input.
func Generate(nodes []*components.Node, theme map[string]any) string {
	return Render(Collect(nodes, theme))
}

// GenerateVariables renders every resolvable token of theme as a custom
// property on :root. An empty theme renders an empty string.
func GenerateVariables(theme map[string]any) string {
	flat := tokens.Flatten(theme)
	if len(flat) == 0 {
		return ""
	}
	decls := make([]Declaration, 0, len(flat))
	for _, token := range flat {
		decls = append(decls, Declaration{Property: tokens.VarName(token.Path), Value: token.CSS()})
	}
	return Render([]Rule{{Selector: ":root", Declarations: decls}})
}

// Template is a named page template tree.
type Template struct {
	Label string
	Nodes []*components.Node
}

// SectionsInput is everything needed to regenerate the sections of a theme.
type SectionsInput struct {
	Theme     map[string]any
	Header    []*components.Node
	Footer    []*components.Node
	Templates []Template
}

// GenerateSections builds the variables, header and footer sections and one
// template section per template. Templates whose label does not normalise
// to a section name are skipped.
func GenerateSections(input SectionsInput) []sections.Section {
	out := []sections.Section{
		{Name: sections.Variables, CSS: GenerateVariables(input.Theme)},
		{Name: sections.Header, CSS: Generate(input.Header, input.Theme)},
		{Name: sections.Footer, CSS: Generate(input.Footer, input.Theme)},
	}
	seen := map[string]struct{}{}
	for _, tpl := range input.Templates {
		name, err := sections.TemplateName(tpl.Label)
		if err != nil {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, sections.Section{Name: name, CSS: Generate(tpl.Nodes, input.Theme)})
	}
	return out
}

// Join concatenates CSS chunks with a blank line, skipping empty chunks.
func Join(chunks ...string) string {
	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		chunk = strings.TrimRight(chunk, "\n")
		if strings.TrimSpace(chunk) != "" {
			parts = append(parts, chunk)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}
