package cssgen

import (
	"strings"

	"github.com/ridasaidd/byteforge-sub002/internal/components"
	"github.com/ridasaidd/byteforge-sub002/internal/tokens"
)

type propMapping struct {
	prop     string
	property string
	color    bool
	box      bool
}

// Layout and text declarations are always emitted in this order.
var layoutProps = []propMapping{
	{prop: "display", property: "display"},
	{prop: "flexDirection", property: "flex-direction"},
	{prop: "justifyContent", property: "justify-content"},
	{prop: "alignItems", property: "align-items"},
	{prop: "gap", property: "gap"},
	{prop: "width", property: "width"},
	{prop: "maxWidth", property: "max-width"},
	{prop: "height", property: "height"},
	{prop: "minHeight", property: "min-height"},
	{prop: "padding", property: "padding", box: true},
	{prop: "margin", property: "margin", box: true},
	{prop: "borderWidth", property: "border-width"},
	{prop: "borderStyle", property: "border-style"},
	{prop: "borderColor", property: "border-color", color: true},
	{prop: "borderRadius", property: "border-radius"},
	{prop: "backgroundColor", property: "background-color", color: true},
	{prop: "boxShadow", property: "box-shadow"},
}

var textProps = []propMapping{
	{prop: "textAlign", property: "text-align"},
	{prop: "color", property: "color", color: true},
	{prop: "fontFamily", property: "font-family"},
	{prop: "fontWeight", property: "font-weight"},
	{prop: "lineHeight", property: "line-height"},
	{prop: "letterSpacing", property: "letter-spacing"},
	{prop: "textTransform", property: "text-transform"},
	{prop: "textDecoration", property: "text-decoration"},
	{prop: "fontSize", property: "font-size"},
}

var hoverProps = []propMapping{
	{prop: "hoverColor", property: "color", color: true},
	{prop: "hoverBackgroundColor", property: "background-color", color: true},
	{prop: "hoverBorderColor", property: "border-color", color: true},
}

var navLinkProps = []propMapping{
	{prop: "linkColor", property: "color", color: true},
	{prop: "linkFontWeight", property: "font-weight"},
}

var navLinkHoverProps = []propMapping{
	{prop: "linkHoverColor", property: "color", color: true},
}

// RuleBuilder produces the rules of one node.
type RuleBuilder func(node *components.Node, theme map[string]any) []Rule

// builders maps every kind to its rule builder.
var builders = func() map[components.Kind]RuleBuilder {
	out := make(map[components.Kind]RuleBuilder, len(components.Kinds))
	for _, kind := range components.Kinds {
		out[kind] = buildForTraits(kind.Traits())
	}
	return out
}()

// BuildRules returns the rules of a single node. Nodes of unknown kind or
// without an id produce none.
func BuildRules(node *components.Node, theme map[string]any) []Rule {
	if node == nil || strings.TrimSpace(node.ID) == "" {
		return nil
	}
	build, ok := builders[node.Kind]
	if !ok {
		return nil
	}
	return build(node, theme)
}

func buildForTraits(traits Traits) RuleBuilder {
	return func(node *components.Node, theme map[string]any) []Rule {
		selector := ClassName(node.Kind.String(), node.ID)
		var mappings []propMapping
		if traits.Layout {
			mappings = append(mappings, layoutProps...)
		}
		if traits.Text {
			mappings = append(mappings, textProps...)
		}

		perBreakpoint := declarationsByBreakpoint(node.Props, mappings, theme)
		rules := []Rule{{Selector: selector, Declarations: perBreakpoint[tokens.Mobile]}}

		if traits.Hover {
			rules = append(rules, Rule{
				Selector:     selector + ":hover",
				Declarations: declarationsByBreakpoint(node.Props, hoverProps, theme)[tokens.Mobile],
			})
		}
		if traits.NavLinks {
			rules = append(rules,
				Rule{Selector: selector + " a", Declarations: declarationsByBreakpoint(node.Props, navLinkProps, theme)[tokens.Mobile]},
				Rule{Selector: selector + " a:hover", Declarations: declarationsByBreakpoint(node.Props, navLinkHoverProps, theme)[tokens.Mobile]},
			)
		}
		for _, bp := range tokens.Breakpoints[1:] {
			rules = append(rules, Rule{
				Media:        MediaQuery(bp),
				Selector:     selector,
				Declarations: perBreakpoint[bp],
			})
		}
		return rules
	}
}

// Traits aliases the component traits so builders can be keyed by them.
type Traits = components.Traits

func declarationsByBreakpoint(props map[string]any, mappings []propMapping, theme map[string]any) map[tokens.Breakpoint][]Declaration {
	out := map[tokens.Breakpoint][]Declaration{}
	for _, m := range mappings {
		raw, ok := props[m.prop]
		if !ok {
			continue
		}
		if m.box {
			raw = normalizeBox(raw, theme)
		}
		value, ok := tokens.ParseStyleValue(raw)
		if !ok {
			continue
		}
		for _, bp := range value.SetBreakpoints() {
			at, _ := value.At(bp)
			var css string
			var has bool
			if m.color {
				css, has = colorValue(props, m.prop, at, bp, theme)
			} else {
				css, has = at.CSS(theme)
			}
			if !has || css == "" {
				continue
			}
			out[bp] = append(out[bp], Declaration{Property: m.property, Value: css})
		}
	}
	return out
}

// colorValue applies colour precedence: an explicit literal colour, then the
// custom colour prop (custom<Prop>), then the theme lookup, then the CSS
// variable named after the theme path. The custom prop only applies to the
// base breakpoint.
func colorValue(props map[string]any, prop string, value tokens.StyleValue, bp tokens.Breakpoint, theme map[string]any) (string, bool) {
	if lit, ok := value.Literal(); ok && !tokens.IsTokenReference(lit) && !strings.EqualFold(lit, "custom") {
		return lit, true
	}
	if bp == tokens.Mobile {
		if custom, ok := props["custom"+strings.ToUpper(prop[:1])+prop[1:]].(string); ok && strings.TrimSpace(custom) != "" {
			return strings.TrimSpace(custom), true
		}
	}
	if lit, ok := value.Literal(); ok && strings.EqualFold(lit, "custom") {
		return "", false
	}
	return value.CSS(theme)
}

var boxSides = []string{"top", "right", "bottom", "left"}

// normalizeBox turns {top,right,bottom,left} objects, plain or per
// breakpoint, into shorthand strings. Missing sides are 0; token sides are
// resolved against theme like any other style value.
func normalizeBox(raw any, theme map[string]any) any {
	obj, ok := raw.(map[string]any)
	if !ok {
		return raw
	}
	if isBox(obj) {
		parts := make([]string, len(boxSides))
		for i, side := range boxSides {
			parts[i] = "0"
			if value, ok := tokens.ParseStyleValue(obj[side]); ok {
				if css, ok := value.CSS(theme); ok && css != "" {
					parts[i] = css
				}
			}
		}
		return strings.Join(parts, " ")
	}
	out := make(map[string]any, len(obj))
	for key, value := range obj {
		out[key] = normalizeBox(value, theme)
	}
	return out
}

func isBox(obj map[string]any) bool {
	for _, side := range boxSides {
		if _, ok := obj[side]; ok {
			return true
		}
	}
	return false
}
