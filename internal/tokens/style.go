package tokens

import (
	"fmt"
	"sort"
	"strings"
)

// Breakpoint names a responsive slot.
type Breakpoint string

const (
	Mobile  Breakpoint = "mobile"
	Tablet  Breakpoint = "tablet"
	Desktop Breakpoint = "desktop"
)

// Breakpoints lists every breakpoint in cascade order.
var Breakpoints = []Breakpoint{Mobile, Tablet, Desktop}

// StyleValue is a decoded style prop: a literal, a theme reference, or a
// responsive map wrapping either.
type StyleValue struct {
	literal    any
	themePath  string
	responsive map[Breakpoint]StyleValue
}

// ParseStyleValue decodes a raw prop value. It reports false for nil, empty
// strings and empty responsive maps.
func ParseStyleValue(raw any) (StyleValue, bool) {
	switch v := raw.(type) {
	case nil:
		return StyleValue{}, false
	case string:
		if strings.TrimSpace(v) == "" {
			return StyleValue{}, false
		}
		return StyleValue{literal: v}, true
	case map[string]any:
		if path, ok := themeReference(v); ok {
			return StyleValue{themePath: path}, true
		}
		if isResponsive(v) {
			out := StyleValue{responsive: map[Breakpoint]StyleValue{}}
			for _, bp := range Breakpoints {
				if inner, ok := ParseStyleValue(v[string(bp)]); ok && !inner.IsResponsive() {
					out.responsive[bp] = inner
				}
			}
			if len(out.responsive) == 0 {
				return StyleValue{}, false
			}
			return out, true
		}
		return StyleValue{}, false
	default:
		return StyleValue{literal: v}, true
	}
}

func themeReference(v map[string]any) (string, bool) {
	kind, _ := v["type"].(string)
	if kind != "theme" {
		return "", false
	}
	path, _ := v["value"].(string)
	path = strings.TrimSpace(path)
	return path, path != ""
}

func isResponsive(v map[string]any) bool {
	for _, bp := range Breakpoints {
		if _, ok := v[string(bp)]; ok {
			return true
		}
	}
	return false
}

func (s StyleValue) IsResponsive() bool { return s.responsive != nil }

// ThemePath returns the referenced token path for theme references.
func (s StyleValue) ThemePath() (string, bool) {
	return s.themePath, s.themePath != ""
}

// Literal returns the literal value, formatted as a string.
func (s StyleValue) Literal() (string, bool) {
	if s.literal == nil {
		return "", false
	}
	return formatScalar(s.literal), true
}

// At returns the value set for bp. A non-responsive value is the mobile value.
func (s StyleValue) At(bp Breakpoint) (StyleValue, bool) {
	if !s.IsResponsive() {
		return s, bp == Mobile
	}
	v, ok := s.responsive[bp]
	return v, ok
}

// SetBreakpoints returns the breakpoints carrying a value, in cascade order.
func (s StyleValue) SetBreakpoints() []Breakpoint {
	if !s.IsResponsive() {
		return []Breakpoint{Mobile}
	}
	out := make([]Breakpoint, 0, len(s.responsive))
	for _, bp := range Breakpoints {
		if _, ok := s.responsive[bp]; ok {
			out = append(out, bp)
		}
	}
	return out
}

// CSS renders a non-responsive value against tree. Theme references that do
// not resolve fall back to the CSS variable named after the path.
func (s StyleValue) CSS(tree map[string]any) (string, bool) {
	if path, ok := s.ThemePath(); ok {
		if v, resolved := ResolveCSS(path, tree); resolved {
			return v, true
		}
		return VarReference(path), true
	}
	if lit, ok := s.Literal(); ok {
		if IsTokenReference(lit) {
			if v, resolved := ResolveCSS(lit, tree); resolved {
				return v, true
			}
			return VarReference(lit), true
		}
		return lit, true
	}
	return "", false
}

// ResolveCSS resolves path and formats the scalar for CSS output.
func ResolveCSS(path string, tree map[string]any) (string, bool) {
	res := ResolveDetailed(path, tree, nil)
	if res.Gap() {
		return "", false
	}
	return formatScalar(res.Value), true
}

// VarName converts a token path into a custom property name:
// "colors.primary.500" becomes "--colors-primary-500".
func VarName(path string) string {
	return "--" + strings.ReplaceAll(strings.TrimSpace(path), ".", "-")
}

// VarReference wraps VarName in var().
func VarReference(path string) string {
	return "var(" + VarName(path) + ")"
}

// ResolveProp resolves one prop value for the compiled document. Token
// reference strings and {type:"theme"} objects are replaced by the resolved
// value; responsive maps are resolved per breakpoint. Anything else is
// returned untouched. Unresolved references keep their original value.
func ResolveProp(value any, tree map[string]any) any {
	switch v := value.(type) {
	case string:
		if !IsTokenReference(v) {
			return v
		}
		return Resolve(v, tree, v)
	case map[string]any:
		if path, ok := themeReference(v); ok {
			return Resolve(path, tree, v)
		}
		if isResponsive(v) {
			out := make(map[string]any, len(v))
			for key, inner := range v {
				out[key] = ResolveProp(inner, tree)
			}
			return out
		}
	}
	return value
}

// IsReferenceValue reports whether ResolveProp would treat value as a direct
// token reference (string, theme object, or responsive map of those).
func IsReferenceValue(value any) bool {
	switch v := value.(type) {
	case string:
		return IsTokenReference(v)
	case map[string]any:
		if _, ok := themeReference(v); ok {
			return true
		}
		if !isResponsive(v) {
			return false
		}
		for _, bp := range Breakpoints {
			if IsReferenceValue(v[string(bp)]) {
				return true
			}
		}
	}
	return false
}

// Token is a flattened leaf of a token tree.
type Token struct {
	Path  string
	Value any
}

// CSS formats the token value for a declaration.
func (t Token) CSS() string { return formatScalar(t.Value) }

// Flatten lists every scalar leaf of tree sorted by path. Alias leaves are
// resolved; leaves whose alias cannot be resolved are dropped.
func Flatten(tree map[string]any) []Token {
	var out []Token
	var walk func(prefix string, node map[string]any)
	walk = func(prefix string, node map[string]any) {
		for key, value := range node {
			path := key
			if prefix != "" {
				path = prefix + "." + key
			}
			if child, ok := value.(map[string]any); ok {
				walk(path, child)
				continue
			}
			res := ResolveDetailed(path, tree, nil)
			if res.Gap() {
				continue
			}
			out = append(out, Token{Path: path, Value: res.Value})
		}
	}
	walk("", tree)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func formatScalar(v any) string {
	switch typed := v.(type) {
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return trimFloat(typed)
	case float32:
		return trimFloat(float64(typed))
	default:
		return fmt.Sprint(typed)
	}
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
