// Package tokens resolves dotted theme-token paths against nested token trees.
//
// A token tree is a map[string]any of arbitrary depth whose leaves are
// scalars. A string leaf that contains a dot and does not look like a CSS
// literal is an alias for another path in the same tree and is followed.
package tokens

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxAliasHops bounds how many alias links are followed before resolution
// gives up and returns the default value.
const MaxAliasHops = 10

// Status reports how a resolution ended.
type Status int

const (
	Resolved Status = iota
	// Missing means a path segment did not exist or did not lead to a scalar.
	Missing
	// HopLimit means the alias chain was longer than MaxAliasHops or cyclic.
	HopLimit
)

func (s Status) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case Missing:
		return "missing"
	case HopLimit:
		return "hop_limit"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Resolution is the detailed outcome of ResolveDetailed.
type Resolution struct {
	Value  any
	Status Status
	// Hops counts followed aliases.
	Hops int
	// Path is the last path looked up.
	Path string
}

// Gap reports whether the resolution fell back to the default value.
func (r Resolution) Gap() bool {
	return r.Status != Resolved
}

// Resolve returns the value at path in tree, following aliases. Any missing
// segment, a non-scalar target, or an alias chain over MaxAliasHops yields def.
func Resolve(path string, tree map[string]any, def any) any {
	return ResolveDetailed(path, tree, def).Value
}

func ResolveDetailed(path string, tree map[string]any, def any) Resolution {
	current := strings.TrimSpace(path)
	for hops := 0; ; hops++ {
		value, ok := lookup(current, tree)
		if !ok {
			return Resolution{Value: def, Status: Missing, Hops: hops, Path: current}
		}
		next, isAlias := aliasTarget(value)
		if !isAlias {
			return Resolution{Value: value, Status: Resolved, Hops: hops, Path: current}
		}
		if hops >= MaxAliasHops {
			return Resolution{Value: def, Status: HopLimit, Hops: hops, Path: current}
		}
		current = next
	}
}

func lookup(path string, tree map[string]any) (any, bool) {
	if path == "" || tree == nil {
		return nil, false
	}
	var node any = tree
	for _, segment := range strings.Split(path, ".") {
		branch, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = branch[segment]
		if !ok {
			return nil, false
		}
	}
	switch node.(type) {
	case map[string]any, []any, nil:
		return nil, false
	}
	return node, true
}

func aliasTarget(value any) (string, bool) {
	s, ok := value.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ".") || LooksLikeLiteral(s) {
		return "", false
	}
	return s, true
}

var (
	hexColorPattern  = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	lengthPattern    = regexp.MustCompile(`^-?(?:\d+|\d*\.\d+)(?:px|rem|em|%|vh|vw)$`)
	referencePattern = regexp.MustCompile(`^(?:colors|typography|spacing|borderRadius|shadows|components)\.[\w.]+$`)
)

var cssKeywords = map[string]struct{}{
	"transparent": {},
	"none":        {},
	"inherit":     {},
	"auto":        {},
	"initial":     {},
	"unset":       {},
}

// LooksLikeLiteral reports whether s is a concrete CSS value: a hex colour, a
// length in px, rem, em, %, vh or vw, or a CSS-wide keyword. Literals are
// never followed as aliases even when they contain a dot ("1.5rem").
func LooksLikeLiteral(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if _, ok := cssKeywords[strings.ToLower(s)]; ok {
		return true
	}
	return hexColorPattern.MatchString(s) || lengthPattern.MatchString(s)
}

// IsTokenReference reports whether s names a path under one of the known
// top-level token groups.
func IsTokenReference(s string) bool {
	return referencePattern.MatchString(strings.TrimSpace(s))
}
