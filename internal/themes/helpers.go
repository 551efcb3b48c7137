package themes

import "strings"

func cloneTheme(src *Theme) *Theme {
	if src == nil {
		return nil
	}
	cloned := *src
	cloned.Description = cloneString(src.Description)
	cloned.Author = cloneString(src.Author)
	cloned.Tokens = CloneTokens(src.Tokens)
	return &cloned
}

func cloneThemes(src []*Theme) []*Theme {
	out := make([]*Theme, len(src))
	for i, theme := range src {
		out[i] = cloneTheme(theme)
	}
	return out
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	cloned := strings.Clone(*value)
	return &cloned
}

// CloneTokens deep copies a token tree.
func CloneTokens(tree TokenTree) TokenTree {
	if tree == nil {
		return nil
	}
	return TokenTree(cloneMap(tree))
}

func cloneMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneMap(typed)
	case TokenTree:
		return cloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}

// normalizeTokens copies tree so that nested groups are plain maps the
// resolver can walk.
func normalizeTokens(tree map[string]any) TokenTree {
	if tree == nil {
		return TokenTree{}
	}
	return TokenTree(cloneMap(tree))
}
