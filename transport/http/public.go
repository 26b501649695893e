package http

import "strings"

// PublicMatcher decides whether a path is reachable without credentials.
// Patterns ending in "/**" match the prefix before the wildcard; all
// other patterns match exactly.
type PublicMatcher struct {
	prefixes []string
	exact    map[string]struct{}
}

// NewPublicMatcher compiles the pattern list. The auth endpoints
// themselves must always be listed public or nobody could ever log in.
func NewPublicMatcher(patterns []string) *PublicMatcher {
	m := &PublicMatcher{exact: make(map[string]struct{})}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if rest, ok := strings.CutSuffix(p, "/**"); ok {
			m.prefixes = append(m.prefixes, rest+"/")
			// The bare prefix itself is public too: "/public/**" covers
			// "/public".
			m.exact[rest] = struct{}{}
			continue
		}
		m.exact[p] = struct{}{}
	}
	return m
}

// IsPublic reports whether the path matches any public pattern.
func (m *PublicMatcher) IsPublic(path string) bool {
	if _, ok := m.exact[path]; ok {
		return true
	}
	for _, prefix := range m.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
