package filter

import "strings"

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsAny(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func tagsContain(needle string, tags []string) bool {
	return containsAny(needle, tags...)
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v = normalize(v); v != "" {
			set[v] = true
		}
	}
	return set
}
