package utils

import "strings"

// SplitList splits s on sep, trims every part and drops the empty ones.
// An empty or blank s yields nil.
func SplitList(s, sep string) []string {
	var result []string

	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			result = append(result, p)
		}
	}

	return result
}
