package header

import "strings"

func lowerTrim(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func hasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), prefix)
}

// firstToken returns the portion of s up to (not including) the first ';'.
func firstToken(s string) string {
	if idx := strings.IndexByte(s, ';'); idx >= 0 {
		return s[:idx]
	}
	return s
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}
