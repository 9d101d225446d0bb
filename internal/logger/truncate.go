package logger

import "strings"

// Truncate trims s and cuts it to limit runes, marking the cut with an
// ellipsis. Resume and answer text goes through it before being logged.
func Truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
