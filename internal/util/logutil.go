package util

import (
	"strconv"
	"strings"
)

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
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

// PreviewIDs joins at most limit identifiers for a log line and reports how many were left out.
func PreviewIDs(ids []string, limit int) string {
	if limit <= 0 || len(ids) == 0 {
		return ""
	}
	if len(ids) <= limit {
		return strings.Join(ids, ",")
	}
	return strings.Join(ids[:limit], ",") + ",... (+" + strconv.Itoa(len(ids)-limit) + ")"
}
