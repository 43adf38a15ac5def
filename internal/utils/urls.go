package utils

import "strings"

// JoinURL appends path to base with exactly one separating slash.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
