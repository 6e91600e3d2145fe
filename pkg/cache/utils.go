package cache

import "strings"

// GenerateKey joins parts with ':' under prefix.
func GenerateKey(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), ":")
}
