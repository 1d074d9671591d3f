// Package env reads process settings that must be available before the
// envconfig-driven config is loaded, such as log format and instance name.
package env

import (
	"os"
	"strings"
)

// Prefix namespaces every rawmart variable.
const Prefix = "RAWMART_"

// Get returns the first non-blank value among RAWMART_<key> and <key>, or
// fallback. key may already carry the prefix.
func Get(key, fallback string) string {
	name := strings.TrimPrefix(key, Prefix)
	for _, candidate := range []string{Prefix + name, name} {
		if v := strings.TrimSpace(os.Getenv(candidate)); v != "" {
			return v
		}
	}
	return fallback
}
