package instance

import (
	"os"

	"github.com/streetfood/rawmart/pkg/env"
)

// EnvInstanceID names the process in logs when several publishers run side by side.
const EnvInstanceID = "RAWMART_INSTANCE_ID"

// GetID returns the configured instance id, falling back to the hostname.
func GetID() string {
	if id := env.Get(EnvInstanceID, ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "rawmart-0"
}
