package config

import (
	"os"
	"strings"
)

// PolicyStrictMissingConfig makes a missing PolicyConfig a hard error during
// assessment instead of the default permissive "no policy, no findings".
//
// Set via env:
// - POLICY_STRICT_MISSING_CONFIG=true
func PolicyStrictMissingConfig() bool {
	return boolFromEnv("POLICY_STRICT_MISSING_CONFIG")
}

// DevMode runs the server against an in-memory store and fixture catalog,
// skipping MySQL and Redis entirely. Demo data is loaded at startup.
//
// Set via env:
// - DEV_MODE=true
func DevMode() bool {
	return boolFromEnv("DEV_MODE")
}

func boolFromEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
