package env

import "os"

// Get reads an environment variable, falling back when it is unset or
// empty. Used for the knobs that must work before envconfig has loaded.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
