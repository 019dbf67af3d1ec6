package env

import "os"

// Get reads an environment variable, falling back to def when it is
// unset or empty.
func Get(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}
