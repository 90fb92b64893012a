package env

import "os"

// Get reads key from the process environment, treating unset and empty the
// same and returning fallback for both.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
