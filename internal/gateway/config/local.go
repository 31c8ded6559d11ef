package config

import (
	"os"
	"strings"
)

// localCORSOrigins covers the dev frontend plus the one deployed
// frontend, when configured.
func localCORSOrigins() []string {
	origins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}
	if deployed := strings.TrimSpace(os.Getenv("FRONTEND_ORIGIN")); deployed != "" {
		origins = append(origins, deployed)
	}
	return origins
}
