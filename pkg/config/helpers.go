package config

import (
	"fmt"
	"os"
	"strings"
)

// getEnvStr retrieves a string from an environment variable or returns a default value.
// It returns the value of the environment variable if it exists, otherwise it returns the default value.
func getEnvStr(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

// searchPrefixes lists the search engine prefixes the audio backend understands.
var searchPrefixes = []string{"ytsearch", "scsearch"}

// validate checks if the configuration is valid.
// It returns an error if the configuration is invalid, otherwise it returns nil.
func (c *BotConfig) validate() error {
	var missing []string
	if c.MongoUri == "" {
		missing = append(missing, "MONGO_URI")
	}
	if c.SpotifyClientId == "" {
		missing = append(missing, "SPOTIFY_CLIENT_ID")
	}
	if c.SpotifyClientSecret == "" {
		missing = append(missing, "SPOTIFY_CLIENT_SECRET")
	}
	if c.DbName == "" {
		missing = append(missing, "DB_NAME")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	if !contains(searchPrefixes, c.DefaultSearch) {
		return fmt.Errorf("unknown DEFAULT_SEARCH %q (expected one of: %s)", c.DefaultSearch, strings.Join(searchPrefixes, ", "))
	}

	return nil
}

// contains checks if a slice of strings contains a specific value.
func contains(list []string, x string) bool {
	for _, v := range list {
		if v == x {
			return true
		}
	}
	return false
}
