package config

import (
	"strings"

	"github.com/joho/godotenv"
)

// BotConfig holds the configuration for the playback core.
type BotConfig struct {
	MongoUri            string // MongoUri is the MongoDB connection string.
	DbName              string // DbName is the name of the database.
	SpotifyClientId     string // SpotifyClientId is the Spotify application client ID.
	SpotifyClientSecret string // SpotifyClientSecret is the Spotify application client secret.
	SpotifyRedirectUri  string // SpotifyRedirectUri is the OAuth callback target registered with Spotify.
	DefaultSearch       string // DefaultSearch is the search engine prefix used for plain-text queries.
	Timezone            string // Timezone is the IANA zone used when naming created playlists.
}

// Conf is the global configuration for the playback core.
var Conf *BotConfig

// LoadConfig loads the configuration from environment variables and sets the global Conf.
// It returns an error if a required value is missing.
func LoadConfig() error {
	_ = godotenv.Load()

	Conf = &BotConfig{
		MongoUri:            getEnvStr("MONGO_URI", ""),
		DbName:              getEnvStr("DB_NAME", "cadence"),
		SpotifyClientId:     getEnvStr("SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret: getEnvStr("SPOTIFY_CLIENT_SECRET", ""),
		SpotifyRedirectUri:  getEnvStr("SPOTIFY_REDIRECT_URI", "https://cadence.dantis.me/spotify_auth"),
		DefaultSearch:       strings.ToLower(getEnvStr("DEFAULT_SEARCH", "ytsearch")),
		Timezone:            getEnvStr("TIMEZONE", "Asia/Manila"),
	}

	return Conf.validate()
}
