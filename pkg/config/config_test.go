package config

import (
	"strings"
	"testing"
)

func setRequired(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("SPOTIFY_CLIENT_ID", "id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)
	if err := LoadConfig(); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if Conf.DbName != "cadence" {
		t.Errorf("DbName = %q", Conf.DbName)
	}
	if Conf.DefaultSearch != "ytsearch" {
		t.Errorf("DefaultSearch = %q", Conf.DefaultSearch)
	}
	if Conf.Timezone != "Asia/Manila" {
		t.Errorf("Timezone = %q", Conf.Timezone)
	}
}

func TestLoadConfigReportsAllMissingKeys(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")

	err := LoadConfig()
	if err == nil {
		t.Fatal("LoadConfig accepted an empty environment")
	}
	for _, key := range []string{"MONGO_URI", "SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not name %s", err, key)
		}
	}
}

func TestLoadConfigRejectsUnknownSearchPrefix(t *testing.T) {
	setRequired(t)
	t.Setenv("DEFAULT_SEARCH", "bingsearch")

	if err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig accepted an unknown search prefix")
	}
}

func TestLoadConfigLowercasesSearchPrefix(t *testing.T) {
	setRequired(t)
	t.Setenv("DEFAULT_SEARCH", "SCSEARCH")

	if err := LoadConfig(); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if Conf.DefaultSearch != "scsearch" {
		t.Errorf("DefaultSearch = %q", Conf.DefaultSearch)
	}
}
