package db

import (
	"context"
	"errors"
	"time"

	"github.com/cadencebot/cadence/pkg/core"
	"github.com/cadencebot/cadence/pkg/spotify"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// tokenDocument is the persisted form of a user's OAuth credentials.
type tokenDocument struct {
	UserID       string    `bson:"_id"`
	AccessToken  string    `bson:"access_token"`
	RefreshToken string    `bson:"refresh_token"`
	ExpiresAt    time.Time `bson:"expires_at"`
}

// Credentials retrieves the stored OAuth credentials for a user.
// It returns (nil, nil) when the user has never authorized.
func (db *Database) Credentials(ctx context.Context, userID string) (*spotify.Credentials, error) {
	var doc tokenDocument
	err := db.TokenDB.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	} else if err != nil {
		return nil, &core.PersistenceError{Op: "tokens.get", Err: err}
	}

	return &spotify.Credentials{
		UserID:       doc.UserID,
		AccessToken:  doc.AccessToken,
		RefreshToken: doc.RefreshToken,
		ExpiresAt:    doc.ExpiresAt,
	}, nil
}

// SaveCredentials replaces the stored credentials for a user. The access
// token and its expiry are written together, so there is no window where one
// is stale relative to the other.
func (db *Database) SaveCredentials(ctx context.Context, creds spotify.Credentials) error {
	doc := tokenDocument{
		UserID:       creds.UserID,
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		ExpiresAt:    creds.ExpiresAt,
	}
	_, err := db.TokenDB.ReplaceOne(ctx, bson.M{"_id": creds.UserID}, doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return &core.PersistenceError{Op: "tokens.save", Err: err}
	}
	return nil
}
