package db

import (
	"context"
	"errors"

	"github.com/cadencebot/cadence/pkg/config"
	"github.com/cadencebot/cadence/pkg/core"
	"github.com/cadencebot/cadence/pkg/core/queue"

	"github.com/Laky-64/gologging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Database encapsulates the MongoDB connection and the collections holding
// per-channel player state and per-user OAuth credentials. It is the system's
// only durability mechanism: every mutating call below is persisted before it
// returns, and queue state is never cached across calls.
type Database struct {
	Client   *mongo.Client
	DB       *mongo.Database
	PlayerDB *mongo.Collection
	TokenDB  *mongo.Collection
}

// Instance is the global singleton for the database.
var Instance *Database

// InitDatabase initializes the database connection and sets up the global instance.
// It returns an error if the connection fails or pinging the database is unsuccessful.
func InitDatabase(ctx context.Context) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.Conf.MongoUri))
	if err != nil {
		return err
	}

	mdb := client.Database(config.Conf.DbName)

	Instance = &Database{
		Client:   client,
		DB:       mdb,
		PlayerDB: mdb.Collection("players"),
		TokenDB:  mdb.Collection("spotify_tokens"),
	}

	if err := Instance.Ping(ctx); err != nil {
		return err
	}

	gologging.Info("[db] The database connection has been successfully established.")
	return nil
}

// Ping verifies the connection to the MongoDB server.
func (db *Database) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, nil)
}

// ----------------- PLAYER QUEUE -----------------

// QueueSize returns the number of items persisted for a channel.
// A channel with no player document has size 0.
func (db *Database) QueueSize(ctx context.Context, channelID string) (int, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"_id": channelID}}},
		bson.D{{Key: "$project", Value: bson.M{
			"size": bson.M{"$size": bson.M{"$ifNull": bson.A{"$queue", bson.A{}}}},
		}}},
	}

	cursor, err := db.PlayerDB.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, &core.PersistenceError{Op: "queue.size", Err: err}
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return 0, &core.PersistenceError{Op: "queue.size", Err: err}
		}
		return 0, nil
	}

	var doc struct {
		Size int `bson:"size"`
	}
	if err := cursor.Decode(&doc); err != nil {
		return 0, &core.PersistenceError{Op: "queue.size", Err: err}
	}
	return doc.Size, nil
}

// QueueIndex returns the persisted queue pointer for a channel, or nil when
// no session is active. No bounds checking happens at this layer.
func (db *Database) QueueIndex(ctx context.Context, channelID string) (*int, error) {
	var doc struct {
		Index *int `bson:"current_index"`
	}
	err := db.PlayerDB.FindOne(ctx, bson.M{"_id": channelID},
		options.FindOne().SetProjection(bson.M{"current_index": 1})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	} else if err != nil {
		return nil, &core.PersistenceError{Op: "queue.index", Err: err}
	}
	return doc.Index, nil
}

// SetQueueIndex persists the queue pointer for a channel.
func (db *Database) SetQueueIndex(ctx context.Context, channelID string, index int) error {
	_, err := db.PlayerDB.UpdateOne(ctx,
		bson.M{"_id": channelID},
		bson.M{"$set": bson.M{"current_index": index}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return &core.PersistenceError{Op: "queue.setIndex", Err: err}
	}
	return nil
}

// AppendQueue adds items to the end of a channel's queue, preserving order.
// The queue pointer is untouched.
func (db *Database) AppendQueue(ctx context.Context, channelID string, items []queue.Item) error {
	if len(items) == 0 {
		return nil
	}
	_, err := db.PlayerDB.UpdateOne(ctx,
		bson.M{"_id": channelID},
		bson.M{"$push": bson.M{"queue": bson.M{"$each": items}}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return &core.PersistenceError{Op: "queue.append", Err: err}
	}
	return nil
}

// ReplaceQueue atomically overwrites a channel's queue with the given items.
// The queue pointer is untouched.
func (db *Database) ReplaceQueue(ctx context.Context, channelID string, items []queue.Item) error {
	if items == nil {
		items = []queue.Item{}
	}
	_, err := db.PlayerDB.UpdateOne(ctx,
		bson.M{"_id": channelID},
		bson.M{"$set": bson.M{"queue": items}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return &core.PersistenceError{Op: "queue.replace", Err: err}
	}
	return nil
}

// QueueItemAt returns the item at the given position without removing it.
// Repeated reads at the same index return the same value.
func (db *Database) QueueItemAt(ctx context.Context, channelID string, index int) (queue.Item, error) {
	var doc struct {
		Queue []queue.Item `bson:"queue"`
	}
	err := db.PlayerDB.FindOne(ctx, bson.M{"_id": channelID},
		options.FindOne().SetProjection(bson.M{"queue": bson.M{"$slice": bson.A{index, 1}}})).Decode(&doc)
	if err != nil {
		return queue.Item{}, &core.PersistenceError{Op: "queue.itemAt", Err: err}
	}
	if len(doc.Queue) == 0 {
		return queue.Item{}, &core.PersistenceError{Op: "queue.itemAt", Err: errors.New("index out of range")}
	}
	return doc.Queue[0], nil
}

// ClearPlayer removes all persisted player state for a channel, items and
// pointer both. It is used on session teardown.
func (db *Database) ClearPlayer(ctx context.Context, channelID string) error {
	_, err := db.PlayerDB.DeleteOne(ctx, bson.M{"_id": channelID})
	if err != nil {
		return &core.PersistenceError{Op: "queue.clear", Err: err}
	}
	gologging.DebugF("[db] Player state cleared for channel %s.", channelID)
	return nil
}

// Close gracefully closes the database connection.
func (db *Database) Close(ctx context.Context) error {
	gologging.Info("[db] Closing the database connection...")
	return db.Client.Disconnect(ctx)
}
