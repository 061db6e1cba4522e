// Package database owns the MongoDB connection lifecycle. The handle is
// constructed once at process start, passed down to the repositories that
// need it, and closed at shutdown — it is never reached through ambient
// globals.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/errycx/pokedex-api/config"
)

// PokemonCollection is the single flat collection holding all records.
const PokemonCollection = "pokemon"

// Mongo is the application's database handle.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect opens the client, pings the deployment, and ensures the
// collection indexes. The caller must eventually call Close.
func Connect(ctx context.Context) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(config.MongoURI()).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(25)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	m := &Mongo{
		Client: client,
		DB:     client.Database(config.MongoDB()),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return m, nil
}

// ensureIndexes creates the single-field lookup indexes. There is
// deliberately no unique index on name: the duplicate check stays at the
// application layer, matching the check-then-insert contract.
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	col := m.DB.Collection(PokemonCollection)

	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
		{Keys: bson.D{{Key: "pokeApiId", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("database: ensure indexes: %w", err)
	}
	return nil
}

// Pokemon returns the records collection.
func (m *Mongo) Pokemon() *mongo.Collection {
	return m.DB.Collection(PokemonCollection)
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("database: disconnect: %w", err)
	}
	return nil
}
