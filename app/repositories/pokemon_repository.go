// Package repositories implements the Mongo-backed record store.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/errycx/pokedex-api/app/models"
	"github.com/errycx/pokedex-api/pkg/database"
	"github.com/errycx/pokedex-api/pkg/metrics"
)

// Averages holds the arithmetic means across all records.
type Averages struct {
	AvgHP      float64 `bson:"avgHp" json:"avgHp"`
	AvgAttack  float64 `bson:"avgAttack" json:"avgAttack"`
	AvgDefense float64 `bson:"avgDefense" json:"avgDefense"`
	AvgSpeed   float64 `bson:"avgSpeed" json:"avgSpeed"`
	AvgHeight  float64 `bson:"avgHeight" json:"avgHeight"`
	AvgWeight  float64 `bson:"avgWeight" json:"avgWeight"`
}

// PokemonRepository handles all database operations for Pokemon records.
type PokemonRepository struct {
	col *mongo.Collection
}

func NewPokemonRepository(db *database.Mongo) *PokemonRepository {
	return &PokemonRepository{col: db.Pokemon()}
}

// List returns one page of records matching p plus the total match count
// (an independent count query).
func (r *PokemonRepository) List(ctx context.Context, p ListParams) ([]models.Pokemon, int64, error) {
	defer metrics.ObserveDBQuery("find", time.Now())

	filter := p.Filter()

	cursor, err := r.col.Find(ctx, filter, p.FindOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("repository: list: %w", err)
	}

	pokemon := []models.Pokemon{}
	if err := cursor.All(ctx, &pokemon); err != nil {
		return nil, 0, fmt.Errorf("repository: decode list: %w", err)
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: count: %w", err)
	}

	return pokemon, total, nil
}

// FindByID looks up a record by its hex ObjectID.
func (r *PokemonRepository) FindByID(ctx context.Context, id string) (*models.Pokemon, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	defer metrics.ObserveDBQuery("find", time.Now())

	var p models.Pokemon
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repository: find by id: %w", err)
	}
	return &p, nil
}

// FindByName looks up a record by its natural key. The name is lowercased
// and trimmed before the query, so the lookup is case-insensitive against
// the normalized stored form.
func (r *PokemonRepository) FindByName(ctx context.Context, name string) (*models.Pokemon, error) {
	defer metrics.ObserveDBQuery("find", time.Now())

	var p models.Pokemon
	err := r.col.FindOne(ctx, bson.M{"name": strings.ToLower(strings.TrimSpace(name))}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repository: find by name: %w", err)
	}
	return &p, nil
}

// ExistsByName reports whether a record with the given natural key exists.
//
// Note: create uses this as a check-then-insert. Two concurrent creates for
// the same name can both pass the check; the store does not enforce name
// uniqueness, so that race is unresolved here.
func (r *PokemonRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	_, err := r.FindByName(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Insert persists a new record, stamping createdAt/updatedAt and filling
// in the generated ID.
func (r *PokemonRepository) Insert(ctx context.Context, p *models.Pokemon) error {
	defer metrics.ObserveDBQuery("insert", time.Now())

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("repository: insert: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

// InsertMany persists a batch of records (used by the seeder).
func (r *PokemonRepository) InsertMany(ctx context.Context, ps []models.Pokemon) error {
	if len(ps) == 0 {
		return nil
	}

	defer metrics.ObserveDBQuery("insert", time.Now())

	now := time.Now().UTC()
	docs := make([]interface{}, len(ps))
	for i := range ps {
		ps[i].CreatedAt = now
		ps[i].UpdatedAt = now
		docs[i] = ps[i]
	}

	if _, err := r.col.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("repository: insert many: %w", err)
	}
	return nil
}

// Replace stores the updated document under id, bumping updatedAt.
func (r *PokemonRepository) Replace(ctx context.Context, id string, p *models.Pokemon) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	defer metrics.ObserveDBQuery("update", time.Now())

	p.ID = oid
	p.UpdatedAt = time.Now().UTC()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": oid}, p)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("repository: replace: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the record under id and returns the deleted document.
func (r *PokemonRepository) Delete(ctx context.Context, id string) (*models.Pokemon, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	defer metrics.ObserveDBQuery("delete", time.Now())

	var p models.Pokemon
	err = r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repository: delete: %w", err)
	}
	return &p, nil
}

// DeleteAll clears the collection (seeder only).
func (r *PokemonRepository) DeleteAll(ctx context.Context) error {
	defer metrics.ObserveDBQuery("delete", time.Now())

	if _, err := r.col.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("repository: delete all: %w", err)
	}
	return nil
}

// Count returns the total number of records.
func (r *PokemonRepository) Count(ctx context.Context) (int64, error) {
	defer metrics.ObserveDBQuery("find", time.Now())

	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("repository: count all: %w", err)
	}
	return n, nil
}

// DistinctTypes returns the distinct stored `type` strings (still in their
// comma-joined form; the service splits and deduplicates tags).
func (r *PokemonRepository) DistinctTypes(ctx context.Context) ([]string, error) {
	defer metrics.ObserveDBQuery("find", time.Now())

	raw, err := r.col.Distinct(ctx, "type", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("repository: distinct types: %w", err)
	}

	types := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			types = append(types, s)
		}
	}
	return types, nil
}

// AverageStats computes the arithmetic mean of the four stat fields plus
// height and weight across all records. Returns nil when the collection is
// empty — never a division fault.
func (r *PokemonRepository) AverageStats(ctx context.Context) (*Averages, error) {
	defer metrics.ObserveDBQuery("aggregate", time.Now())

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "avgHp", Value: bson.D{{Key: "$avg", Value: "$stats.hp"}}},
			{Key: "avgAttack", Value: bson.D{{Key: "$avg", Value: "$stats.attack"}}},
			{Key: "avgDefense", Value: bson.D{{Key: "$avg", Value: "$stats.defense"}}},
			{Key: "avgSpeed", Value: bson.D{{Key: "$avg", Value: "$stats.speed"}}},
			{Key: "avgHeight", Value: bson.D{{Key: "$avg", Value: "$height"}}},
			{Key: "avgWeight", Value: bson.D{{Key: "$avg", Value: "$weight"}}},
		}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("repository: average stats: %w", err)
	}

	var results []Averages
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("repository: decode averages: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}
