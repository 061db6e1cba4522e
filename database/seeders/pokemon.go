// Package seeders populates the database with an initial catalog.
package seeders

import (
	"context"
	"fmt"
	"time"

	"github.com/errycx/pokedex-api/app/models"
	"github.com/errycx/pokedex-api/app/repositories"
	"github.com/errycx/pokedex-api/app/services"
	"github.com/errycx/pokedex-api/pkg/logger"
)

// fetchDelay spaces out lookups so the seeder stays polite to the source.
const fetchDelay = 500 * time.Millisecond

// popularPokemon is the starter catalog, one well-known species per
// generation spread.
var popularPokemon = []string{
	"pikachu", "charizard", "blastoise", "venusaur", "alakazam",
	"machamp", "gengar", "dragonite", "mewtwo", "mew",
	"typhlosion", "feraligatr", "meganium", "espeon", "umbreon",
	"blaziken", "swampert", "sceptile", "garchomp", "lucario",
	"greninja", "talonflame", "sylveon", "decidueye", "incineroar",
}

// PokemonSeeder wipes the collection and refills it from the lookup
// source. Species the source does not know are skipped, not fatal.
type PokemonSeeder struct {
	repo     *repositories.PokemonRepository
	enricher *services.PokeAPI
}

func NewPokemonSeeder(repo *repositories.PokemonRepository, enricher *services.PokeAPI) *PokemonSeeder {
	return &PokemonSeeder{repo: repo, enricher: enricher}
}

func (s *PokemonSeeder) Run(ctx context.Context) error {
	logger.Info("seeding catalog", "species", len(popularPokemon))

	if err := s.repo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear collection: %w", err)
	}

	var batch []models.Pokemon
	for i, name := range popularPokemon {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		p, err := s.enricher.Fetch(ctx, name)
		if err != nil || p == nil {
			logger.Warn("species lookup failed, skipping", "name", name)
		} else {
			batch = append(batch, *p)
		}

		if i < len(popularPokemon)-1 {
			select {
			case <-time.After(fetchDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	if len(batch) == 0 {
		logger.Warn("nothing fetched, collection left empty")
		return nil
	}

	if err := s.repo.InsertMany(ctx, batch); err != nil {
		return fmt.Errorf("insert seed batch: %w", err)
	}

	for _, p := range batch {
		logger.Info("seeded", "name", p.Name, "type", p.Type)
	}
	logger.Info("seeding complete", "count", len(batch))
	return nil
}
