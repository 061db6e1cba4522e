package services

import (
	"strings"

	"github.com/errycx/pokedex-api/app/models"
)

// NeedsEnrichment reports whether a candidate record is missing canonical
// data worth fetching. A record carrying both a usable sprite and a source
// id is considered complete and never triggers a lookup. The sprite check
// uses the same presence predicate as Merge, so a blank sprite string
// counts as missing here too.
func NeedsEnrichment(in *models.PokemonInput) bool {
	return !present(in.Sprite) || in.PokeAPIID == nil
}

// Merge overlays a candidate record onto fetched canonical data. The
// candidate wins wherever it supplied a usable value: a present non-empty
// string or any present number. Absent fields and empty strings fall back
// to the fetched record. Stats merge per field, not as a block. A nil
// fetched record leaves the candidate untouched.
func Merge(c *models.PokemonInput, f *models.Pokemon) *models.PokemonInput {
	if f == nil {
		return c
	}

	merged := f.AsInput()

	if present(c.Name) {
		merged.Name = c.Name
	}
	if present(c.Type) {
		merged.Type = c.Type
	}
	if c.Height != nil {
		merged.Height = c.Height
	}
	if c.Weight != nil {
		merged.Weight = c.Weight
	}
	if present(c.Abilities) {
		merged.Abilities = c.Abilities
	}
	if c.Stats != nil {
		if merged.Stats == nil {
			merged.Stats = &models.StatsInput{}
		}
		if c.Stats.HP != nil {
			merged.Stats.HP = c.Stats.HP
		}
		if c.Stats.Attack != nil {
			merged.Stats.Attack = c.Stats.Attack
		}
		if c.Stats.Defense != nil {
			merged.Stats.Defense = c.Stats.Defense
		}
		if c.Stats.Speed != nil {
			merged.Stats.Speed = c.Stats.Speed
		}
	}
	if present(c.Sprite) {
		merged.Sprite = c.Sprite
	}
	if c.PokeAPIID != nil {
		merged.PokeAPIID = c.PokeAPIID
	}
	if present(c.Description) {
		merged.Description = c.Description
	}
	if present(c.Category) {
		merged.Category = c.Category
	}

	return &merged
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
