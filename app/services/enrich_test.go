package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/errycx/pokedex-api/app/models"
)

func strPtr(s string) *string    { return &s }
func intPtr(n int) *int          { return &n }
func floatPtr(f float64) *float64 { return &f }

func fetchedPikachu() *models.Pokemon {
	return &models.Pokemon{
		Name:      "pikachu",
		Type:      "electric",
		Height:    0.4,
		Weight:    6,
		Abilities: "static, lightning-rod",
		Stats:     models.Stats{HP: 35, Attack: 55, Defense: 40, Speed: 90},
		Sprite:    "https://img.example/pikachu.png",
		PokeAPIID: 25,
		Category:  "pikachu",
	}
}

func TestNeedsEnrichment(t *testing.T) {
	in := &models.PokemonInput{Name: strPtr("pikachu")}
	assert.True(t, NeedsEnrichment(in), "bare record should trigger a lookup")

	in.Sprite = strPtr("https://img.example/p.png")
	assert.True(t, NeedsEnrichment(in), "sprite alone is not enough")

	in.PokeAPIID = intPtr(25)
	assert.False(t, NeedsEnrichment(in), "sprite plus source id is complete")

	in.Sprite = strPtr("  ")
	assert.True(t, NeedsEnrichment(in), "a blank sprite reads as missing, same as the merge rule")
}

func TestMergeNilFetchedLeavesCandidate(t *testing.T) {
	c := &models.PokemonInput{Name: strPtr("missingno")}
	assert.Same(t, c, Merge(c, nil))
}

func TestMergeCandidateWins(t *testing.T) {
	c := &models.PokemonInput{
		Name:   strPtr("Sparky"),
		Height: floatPtr(0),
	}

	m := Merge(c, fetchedPikachu())

	require.NotNil(t, m.Name)
	assert.Equal(t, "Sparky", *m.Name)
	require.NotNil(t, m.Height, "explicit zero height must survive the merge")
	assert.Equal(t, 0.0, *m.Height)
}

func TestMergeFallsBackToFetched(t *testing.T) {
	c := &models.PokemonInput{Name: strPtr("pikachu")}

	m := Merge(c, fetchedPikachu())

	require.NotNil(t, m.Type)
	assert.Equal(t, "electric", *m.Type)
	require.NotNil(t, m.Abilities)
	assert.Equal(t, "static, lightning-rod", *m.Abilities)
	require.NotNil(t, m.Sprite)
	assert.Equal(t, "https://img.example/pikachu.png", *m.Sprite)
	require.NotNil(t, m.PokeAPIID)
	assert.Equal(t, 25, *m.PokeAPIID)
	require.NotNil(t, m.Weight)
	assert.Equal(t, 6.0, *m.Weight)
}

func TestMergeEmptyStringFallsBack(t *testing.T) {
	c := &models.PokemonInput{
		Name: strPtr("pikachu"),
		Type: strPtr("   "),
	}

	m := Merge(c, fetchedPikachu())

	require.NotNil(t, m.Type)
	assert.Equal(t, "electric", *m.Type, "blank string must not shadow fetched data")
}

func TestMergeStatsPerField(t *testing.T) {
	c := &models.PokemonInput{
		Name:  strPtr("pikachu"),
		Stats: &models.StatsInput{HP: intPtr(100)},
	}

	m := Merge(c, fetchedPikachu())

	require.NotNil(t, m.Stats)
	require.NotNil(t, m.Stats.HP)
	assert.Equal(t, 100, *m.Stats.HP, "supplied stat wins")
	require.NotNil(t, m.Stats.Attack)
	assert.Equal(t, 55, *m.Stats.Attack, "unsupplied stats come from fetched data")
	require.NotNil(t, m.Stats.Speed)
	assert.Equal(t, 90, *m.Stats.Speed)
}

func TestMergeDoesNotMutateCandidate(t *testing.T) {
	c := &models.PokemonInput{Name: strPtr("pikachu")}

	_ = Merge(c, fetchedPikachu())

	assert.Nil(t, c.Type)
	assert.Nil(t, c.Stats)
	assert.Nil(t, c.Sprite)
}
