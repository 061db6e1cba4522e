// Package services holds the enrichment source client and the merge logic
// that combines client-supplied records with fetched canonical data.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/errycx/pokedex-api/app/models"
	"github.com/errycx/pokedex-api/config"
	"github.com/errycx/pokedex-api/pkg/cache"
	"github.com/errycx/pokedex-api/pkg/httpclient"
	"github.com/errycx/pokedex-api/pkg/logger"
	"github.com/errycx/pokedex-api/pkg/metrics"
)

// PokeAPI fetches canonical species data from the public PokeAPI.
type PokeAPI struct {
	baseURL  string
	timeout  time.Duration
	cacheTTL time.Duration
}

func NewPokeAPI() *PokeAPI {
	return &PokeAPI{
		baseURL:  config.PokeAPIURL(),
		timeout:  config.PokeAPITimeout(),
		cacheTTL: config.CacheTTL(),
	}
}

// pokeAPIResponse is the subset of the PokeAPI payload this service reads.
type pokeAPIResponse struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Height    float64 `json:"height"`
	Weight    float64 `json:"weight"`
	Types     []struct {
		Type struct {
			Name string `json:"name"`
		} `json:"type"`
	} `json:"types"`
	Abilities []struct {
		Ability struct {
			Name string `json:"name"`
		} `json:"ability"`
	} `json:"abilities"`
	Stats []struct {
		BaseStat int `json:"base_stat"`
		Stat     struct {
			Name string `json:"name"`
		} `json:"stat"`
	} `json:"stats"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
	} `json:"sprites"`
	Species struct {
		Name string `json:"name"`
	} `json:"species"`
}

// Fetch looks up a species by name, lowercased before the query. One
// attempt, bounded by the configured timeout. Every failure mode — network
// error, timeout, 404, malformed body — collapses to (nil, nil): "not
// found", never fatal. A short-TTL cache fronts the network call; cache
// misses and Redis outages fall through silently.
func (c *PokeAPI) Fetch(ctx context.Context, name string) (*models.Pokemon, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, nil
	}

	cacheKey := "pokeapi:" + key
	var cached models.Pokemon
	if cache.Get(cacheKey, &cached) {
		metrics.EnrichmentLookups.WithLabelValues("hit").Inc()
		return &cached, nil
	}

	resp, err := httpclient.Get(fmt.Sprintf("%s/pokemon/%s", c.baseURL, key)).
		Timeout(c.timeout).
		WithContext(ctx).
		Send()
	if err != nil {
		logger.WithCtx(ctx).Warn("pokeapi: lookup failed", "name", key, "error", err)
		metrics.EnrichmentLookups.WithLabelValues("error").Inc()
		return nil, nil
	}
	if !resp.OK() {
		metrics.EnrichmentLookups.WithLabelValues("miss").Inc()
		return nil, nil
	}

	var body pokeAPIResponse
	if err := resp.JSON(&body); err != nil {
		logger.WithCtx(ctx).Warn("pokeapi: malformed response", "name", key, "error", err)
		metrics.EnrichmentLookups.WithLabelValues("error").Inc()
		return nil, nil
	}

	p := mapResponse(body)
	metrics.EnrichmentLookups.WithLabelValues("hit").Inc()

	_ = cache.Set(cacheKey, p, c.cacheTTL)

	return &p, nil
}

// mapResponse shapes the PokeAPI payload into a catalog record: list
// fields become comma-and-space joined strings, absent stat entries
// default to 0, the category falls back to "Unknown".
func mapResponse(body pokeAPIResponse) models.Pokemon {
	types := make([]string, 0, len(body.Types))
	for _, t := range body.Types {
		types = append(types, t.Type.Name)
	}

	abilities := make([]string, 0, len(body.Abilities))
	for _, a := range body.Abilities {
		abilities = append(abilities, a.Ability.Name)
	}

	stats := models.Stats{}
	for _, s := range body.Stats {
		switch s.Stat.Name {
		case "hp":
			stats.HP = s.BaseStat
		case "attack":
			stats.Attack = s.BaseStat
		case "defense":
			stats.Defense = s.BaseStat
		case "speed":
			stats.Speed = s.BaseStat
		}
	}

	category := body.Species.Name
	if category == "" {
		category = "Unknown"
	}

	p := models.Pokemon{
		Name:      body.Name,
		Type:      models.JoinTags(types),
		Height:    body.Height,
		Weight:    body.Weight,
		Abilities: models.JoinTags(abilities),
		Stats:     stats,
		Sprite:    body.Sprites.FrontDefault,
		PokeAPIID: body.ID,
		Category:  category,
	}
	p.Normalize()
	return p
}
