// Package routes registers the API surface.
package routes

import (
	"github.com/errycx/pokedex-api/app/controllers"
	"github.com/errycx/pokedex-api/pkg/router"
)

// Register mounts every API route. Literal segments (types, stats,
// search, import) are registered before the {id} routes so chi never
// swallows them as identifiers.
func Register(r *router.Router, pokemon *controllers.PokemonController, health *controllers.HealthController) {
	r.Get("/health", "health", health.Check)

	g := r.Group("/pokemon")
	g.Get("/types", "pokemon.types", pokemon.Types)
	g.Get("/stats", "pokemon.stats", pokemon.Stats)
	g.Get("/search/{name}", "pokemon.search", pokemon.Search)
	g.Post("/import/{name}", "pokemon.import", pokemon.Import)

	g.Get("/", "pokemon.index", pokemon.List)
	g.Post("/", "pokemon.create", pokemon.Create)
	g.Get("/{id}", "pokemon.show", pokemon.Get)
	g.Put("/{id}", "pokemon.update", pokemon.Update)
	g.Delete("/{id}", "pokemon.delete", pokemon.Delete)
}
