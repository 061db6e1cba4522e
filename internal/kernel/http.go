// Package kernel assembles the HTTP handler: router, middleware chain and
// operational endpoints.
package kernel

import (
	"net/http"
	"time"

	"github.com/errycx/pokedex-api/app/controllers"
	"github.com/errycx/pokedex-api/app/routes"
	"github.com/errycx/pokedex-api/pkg/metrics"
	"github.com/errycx/pokedex-api/pkg/middleware"
	"github.com/errycx/pokedex-api/pkg/reqid"
	"github.com/errycx/pokedex-api/pkg/response"
	"github.com/errycx/pokedex-api/pkg/router"
)

const (
	rateLimitMax    = 200
	rateLimitWindow = time.Minute
)

// BuildHandler wires the middleware chain and all routes into a single
// http.Handler. Metrics wrap everything so even panics and rate-limited
// requests are counted.
func BuildHandler(pokemon *controllers.PokemonController, health *controllers.HealthController) (http.Handler, *router.Router) {
	r := router.New()

	r.Use(
		metrics.Middleware(),
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions()),
		middleware.RateLimit(rateLimitMax, rateLimitWindow),
	)

	r.HandleFunc("/metrics", metrics.Handler())

	routes.Register(r, pokemon, health)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.NotFound(w, "Route not found")
	})

	return r.Handler(), r
}
