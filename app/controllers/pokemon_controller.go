// Package controllers implements the HTTP handlers for the catalog API.
package controllers

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/errycx/pokedex-api/app/models"
	"github.com/errycx/pokedex-api/app/repositories"
	"github.com/errycx/pokedex-api/app/services"
	"github.com/errycx/pokedex-api/pkg/bind"
	"github.com/errycx/pokedex-api/pkg/collection"
	"github.com/errycx/pokedex-api/pkg/logger"
	"github.com/errycx/pokedex-api/pkg/response"
	"github.com/errycx/pokedex-api/pkg/validate"
)

// PokemonStore is the persistence surface the handlers need. The Mongo
// repository satisfies it; tests substitute an in-memory fake.
type PokemonStore interface {
	List(ctx context.Context, p repositories.ListParams) ([]models.Pokemon, int64, error)
	FindByID(ctx context.Context, id string) (*models.Pokemon, error)
	FindByName(ctx context.Context, name string) (*models.Pokemon, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Insert(ctx context.Context, p *models.Pokemon) error
	Replace(ctx context.Context, id string, p *models.Pokemon) error
	Delete(ctx context.Context, id string) (*models.Pokemon, error)
	Count(ctx context.Context) (int64, error)
	DistinctTypes(ctx context.Context) ([]string, error)
	AverageStats(ctx context.Context) (*repositories.Averages, error)
}

// Enricher looks up canonical species data by name. A (nil, nil) return
// means the name is unknown to the source.
type Enricher interface {
	Fetch(ctx context.Context, name string) (*models.Pokemon, error)
}

// StatsSummary is the payload of the catalog statistics endpoint.
type StatsSummary struct {
	TotalPokemon int64       `json:"totalPokemon"`
	TotalTypes   int         `json:"totalTypes"`
	AverageStats interface{} `json:"averageStats"`
}

type PokemonController struct {
	store    PokemonStore
	enricher Enricher
}

func NewPokemonController(store PokemonStore, enricher Enricher) *PokemonController {
	return &PokemonController{store: store, enricher: enricher}
}

// List handles GET /pokemon with search, type filter, sort and pagination.
func (pc *PokemonController) List(w http.ResponseWriter, r *http.Request) {
	params := repositories.ParseListParams(r.URL.Query())

	items, total, err := pc.store.List(r.Context(), params)
	if err != nil {
		logger.WithCtx(r.Context()).Error("list pokemon failed", "error", err)
		response.ServerErr(w, "Server error while fetching Pokemon")
		return
	}

	response.List(w, response.ListPayload{
		Count:      len(items),
		Total:      total,
		Page:       params.Page,
		TotalPages: repositories.TotalPages(total, params.Limit),
		Pokemon:    items,
	})
}

// Get handles GET /pokemon/{id}.
func (pc *PokemonController) Get(w http.ResponseWriter, r *http.Request) {
	p, err := pc.store.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		pc.writeLookupError(w, r, err, "Server error while fetching Pokemon")
		return
	}
	response.OK(w, p)
}

// Create handles POST /pokemon. A candidate missing its sprite or source id
// is enriched from the lookup source before validation; client-supplied
// fields always win the merge.
func (pc *PokemonController) Create(w http.ResponseWriter, r *http.Request) {
	var input models.PokemonInput
	if err := bind.JSON(r, &input); err != nil {
		response.Err(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()

	if input.HasName() {
		exists, err := pc.store.ExistsByName(ctx, input.NormalizedName())
		if err != nil {
			logger.WithCtx(ctx).Error("existence check failed", "error", err)
			response.ServerErr(w, "Server error while creating Pokemon")
			return
		}
		if exists {
			response.Err(w, http.StatusBadRequest, "Pokemon already exists in database")
			return
		}

		if services.NeedsEnrichment(&input) {
			fetched, err := pc.enricher.Fetch(ctx, input.NormalizedName())
			if err == nil && fetched != nil {
				input = *services.Merge(&input, fetched)
				logger.WithCtx(ctx).Info("enriched candidate from lookup source", "name", input.NormalizedName())
			}
		}
	}

	if errs := validate.Struct(&input); validate.HasErrors(errs) {
		response.ValidationErr(w, validate.Details(errs))
		return
	}

	p := input.ToPokemon()
	if err := pc.store.Insert(ctx, &p); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			response.Err(w, http.StatusBadRequest, "Pokemon with this name already exists")
			return
		}
		logger.WithCtx(ctx).Error("insert pokemon failed", "error", err)
		response.ServerErr(w, "Server error while creating Pokemon")
		return
	}

	response.Created(w, "Pokemon created successfully", p)
}

// Update handles PUT /pokemon/{id} as a partial overlay: supplied fields
// replace stored ones, absent fields keep their values, and the resulting
// document is revalidated as a whole.
func (pc *PokemonController) Update(w http.ResponseWriter, r *http.Request) {
	var input models.PokemonInput
	if err := bind.JSON(r, &input); err != nil {
		response.Err(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	id := chi.URLParam(r, "id")

	existing, err := pc.store.FindByID(ctx, id)
	if err != nil {
		pc.writeLookupError(w, r, err, "Server error while updating Pokemon")
		return
	}

	updated := *existing
	input.ApplyTo(&updated)

	full := updated.AsInput()
	if errs := validate.Struct(&full); validate.HasErrors(errs) {
		response.ValidationErr(w, validate.Details(errs))
		return
	}

	if err := pc.store.Replace(ctx, id, &updated); err != nil {
		pc.writeLookupError(w, r, err, "Server error while updating Pokemon")
		return
	}

	response.OKMessage(w, "Pokemon updated successfully", updated)
}

// Delete handles DELETE /pokemon/{id}, returning the removed document.
func (pc *PokemonController) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := pc.store.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		pc.writeLookupError(w, r, err, "Server error while deleting Pokemon")
		return
	}
	response.OKMessage(w, "Pokemon deleted successfully", p)
}

// Import handles POST /pokemon/import/{name}: fetches a species from the
// lookup source and stores it verbatim.
func (pc *PokemonController) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "name")))

	exists, err := pc.store.ExistsByName(ctx, name)
	if err != nil {
		logger.WithCtx(ctx).Error("existence check failed", "error", err)
		response.ServerErr(w, "Server error while importing Pokemon")
		return
	}
	if exists {
		response.Err(w, http.StatusBadRequest, "Pokemon already exists in database")
		return
	}

	fetched, err := pc.enricher.Fetch(ctx, name)
	if err != nil {
		logger.WithCtx(ctx).Error("import lookup failed", "name", name, "error", err)
		response.ServerErr(w, "Server error while importing Pokemon")
		return
	}
	if fetched == nil {
		response.NotFound(w, "Pokemon not found in PokeAPI")
		return
	}

	if err := pc.store.Insert(ctx, fetched); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			response.Err(w, http.StatusBadRequest, "Pokemon already exists in database")
			return
		}
		logger.WithCtx(ctx).Error("import insert failed", "name", name, "error", err)
		response.ServerErr(w, "Server error while importing Pokemon")
		return
	}

	response.Created(w, "Pokemon imported successfully from PokeAPI", fetched)
}

// Search handles GET /pokemon/search/{name}: looks a species up in the
// source without persisting anything.
func (pc *PokemonController) Search(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	fetched, err := pc.enricher.Fetch(r.Context(), name)
	if err != nil {
		logger.WithCtx(r.Context()).Error("search lookup failed", "name", name, "error", err)
		response.ServerErr(w, "Server error while searching Pokemon in API")
		return
	}
	if fetched == nil {
		response.NotFound(w, "Pokemon not found in PokeAPI")
		return
	}

	response.OK(w, fetched)
}

// Types handles GET /pokemon/types: distinct type tags, comma-joined
// values split apart, deduplicated and sorted.
func (pc *PokemonController) Types(w http.ResponseWriter, r *http.Request) {
	raw, err := pc.store.DistinctTypes(r.Context())
	if err != nil {
		logger.WithCtx(r.Context()).Error("distinct types failed", "error", err)
		response.ServerErr(w, "Server error while fetching Pokemon types")
		return
	}

	types := pc.splitTypes(raw)
	response.Counted(w, len(types), types)
}

// Stats handles GET /pokemon/stats: catalog size, distinct type count and
// collection-wide stat averages.
func (pc *PokemonController) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	total, err := pc.store.Count(ctx)
	if err != nil {
		logger.WithCtx(ctx).Error("count failed", "error", err)
		response.ServerErr(w, "Server error while fetching Pokemon statistics")
		return
	}

	raw, err := pc.store.DistinctTypes(ctx)
	if err != nil {
		logger.WithCtx(ctx).Error("distinct types failed", "error", err)
		response.ServerErr(w, "Server error while fetching Pokemon statistics")
		return
	}

	averages, err := pc.store.AverageStats(ctx)
	if err != nil {
		logger.WithCtx(ctx).Error("average stats failed", "error", err)
		response.ServerErr(w, "Server error while fetching Pokemon statistics")
		return
	}

	summary := StatsSummary{
		TotalPokemon: total,
		TotalTypes:   len(pc.splitTypes(raw)),
		AverageStats: struct{}{},
	}
	if averages != nil {
		summary.AverageStats = averages
	}

	response.OK(w, summary)
}

// splitTypes expands comma-joined type strings into a sorted deduplicated
// tag list.
func (pc *PokemonController) splitTypes(raw []string) []string {
	all := collection.Flatten(collection.Map(raw, models.SplitTags))
	types := collection.Unique(all)
	sort.Strings(types)
	return types
}

// writeLookupError maps the repository's id-lookup sentinels onto the API
// error taxonomy; anything else is a logged 500 with a generic message.
func (pc *PokemonController) writeLookupError(w http.ResponseWriter, r *http.Request, err error, serverMsg string) {
	switch {
	case errors.Is(err, repositories.ErrInvalidID):
		response.Err(w, http.StatusBadRequest, "Invalid Pokemon ID format")
	case errors.Is(err, repositories.ErrNotFound):
		response.NotFound(w, "Pokemon not found")
	default:
		logger.WithCtx(r.Context()).Error("pokemon lookup failed", "error", err)
		response.ServerErr(w, serverMsg)
	}
}
