package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/errycx/pokedex-api/app/models"
	"github.com/errycx/pokedex-api/app/repositories"
)

// fakeStore is an in-memory PokemonStore ordered by insertion.
type fakeStore struct {
	docs     []models.Pokemon
	failWith error
}

func (s *fakeStore) check() error { return s.failWith }

func (s *fakeStore) List(ctx context.Context, p repositories.ListParams) ([]models.Pokemon, int64, error) {
	if err := s.check(); err != nil {
		return nil, 0, err
	}
	return s.docs, int64(len(s.docs)), nil
}

func (s *fakeStore) FindByID(ctx context.Context, id string) (*models.Pokemon, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrInvalidID
	}
	for i := range s.docs {
		if s.docs[i].ID == oid {
			d := s.docs[i]
			return &d, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *fakeStore) FindByName(ctx context.Context, name string) (*models.Pokemon, error) {
	for i := range s.docs {
		if s.docs[i].Name == name {
			d := s.docs[i]
			return &d, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *fakeStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	if err := s.check(); err != nil {
		return false, err
	}
	_, err := s.FindByName(ctx, name)
	return err == nil, nil
}

func (s *fakeStore) Insert(ctx context.Context, p *models.Pokemon) error {
	if err := s.check(); err != nil {
		return err
	}
	for i := range s.docs {
		if s.docs[i].Name == p.Name {
			return repositories.ErrDuplicate
		}
	}
	p.ID = primitive.NewObjectID()
	s.docs = append(s.docs, *p)
	return nil
}

func (s *fakeStore) Replace(ctx context.Context, id string, p *models.Pokemon) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.ErrInvalidID
	}
	for i := range s.docs {
		if s.docs[i].ID == oid {
			p.ID = oid
			s.docs[i] = *p
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (s *fakeStore) Delete(ctx context.Context, id string) (*models.Pokemon, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrInvalidID
	}
	for i := range s.docs {
		if s.docs[i].ID == oid {
			d := s.docs[i]
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			return &d, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *fakeStore) Count(ctx context.Context) (int64, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	return int64(len(s.docs)), nil
}

func (s *fakeStore) DistinctTypes(ctx context.Context) ([]string, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	for _, d := range s.docs {
		if !seen[d.Type] {
			seen[d.Type] = true
			out = append(out, d.Type)
		}
	}
	return out, nil
}

func (s *fakeStore) AverageStats(ctx context.Context) (*repositories.Averages, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if len(s.docs) == 0 {
		return nil, nil
	}
	var avg repositories.Averages
	for _, d := range s.docs {
		avg.AvgHP += float64(d.Stats.HP)
	}
	avg.AvgHP /= float64(len(s.docs))
	return &avg, nil
}

// fakeEnricher serves canned lookups; nil entries read as unknown names.
type fakeEnricher struct {
	known map[string]*models.Pokemon
	calls int
}

func (e *fakeEnricher) Fetch(ctx context.Context, name string) (*models.Pokemon, error) {
	e.calls++
	return e.known[strings.ToLower(strings.TrimSpace(name))], nil
}

func pikachu() models.Pokemon {
	return models.Pokemon{
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

func newController(docs ...models.Pokemon) (*PokemonController, *fakeStore, *fakeEnricher) {
	store := &fakeStore{}
	for i := range docs {
		docs[i].ID = primitive.NewObjectID()
		store.docs = append(store.docs, docs[i])
	}
	enricher := &fakeEnricher{known: map[string]*models.Pokemon{}}
	return NewPokemonController(store, enricher), store, enricher
}

func withParam(r *http.Request, key, val string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, val)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestListPagination(t *testing.T) {
	pc, _, _ := newController(pikachu())

	rec := httptest.NewRecorder()
	pc.List(rec, httptest.NewRequest(http.MethodGet, "/pokemon?limit=10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 1.0, body["count"])
	assert.Equal(t, 1.0, body["total"])
	assert.Equal(t, 1.0, body["page"])
	assert.Equal(t, 1.0, body["totalPages"])
	require.Contains(t, body, "pokemon")
}

func TestGetInvalidID(t *testing.T) {
	pc, _, _ := newController()

	rec := httptest.NewRecorder()
	r := withParam(httptest.NewRequest(http.MethodGet, "/pokemon/nope", nil), "id", "nope")
	pc.Get(rec, r)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid Pokemon ID format", decodeBody(t, rec)["error"])
}

func TestGetNotFound(t *testing.T) {
	pc, _, _ := newController()

	id := primitive.NewObjectID().Hex()
	rec := httptest.NewRecorder()
	r := withParam(httptest.NewRequest(http.MethodGet, "/pokemon/"+id, nil), "id", id)
	pc.Get(rec, r)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Pokemon not found", decodeBody(t, rec)["error"])
}

func TestGetFound(t *testing.T) {
	pc, store, _ := newController(pikachu())

	id := store.docs[0].ID.Hex()
	rec := httptest.NewRecorder()
	r := withParam(httptest.NewRequest(http.MethodGet, "/pokemon/"+id, nil), "id", id)
	pc.Get(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "pikachu", data["name"])
	assert.Equal(t, 220.0, data["totalStats"], "derived fields appear in the payload")
}

func TestCreateEnrichesSparseCandidate(t *testing.T) {
	pc, store, enricher := newController()
	full := pikachu()
	enricher.known["pikachu"] = &full

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/pokemon", bytes.NewBufferString(`{"name": "Pikachu"}`))
	pc.Create(rec, r)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, store.docs, 1)
	assert.Equal(t, "pikachu", store.docs[0].Name, "stored name is normalized")
	assert.Equal(t, "electric", store.docs[0].Type, "missing fields are filled from the lookup")
	assert.Equal(t, 35, store.docs[0].Stats.HP)
	assert.Equal(t, 1, enricher.calls)
}

func TestCreateClientFieldsWinMerge(t *testing.T) {
	pc, store, enricher := newController()
	full := pikachu()
	enricher.known["pikachu"] = &full

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/pokemon",
		bytes.NewBufferString(`{"name": "pikachu", "type": "psychic", "stats": {"hp": 100}}`))
	pc.Create(rec, r)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, store.docs, 1)
	assert.Equal(t, "psychic", store.docs[0].Type)
	assert.Equal(t, 100, store.docs[0].Stats.HP, "supplied stat wins")
	assert.Equal(t, 55, store.docs[0].Stats.Attack, "unsupplied stat comes from the lookup")
}

func TestCreateCompleteCandidateSkipsLookup(t *testing.T) {
	pc, _, enricher := newController()

	body := `{"name": "mewthree", "type": "psychic", "height": 2, "weight": 80,
		"abilities": "pressure", "sprite": "https://img.example/m.png", "pokeApiId": 9001}`
	rec := httptest.NewRecorder()
	pc.Create(rec, httptest.NewRequest(http.MethodPost, "/pokemon", bytes.NewBufferString(body)))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 0, enricher.calls, "sprite plus source id means no lookup")
}

func TestCreateDuplicateName(t *testing.T) {
	pc, store, _ := newController(pikachu())

	rec := httptest.NewRecorder()
	pc.Create(rec, httptest.NewRequest(http.MethodPost, "/pokemon", bytes.NewBufferString(`{"name": "Pikachu"}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Pokemon already exists in database", decodeBody(t, rec)["error"])
	assert.Len(t, store.docs, 1, "nothing was written")
}

func TestCreateValidationFailure(t *testing.T) {
	pc, store, enricher := newController()
	full := pikachu()
	enricher.known["pikachu"] = &full

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/pokemon",
		bytes.NewBufferString(`{"name": "pikachu", "stats": {"hp": 300}}`))
	pc.Create(rec, r)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Validation Error", body["error"])
	details := body["details"].([]interface{})
	require.NotEmpty(t, details)
	found := false
	for _, d := range details {
		if strings.Contains(d.(string), "stats.hp") {
			found = true
		}
	}
	assert.True(t, found, "details name the offending field: %v", details)
	assert.Empty(t, store.docs)
}

func TestCreateUnknownNameFailsValidation(t *testing.T) {
	pc, store, _ := newController()

	rec := httptest.NewRecorder()
	pc.Create(rec, httptest.NewRequest(http.MethodPost, "/pokemon", bytes.NewBufferString(`{"name": "missingno"}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation Error", decodeBody(t, rec)["error"],
		"an unknown name leaves required fields unfilled")
	assert.Empty(t, store.docs)
}

func TestCreateMalformedBody(t *testing.T) {
	pc, _, _ := newController()

	rec := httptest.NewRecorder()
	pc.Create(rec, httptest.NewRequest(http.MethodPost, "/pokemon", bytes.NewBufferString(`{`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decodeBody(t, rec)["error"])
}

func TestUpdatePartialOverlay(t *testing.T) {
	pc, store, _ := newController(pikachu())

	id := store.docs[0].ID.Hex()
	rec := httptest.NewRecorder()
	r := withParam(httptest.NewRequest(http.MethodPut, "/pokemon/"+id,
		bytes.NewBufferString(`{"height": 0.5, "stats": {"hp": 40}}`)), "id", id)
	pc.Update(rec, r)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0.5, store.docs[0].Height)
	assert.Equal(t, 40, store.docs[0].Stats.HP)
	assert.Equal(t, "pikachu", store.docs[0].Name, "untouched fields survive")
	assert.Equal(t, 55, store.docs[0].Stats.Attack, "untouched stats survive")
}

func TestUpdateRejectsOutOfRangeStat(t *testing.T) {
	pc, store, _ := newController(pikachu())

	id := store.docs[0].ID.Hex()
	rec := httptest.NewRecorder()
	r := withParam(httptest.NewRequest(http.MethodPut, "/pokemon/"+id,
		bytes.NewBufferString(`{"stats": {"hp": 300}}`)), "id", id)
	pc.Update(rec, r)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 35, store.docs[0].Stats.HP, "rejected update leaves the document alone")
}

func TestUpdateNotFound(t *testing.T) {
	pc, _, _ := newController()

	id := primitive.NewObjectID().Hex()
	rec := httptest.NewRecorder()
	r := withParam(httptest.NewRequest(http.MethodPut, "/pokemon/"+id,
		bytes.NewBufferString(`{"height": 1}`)), "id", id)
	pc.Update(rec, r)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteReturnsDocument(t *testing.T) {
	pc, store, _ := newController(pikachu())

	id := store.docs[0].ID.Hex()
	rec := httptest.NewRecorder()
	r := withParam(httptest.NewRequest(http.MethodDelete, "/pokemon/"+id, nil), "id", id)
	pc.Delete(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Pokemon deleted successfully", body["message"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "pikachu", data["name"])
	assert.Empty(t, store.docs)
}

func TestImportUnknownName(t *testing.T) {
	pc, store, _ := newController()

	rec := httptest.NewRecorder()
	r := withParam(httptest.NewRequest(http.MethodPost, "/pokemon/import/missingno", nil), "name", "missingno")
	pc.Import(rec, r)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Pokemon not found in PokeAPI", decodeBody(t, rec)["error"])
	assert.Empty(t, store.docs, "a failed import writes nothing")
}

func TestImportExisting(t *testing.T) {
	pc, _, enricher := newController(pikachu())
	full := pikachu()
	enricher.known["pikachu"] = &full

	rec := httptest.NewRecorder()
	r := withParam(httptest.NewRequest(http.MethodPost, "/pokemon/import/Pikachu", nil), "name", "Pikachu")
	pc.Import(rec, r)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Pokemon already exists in database", decodeBody(t, rec)["error"])
	assert.Equal(t, 0, enricher.calls, "existing names never hit the source")
}

func TestImportSuccess(t *testing.T) {
	pc, store, enricher := newController()
	full := pikachu()
	enricher.known["pikachu"] = &full

	rec := httptest.NewRecorder()
	r := withParam(httptest.NewRequest(http.MethodPost, "/pokemon/import/Pikachu", nil), "name", "Pikachu")
	pc.Import(rec, r)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Pokemon imported successfully from PokeAPI", decodeBody(t, rec)["message"])
	require.Len(t, store.docs, 1)
	assert.Equal(t, "pikachu", store.docs[0].Name)
}

func TestSearchDoesNotPersist(t *testing.T) {
	pc, store, enricher := newController()
	full := pikachu()
	enricher.known["pikachu"] = &full

	rec := httptest.NewRecorder()
	r := withParam(httptest.NewRequest(http.MethodGet, "/pokemon/search/pikachu", nil), "name", "pikachu")
	pc.Search(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "pikachu", data["name"])
	assert.Empty(t, store.docs, "search is read-only")
}

func TestSearchUnknownName(t *testing.T) {
	pc, _, _ := newController()

	rec := httptest.NewRecorder()
	r := withParam(httptest.NewRequest(http.MethodGet, "/pokemon/search/missingno", nil), "name", "missingno")
	pc.Search(rec, r)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTypesSplitsAndDedupes(t *testing.T) {
	charizard := pikachu()
	charizard.Name = "charizard"
	charizard.Type = "fire, flying"
	moltres := pikachu()
	moltres.Name = "moltres"
	moltres.Type = "fire, flying"
	vulpix := pikachu()
	vulpix.Name = "vulpix"
	vulpix.Type = "fire"

	pc, _, _ := newController(charizard, moltres, vulpix)

	rec := httptest.NewRecorder()
	pc.Types(rec, httptest.NewRequest(http.MethodGet, "/pokemon/types", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, 2.0, body["count"])
	raw := body["data"].([]interface{})
	got := make([]string, len(raw))
	for i, v := range raw {
		got[i] = v.(string)
	}
	assert.True(t, sort.StringsAreSorted(got))
	assert.Equal(t, []string{"fire", "flying"}, got)
}

func TestStatsEmptyCatalog(t *testing.T) {
	pc, _, _ := newController()

	rec := httptest.NewRecorder()
	pc.Stats(rec, httptest.NewRequest(http.MethodGet, "/pokemon/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, 0.0, data["totalPokemon"])
	assert.Equal(t, 0.0, data["totalTypes"])
	assert.Equal(t, map[string]interface{}{}, data["averageStats"],
		"no records yields an empty averages object, not null")
}

func TestStatsWithRecords(t *testing.T) {
	pc, _, _ := newController(pikachu())

	rec := httptest.NewRecorder()
	pc.Stats(rec, httptest.NewRequest(http.MethodGet, "/pokemon/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, 1.0, data["totalPokemon"])
	assert.Equal(t, 1.0, data["totalTypes"])
	averages := data["averageStats"].(map[string]interface{})
	assert.Equal(t, 35.0, averages["avgHp"])
}

func TestStoreFailureIsGeneric500(t *testing.T) {
	pc, store, _ := newController()
	store.failWith = assert.AnError

	rec := httptest.NewRecorder()
	pc.List(rec, httptest.NewRequest(http.MethodGet, "/pokemon", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Server error while fetching Pokemon", decodeBody(t, rec)["error"])
}

func TestHealth(t *testing.T) {
	hc := NewHealthController()

	rec := httptest.NewRecorder()
	hc.Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Pokedex API is running!", body["message"])
	assert.NotEmpty(t, body["timestamp"])
	assert.NotEmpty(t, body["environment"])
}
