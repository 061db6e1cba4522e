package repositories

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseListParamsDefaults(t *testing.T) {
	p := ParseListParams(url.Values{})

	assert.Equal(t, int64(1), p.Page)
	assert.Equal(t, int64(50), p.Limit)
	assert.Equal(t, "name", p.Sort)
	assert.Empty(t, p.Search)
	assert.Empty(t, p.Type)
}

func TestParseListParamsFloorsAtOne(t *testing.T) {
	q := url.Values{"page": {"0"}, "limit": {"-5"}}
	p := ParseListParams(q)

	assert.Equal(t, int64(1), p.Page)
	assert.Equal(t, int64(50), p.Limit)
}

func TestParseListParamsNoUpperBoundOnLimit(t *testing.T) {
	q := url.Values{"limit": {"100000"}}
	p := ParseListParams(q)

	assert.Equal(t, int64(100000), p.Limit)
}

func TestFilterEmpty(t *testing.T) {
	p := ListParams{}
	assert.Equal(t, bson.M{}, p.Filter())
}

func TestFilterSearchExpandsToOrOverThreeFields(t *testing.T) {
	p := ListParams{Search: "char"}
	filter := p.Filter()

	or, ok := filter["$or"].(bson.A)
	if !ok {
		t.Fatalf("expected $or clause, got %v", filter)
	}
	assert.Len(t, or, 3)

	re := or[0].(bson.M)["name"].(primitive.Regex)
	assert.Equal(t, "char", re.Pattern)
	assert.Equal(t, "i", re.Options)
}

func TestFilterTypeLayersOnTopOfSearch(t *testing.T) {
	p := ListParams{Search: "saur", Type: "fire"}
	filter := p.Filter()

	// Both clauses present: intersection, not replacement.
	_, hasOr := filter["$or"]
	assert.True(t, hasOr, "search clause must survive a type filter")

	re, ok := filter["type"].(primitive.Regex)
	if !ok {
		t.Fatalf("expected type regex, got %v", filter["type"])
	}
	assert.Equal(t, "fire", re.Pattern)
}

func TestSkip(t *testing.T) {
	assert.Equal(t, int64(0), ListParams{Page: 1, Limit: 50}.Skip())
	assert.Equal(t, int64(100), ListParams{Page: 3, Limit: 50}.Skip())
	assert.Equal(t, int64(14), ListParams{Page: 8, Limit: 2}.Skip())
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, int64(0), TotalPages(0, 50))
	assert.Equal(t, int64(1), TotalPages(1, 50))
	assert.Equal(t, int64(1), TotalPages(50, 50))
	assert.Equal(t, int64(2), TotalPages(51, 50))
	assert.Equal(t, int64(34), TotalPages(100, 3))
}

func TestFindOptionsSortAscending(t *testing.T) {
	p := ListParams{Sort: "height", Page: 2, Limit: 10}
	opts := p.FindOptions()

	sort := opts.Sort.(bson.D)
	assert.Equal(t, "height", sort[0].Key)
	assert.Equal(t, 1, sort[0].Value)
	assert.Equal(t, int64(10), *opts.Limit)
	assert.Equal(t, int64(10), *opts.Skip)
}
