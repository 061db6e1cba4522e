package repositories

import (
	"net/url"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultLimit = 50
	defaultSort  = "name"
)

// ListParams are the request-level filter/sort/page parameters of the list
// endpoint.
type ListParams struct {
	Search string
	Type   string
	Sort   string
	Page   int64
	Limit  int64
}

// ParseListParams reads list parameters from a query string, applying the
// defaults {limit=50, page=1, sort="name"}. Page and limit are floored at 1;
// there is deliberately no upper bound on limit.
func ParseListParams(q url.Values) ListParams {
	p := ListParams{
		Search: q.Get("search"),
		Type:   q.Get("type"),
		Sort:   q.Get("sort"),
		Page:   1,
		Limit:  defaultLimit,
	}

	if p.Sort == "" {
		p.Sort = defaultSort
	}
	if n, err := strconv.ParseInt(q.Get("page"), 10, 64); err == nil && n >= 1 {
		p.Page = n
	}
	if n, err := strconv.ParseInt(q.Get("limit"), 10, 64); err == nil && n >= 1 {
		p.Limit = n
	}

	return p
}

// Filter builds the Mongo filter document.
//
// A search term expands to an OR of case-insensitive substring matches on
// name, type, and abilities. A type filter is layered on top of whatever
// the search produced, so combining both intersects rather than unions.
func (p ListParams) Filter() bson.M {
	filter := bson.M{}

	if p.Search != "" {
		filter = bson.M{"$or": bson.A{
			bson.M{"name": containsRegex(p.Search)},
			bson.M{"type": containsRegex(p.Search)},
			bson.M{"abilities": containsRegex(p.Search)},
		}}
	}

	if p.Type != "" {
		filter["type"] = containsRegex(p.Type)
	}

	return filter
}

// FindOptions builds the sort/skip/limit directive: single-field ascending
// sort on the named field, skip = (page-1)*limit. Ordering of records
// missing the sort field is whatever the store defines.
func (p ListParams) FindOptions() *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: p.Sort, Value: 1}}).
		SetSkip(p.Skip()).
		SetLimit(p.Limit)
}

// Skip is the number of documents skipped before the requested page.
func (p ListParams) Skip() int64 {
	return (p.Page - 1) * p.Limit
}

// TotalPages is ceil(total/limit); 0 when there are no matches.
func TotalPages(total, limit int64) int64 {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// containsRegex is a case-insensitive substring match, mirroring the
// store's regex filter semantics rather than any tokenised text search.
func containsRegex(term string) primitive.Regex {
	return primitive.Regex{Pattern: term, Options: "i"}
}
