// Package bind decodes an HTTP request body into a struct. Validation is
// the caller's job: on the create path it must run after the enrichment
// merge has filled in missing fields, so decoding and validating are
// separate steps.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/errycx/pokedex-api/config"
)

// JSON decodes r.Body as JSON into dest. The body is capped at
// MAX_BODY_BYTES (default 4 MB).
func JSON(r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, config.MaxBodyBytes())

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
