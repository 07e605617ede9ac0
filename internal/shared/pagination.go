package shared

import (
	"net/http"
	"strconv"
)

// DefaultPageLimit bounds listings when the caller does not ask for a size.
const DefaultPageLimit = 10

// PageLimit reads the page_limit query parameter, falling back to the
// default for missing or unusable values.
func PageLimit(r *http.Request) int {
	raw := r.URL.Query().Get("page_limit")
	if raw == "" {
		return DefaultPageLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return DefaultPageLimit
	}
	return limit
}
