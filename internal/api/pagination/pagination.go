package pagination

import (
	"math"
	"net/http"
	"strconv"
	"strings"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100

	// Media listings allow larger pages for the admin picker.
	MediaDefaultPerPage = 50
	MediaMaxPerPage     = 500
)

// Page is a normalized page/per_page pair. Page is 1-based.
type Page struct {
	Page    int
	PerPage int
}

func (p Page) Limit() int {
	return p.PerPage
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Normalize floors page at 1 and clamps perPage into [1, max], substituting
// def when perPage is not positive. Page is capped so Offset stays within
// the int32 range Postgres accepts without overflow.
func Normalize(page, perPage, def, max int) Page {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = def
	}
	if perPage > max {
		perPage = max
	}
	if limit := math.MaxInt32/perPage + 1; page > limit {
		page = limit
	}
	return Page{Page: page, PerPage: perPage}
}

// FromRequest reads page and per_page from the query string. Unparseable
// values fall back to defaults rather than failing the request.
func FromRequest(r *http.Request, def, max int) Page {
	values := r.URL.Query()
	return Normalize(atoi(values.Get("page")), atoi(values.Get("per_page")), def, max)
}

func atoi(value string) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return parsed
}

// SearchPattern wraps q for a case-insensitive ILIKE substring match.
// LIKE metacharacters in q are escaped.
func SearchPattern(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return ""
	}
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(q) + "%"
}
