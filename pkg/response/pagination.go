package response

import (
	"net/http"
	"strconv"
)

// Pagination defaults shared by list endpoints
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ParsePage reads ?page= and ?limit= from the request, clamping to sane values
func ParsePage(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}
	return page, limit
}
