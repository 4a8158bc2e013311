package handlers

import (
	"net/http"
	"strconv"
	"strings"
)

// PathParts splits a request path into its segments, trailing slash
// trimmed. For /api/v1/markets/7/quote it returns
// ["api","v1","markets","7","quote"].
func PathParts(r *http.Request) []string {
	return strings.Split(strings.Trim(r.URL.Path, "/"), "/")
}

// ExtractLimitOffset reads the limit and offset query parameters with
// fallbacks for missing or invalid values. Pagination here is
// caller-driven: these go straight through to the upstream query.
func ExtractLimitOffset(r *http.Request, defaultLimit int) (int, int) {
	limit := defaultLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}

	offset := 0
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			offset = v
		}
	}
	return limit, offset
}

// ExtractInt64 reads one int64 query parameter, zero when absent or
// invalid.
func ExtractInt64(r *http.Request, name string) int64 {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// ExtractOptionalUint64 reads one uint64 query parameter, nil when
// absent or invalid.
func ExtractOptionalUint64(r *http.Request, name string) *uint64 {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
