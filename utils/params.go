package utils

import (
	"net/http"
	"strconv"
)

type QueryOptions struct {
	Page     int
	Limit    int
	Category string
	Search   string
	FarmerID string
}

// ParseQueryOptions reads common listing parameters with sane defaults.
func ParseQueryOptions(r *http.Request) QueryOptions {
	q := r.URL.Query()
	opts := QueryOptions{Page: 1, Limit: 20}

	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		opts.Page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= 100 {
		opts.Limit = l
	}
	opts.Category = q.Get("category")
	opts.Search = NormalizeSearch(q.Get("search"))
	opts.FarmerID = q.Get("farmerId")
	return opts
}

func (o QueryOptions) Skip() int64 {
	return int64((o.Page - 1) * o.Limit)
}
