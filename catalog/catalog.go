// Package catalog carries the filter/pagination state for product
// listing and its encoding to backend query parameters.
package catalog

import (
	"net/url"
	"strconv"
)

// Pagination bounds.
const (
	DefaultPageSize = 12
	MaxPageSize     = 60
)

// Sort orders the backend understands.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// Query is the product listing state: one value per filter control on the
// listing screen.
type Query struct {
	Page     int
	PageSize int
	Category string
	Color    string
	Size     string
	Search   string
	Sort     string
	PriceMin int64
	PriceMax int64
}

// ParseQuery reads a Query from request parameters, clamping pagination
// to sane bounds.
func ParseQuery(values url.Values) Query {
	q := Query{
		Page:     intParam(values, "page", 1),
		PageSize: intParam(values, "pageSize", DefaultPageSize),
		Category: values.Get("category"),
		Color:    values.Get("color"),
		Size:     values.Get("size"),
		Search:   values.Get("q"),
		Sort:     values.Get("sort"),
		PriceMin: int64Param(values, "priceMin"),
		PriceMax: int64Param(values, "priceMax"),
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	switch q.Sort {
	case SortNewest, SortPriceAsc, SortPriceDesc, "":
	default:
		q.Sort = ""
	}
	return q
}

// Values encodes the query for the backend, omitting zero-valued filters.
func (q Query) Values() url.Values {
	values := url.Values{}
	values.Set("page", strconv.Itoa(q.Page))
	values.Set("pageSize", strconv.Itoa(q.PageSize))
	setNonEmpty(values, "category", q.Category)
	setNonEmpty(values, "color", q.Color)
	setNonEmpty(values, "size", q.Size)
	setNonEmpty(values, "q", q.Search)
	setNonEmpty(values, "sort", q.Sort)
	if q.PriceMin > 0 {
		values.Set("priceMin", strconv.FormatInt(q.PriceMin, 10))
	}
	if q.PriceMax > 0 {
		values.Set("priceMax", strconv.FormatInt(q.PriceMax, 10))
	}
	return values
}

func setNonEmpty(values url.Values, key, value string) {
	if value != "" {
		values.Set(key, value)
	}
}

func intParam(values url.Values, key string, fallback int) int {
	raw := values.Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func int64Param(values url.Values, key string) int64 {
	n, err := strconv.ParseInt(values.Get(key), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
