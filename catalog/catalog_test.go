package catalog

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuery_Defaults(t *testing.T) {
	q := ParseQuery(url.Values{})

	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPageSize, q.PageSize)
	assert.Empty(t, q.Sort)
}

func TestParseQuery_ClampsPagination(t *testing.T) {
	q := ParseQuery(url.Values{
		"page":     {"-3"},
		"pageSize": {"500"},
	})

	assert.Equal(t, 1, q.Page)
	assert.Equal(t, MaxPageSize, q.PageSize)
}

func TestParseQuery_GarbageFallsBackToDefaults(t *testing.T) {
	q := ParseQuery(url.Values{
		"page":     {"two"},
		"pageSize": {"many"},
		"priceMin": {"cheap"},
	})

	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPageSize, q.PageSize)
	assert.Zero(t, q.PriceMin)
}

func TestParseQuery_UnknownSortDropped(t *testing.T) {
	q := ParseQuery(url.Values{"sort": {"alphabetical"}})

	assert.Empty(t, q.Sort)
}

func TestParseQuery_ReadsFilters(t *testing.T) {
	q := ParseQuery(url.Values{
		"category": {"ao-thun"},
		"color":    {"black"},
		"size":     {"M"},
		"q":        {"oversize"},
		"sort":     {SortPriceAsc},
		"priceMin": {"100000"},
		"priceMax": {"500000"},
	})

	assert.Equal(t, "ao-thun", q.Category)
	assert.Equal(t, "black", q.Color)
	assert.Equal(t, "M", q.Size)
	assert.Equal(t, "oversize", q.Search)
	assert.Equal(t, SortPriceAsc, q.Sort)
	assert.Equal(t, int64(100000), q.PriceMin)
	assert.Equal(t, int64(500000), q.PriceMax)
}

func TestValues_OmitsZeroValuedFilters(t *testing.T) {
	values := Query{Page: 1, PageSize: DefaultPageSize}.Values()

	assert.Equal(t, "1", values.Get("page"))
	assert.Equal(t, "12", values.Get("pageSize"))
	for _, key := range []string{"category", "color", "size", "q", "sort", "priceMin", "priceMax"} {
		_, present := values[key]
		assert.False(t, present, "%s must be omitted when unset", key)
	}
}

func TestValues_RoundTripsThroughParse(t *testing.T) {
	q := Query{
		Page:     3,
		PageSize: 24,
		Category: "jeans",
		Search:   "slim",
		Sort:     SortPriceDesc,
		PriceMax: 900000,
	}

	assert.Equal(t, q, ParseQuery(q.Values()))
}
