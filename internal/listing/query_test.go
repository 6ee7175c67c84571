package listing

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projboard/projboard/internal/domain/entity"
)

func feed() []entity.Listing {
	return []entity.Listing{
		{ID: "1700000000001", Title: "Site institucional", DisplayPrice: "1.500,00"},
		{ID: "1700000000002", Title: "App de delivery", DisplayPrice: "20,00"},
		{ID: "1700000000003", Title: "Landing page", DisplayPrice: "350,50"},
		{ID: "not-a-number", Title: "Logo design", DisplayPrice: "abc"},
	}
}

func titles(items []entity.Listing) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}

func TestQueryEmptySearchMostRecent(t *testing.T) {
	in := feed()
	got := Query(in, "", SortMostRecent)

	require.Len(t, got, 4)
	// Descending by numeric id; the non-numeric id ranks as 0, last.
	assert.Equal(t, []string{"Landing page", "App de delivery", "Site institucional", "Logo design"}, titles(got))
	// Input untouched.
	assert.Equal(t, "Site institucional", in[0].Title)
}

func TestQueryNoMatch(t *testing.T) {
	got := Query(feed(), "xyz-no-match", SortMostRecent)
	assert.Empty(t, got)
}

func TestQueryFilterIsCaseInsensitive(t *testing.T) {
	got := Query(feed(), "SITE", SortMostRecent)
	require.Len(t, got, 1)
	assert.Equal(t, "Site institucional", got[0].Title)
}

func TestQueryHighestValue(t *testing.T) {
	got := Query(feed(), "", SortHighestValue)
	// 1500.00 > 350.50 > 20.00 > 0 (unparsable)
	assert.Equal(t, []string{"Site institucional", "Landing page", "App de delivery", "Logo design"}, titles(got))
}

func TestQueryLowestValue(t *testing.T) {
	got := Query(feed(), "", SortLowestValue)
	assert.Equal(t, []string{"Logo design", "App de delivery", "Landing page", "Site institucional"}, titles(got))
}

func TestQueryMostRecentUUIDIDs(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	// Insertion order (oldest first), the order the server repository
	// returns rows in.
	in := []entity.Listing{
		{ID: "0b7e1c2a-4f6d-4b6e-9a1a-111111111111", Title: "oldest", CreatedAt: base},
		{ID: "8c2f9d3b-1a5e-4c7f-8b2b-222222222222", Title: "middle", CreatedAt: base.Add(time.Hour)},
		{ID: "f4a6e8d0-3c9b-4d1a-7c3c-333333333333", Title: "newest", CreatedAt: base.Add(2 * time.Hour)},
	}
	got := Query(in, "", SortMostRecent)
	assert.Equal(t, []string{"newest", "middle", "oldest"}, titles(got))
}

func TestQueryMostRecentMixedIDSources(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	in := []entity.Listing{
		{ID: "0b7e1c2a-4f6d-4b6e-9a1a-111111111111", Title: "server old", CreatedAt: base},
		{ID: strconv.FormatInt(base.Add(time.Hour).UnixMilli(), 10), Title: "device newer"},
		{ID: "8c2f9d3b-1a5e-4c7f-8b2b-222222222222", Title: "server newest", CreatedAt: base.Add(2 * time.Hour)},
	}
	got := Query(in, "", SortMostRecent)
	// Device millisecond ids and server timestamps share one scale.
	assert.Equal(t, []string{"server newest", "device newer", "server old"}, titles(got))
}

func TestQueryStableForEqualKeys(t *testing.T) {
	in := []entity.Listing{
		{ID: "a", Title: "first", DisplayPrice: "10,00"},
		{ID: "b", Title: "second", DisplayPrice: "10,00"},
		{ID: "c", Title: "third", DisplayPrice: "10,00"},
	}
	got := Query(in, "", SortHighestValue)
	assert.Equal(t, []string{"first", "second", "third"}, titles(got))
}

func TestQueryPrefersParsedPrice(t *testing.T) {
	in := []entity.Listing{
		{ID: "a", Title: "cheap", Price: 5},
		{ID: "b", Title: "pricey", Price: 500},
	}
	got := Query(in, "", SortHighestValue)
	assert.Equal(t, []string{"pricey", "cheap"}, titles(got))
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1.500,00", 1500},
		{"20,00", 20},
		{"350,50", 350.5},
		{"1.234.567,89", 1234567.89},
		{" 42,10 ", 42.1},
		{"", 0},
		{"abc", 0},
		{"12,34,56", 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParsePrice(c.in), "input %q", c.in)
	}
}

func TestParseSortMode(t *testing.T) {
	assert.Equal(t, SortHighestValue, ParseSortMode("highest_value"))
	assert.Equal(t, SortLowestValue, ParseSortMode("lowest_value"))
	assert.Equal(t, SortMostRecent, ParseSortMode(""))
	assert.Equal(t, SortMostRecent, ParseSortMode("garbage"))
}
