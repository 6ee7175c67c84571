// Package listing holds the pure in-memory query engine applied to the
// project feed. It is shared by the HTTP service and the device client
// and has no side effects: inputs are never mutated and every call
// returns a fresh slice.
package listing

import (
	"sort"
	"strconv"
	"strings"

	"github.com/projboard/projboard/internal/domain/entity"
)

// SortMode selects the feed ordering.
type SortMode string

const (
	SortMostRecent   SortMode = "most_recent"
	SortHighestValue SortMode = "highest_value"
	SortLowestValue  SortMode = "lowest_value"
)

// ParseSortMode maps a query-string value to a SortMode, defaulting to
// SortMostRecent for anything unrecognized.
func ParseSortMode(s string) SortMode {
	switch SortMode(s) {
	case SortHighestValue, SortLowestValue:
		return SortMode(s)
	default:
		return SortMostRecent
	}
}

// Query filters items by a case-insensitive substring match on Title
// (empty search matches everything) and orders the result by mode.
// Sorting is stable: items with equal keys keep their relative order.
func Query(items []entity.Listing, search string, mode SortMode) []entity.Listing {
	needle := strings.ToLower(strings.TrimSpace(search))

	out := make([]entity.Listing, 0, len(items))
	for _, it := range items {
		if needle == "" || strings.Contains(strings.ToLower(it.Title), needle) {
			out = append(out, it)
		}
	}

	switch mode {
	case SortHighestValue:
		sort.SliceStable(out, func(i, j int) bool {
			return sortValue(out[i]) > sortValue(out[j])
		})
	case SortLowestValue:
		sort.SliceStable(out, func(i, j int) bool {
			return sortValue(out[i]) < sortValue(out[j])
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return recency(out[i]) > recency(out[j])
		})
	}
	return out
}

// recency is the newest-first sort key. Device clients embed a
// millisecond timestamp in the ID; server rows carry UUID ids and a
// real CreatedAt, which reduces to the same scale. A listing with
// neither ranks as 0 and keeps insertion order.
func recency(l entity.Listing) int64 {
	if n := idNum(l.ID); n > 0 {
		return n
	}
	if l.CreatedAt.IsZero() {
		return 0
	}
	return l.CreatedAt.UnixMilli()
}

// sortValue prefers the pre-parsed Price and falls back to parsing the
// display string, so cached listings that never went through the server
// still sort correctly.
func sortValue(l entity.Listing) float64 {
	if l.Price != 0 {
		return l.Price
	}
	return ParsePrice(l.DisplayPrice)
}

// ParsePrice converts a pt-BR formatted price ("1.500,00") to its
// numeric value. Thousands-separator periods are stripped and the
// decimal comma becomes a period. Malformed input yields 0.
func ParsePrice(display string) float64 {
	s := strings.TrimSpace(display)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// idNum extracts the numeric value embedded in a listing ID. Device
// clients generate millisecond-timestamp IDs, so larger means newer.
// Non-numeric IDs (server UUIDs) yield 0.
func idNum(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
