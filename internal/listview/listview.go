// Package listview is the pure part of every list screen: text search, facet filters
// and aggregates over an already-fetched collection.
package listview

import (
	"slices"
	"strings"
)

// AllFacet selects every value of a facet filter
const AllFacet = "ALL"

// Matches reports whether any field contains the trimmed query, case-insensitively.
// A blank query matches everything.
func Matches(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Filter returns the items kept by every predicate, in their original order.
// The input slice is never modified.
func Filter[T any](items []T, keep ...func(T) bool) []T {
	out := make([]T, 0, len(items))
outer:
	for _, item := range items {
		for _, k := range keep {
			if k != nil && !k(item) {
				continue outer
			}
		}
		out = append(out, item)
	}
	return out
}

// Search filters items by a text query over the fields returned by fields, plus any
// facet predicates
func Search[T any](items []T, query string, fields func(T) []string, facets ...func(T) bool) []T {
	keep := append([]func(T) bool{func(item T) bool {
		return Matches(query, fields(item)...)
	}}, facets...)
	return Filter(items, keep...)
}

// Facet builds a predicate that keeps items whose key equals selected; AllFacet or a
// blank selection keeps everything
func Facet[T any](selected string, key func(T) string) func(T) bool {
	if selected == "" || selected == AllFacet {
		return nil
	}
	return func(item T) bool {
		return key(item) == selected
	}
}

// CountBy counts items per key
func CountBy[T any, K comparable](items []T, key func(T) K) map[K]int {
	counts := make(map[K]int)
	for _, item := range items {
		counts[key(item)]++
	}
	return counts
}

// Count counts items matching pred
func Count[T any](items []T, pred func(T) bool) int {
	n := 0
	for _, item := range items {
		if pred(item) {
			n++
		}
	}
	return n
}

// Distinct returns the sorted distinct non-blank keys of items
func Distinct[T any](items []T, key func(T) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, item := range items {
		k := strings.TrimSpace(key(item))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Replace returns a copy of items with every item matching pred replaced by fn(item)
func Replace[T any](items []T, pred func(T) bool, fn func(T) T) []T {
	out := make([]T, len(items))
	for i, item := range items {
		if pred(item) {
			out[i] = fn(item)
		} else {
			out[i] = item
		}
	}
	return out
}
