package listview

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

type row struct {
	ID       string
	Name     string
	Category string
}

func rowFields(r row) []string {
	return []string{r.ID, r.Name, r.Category}
}

var rows = []row{
	{"GAUZE-001", "Sterile gauze", "Consumables"},
	{"GLOVE-010", "Nitrile gloves", "Consumables"},
	{"ANES-002", "Lidocaine 2%", "Anesthetics"},
	{"BUR-100", "Diamond bur", ""},
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches("", "anything"))
	assert.True(t, Matches("   ", "anything"))
	assert.True(t, Matches("GAU", "Sterile gauze"))
	assert.True(t, Matches(" gauze ", "Sterile gauze"))
	assert.True(t, Matches("\tGAUZE-001\n", "GAUZE-001"))
	assert.False(t, Matches("xyz", "Sterile gauze", "GAUZE-001"))
	assert.False(t, Matches("x"))
}

func TestSearch(t *testing.T) {
	got := Search(rows, "consum", rowFields)
	assert.Len(t, got, 2)

	got = Search(rows, "gl", rowFields, Facet(AllFacet, func(r row) string { return r.Category }))
	assert.Equal(t, []row{rows[1]}, got)

	got = Search(rows, "", rowFields, Facet("Anesthetics", func(r row) string { return r.Category }))
	assert.Equal(t, []row{rows[2]}, got)

	assert.Empty(t, Search(rows, "nothing here", rowFields))
	assert.Equal(t, Search(rows, "consum", rowFields), Search(rows, "  consum  ", rowFields))
}

func TestCountByAndDistinct(t *testing.T) {
	counts := CountBy(rows, func(r row) string { return r.Category })
	assert.Equal(t, 2, counts["Consumables"])
	assert.Equal(t, 1, counts[""])

	assert.Equal(t, []string{"Anesthetics", "Consumables"}, Distinct(rows, func(r row) string { return r.Category }))
	assert.Equal(t, 3, Count(rows, func(r row) bool { return r.Category != "" }))
}

func TestReplace(t *testing.T) {
	out := Replace(rows, func(r row) bool { return r.ID == "BUR-100" }, func(r row) row {
		r.Category = "Instruments"
		return r
	})
	assert.Equal(t, "Instruments", out[3].Category)
	assert.Equal(t, "", rows[3].Category)
}

func rowGen() gopter.Gen {
	return gopter.CombineGens(
		gen.Identifier(),
		gen.AlphaString(),
		gen.OneConstOf("Consumables", "Anesthetics", "Instruments", ""),
	).Map(func(vals []interface{}) row {
		return row{ID: vals[0].(string), Name: vals[1].(string), Category: vals[2].(string)}
	})
}

func TestFilterProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("Filtered rows are an ordered subset of the collection", prop.ForAll(
		func(items []row, query string) bool {
			filtered := Search(items, query, rowFields)
			i := 0
			for _, f := range filtered {
				for i < len(items) && items[i] != f {
					i++
				}
				if i == len(items) {
					return false
				}
				i++
			}
			return len(filtered) <= len(items)
		},
		gen.SliceOf(rowGen()),
		gen.AlphaString(),
	))

	properties.Property("An empty query keeps the whole collection", prop.ForAll(
		func(items []row) bool {
			filtered := Search(items, "", rowFields)
			if len(filtered) != len(items) {
				return false
			}
			for i := range items {
				if filtered[i] != items[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(rowGen()),
	))

	properties.Property("Every kept row contains the query", prop.ForAll(
		func(items []row, query string) bool {
			for _, r := range Search(items, query, rowFields) {
				q := strings.ToLower(query)
				if !strings.Contains(strings.ToLower(r.ID), q) &&
					!strings.Contains(strings.ToLower(r.Name), q) &&
					!strings.Contains(strings.ToLower(r.Category), q) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(rowGen()),
		gen.OneConstOf("a", "GL", "co", "z", "xyz", "E"),
	))

	properties.Property("Aggregates over the collection do not change while searching", prop.ForAll(
		func(items []row, query string) bool {
			before := CountBy(items, func(r row) string { return r.Category })
			_ = Search(items, query, rowFields)
			after := CountBy(items, func(r row) string { return r.Category })
			if len(before) != len(after) {
				return false
			}
			for k, v := range before {
				if after[k] != v {
					return false
				}
			}
			return true
		},
		gen.SliceOf(rowGen()),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
