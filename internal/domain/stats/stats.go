package stats

// Unspecified labels recipes without a cuisine feature.
const Unspecified = "Unspecified"

// CuisineCount is one row of the cuisine histogram.
type CuisineCount struct {
	cuisine string
	count   int
}

// NewCuisineCount creates a histogram row. The label is kept as given: only a
// missing cuisine is grouped under Unspecified, and that happens in the query.
func NewCuisineCount(cuisine string, count int) CuisineCount {
	return CuisineCount{cuisine: cuisine, count: count}
}

// Cuisine returns the cuisine label.
func (c CuisineCount) Cuisine() string { return c.cuisine }

// Count returns the number of recipes with this cuisine.
func (c CuisineCount) Count() int { return c.count }

// Percent returns this row's share of total in [0, 100].
func (c CuisineCount) Percent(total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(c.count) * 100 / float64(total)
}

// Total sums the counts of all rows.
func Total(rows []CuisineCount) int {
	n := 0
	for _, r := range rows {
		n += r.count
	}
	return n
}
