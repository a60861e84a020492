package analytics

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/core"
)

// Week of Monday 2025-01-06 .. Sunday 2025-01-12.
var (
	monday   = time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	saturday = time.Date(2025, 1, 11, 18, 30, 0, 0, time.UTC)
	sunday   = time.Date(2025, 1, 12, 9, 15, 0, 0, time.UTC)
	weekOf   = core.Period{
		Label:     "week",
		StartDate: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		EndDate:   core.EndOfDay(sunday),
	}
)

func tx(id string, amount float64, category string, date time.Time) core.Transaction {
	return core.Transaction{ID: id, UserID: "u1", Amount: amount, Category: category, Date: date}
}

func scenarioWeek() []core.Transaction {
	return []core.Transaction{
		tx("1", 100, "food", monday),
		tx("2", 50, "food", saturday),
		tx("3", 10, "transport", sunday),
	}
}

func TestAggregate_WeekScenario(t *testing.T) {
	snap := Aggregate(scenarioWeek(), weekOf)

	assert.Equal(t, 160.0, snap.TotalSpent)
	assert.Equal(t, 3, snap.TransactionCount)
	assert.Equal(t, map[string]float64{"food": 150, "transport": 10}, snap.CategoryTotals)
	assert.InDelta(t, 53.3333, snap.AveragePerTransaction, 1e-4)
}

func TestAggregate_EmptyIsZero(t *testing.T) {
	snap := Aggregate(nil, weekOf)
	assert.Equal(t, 0.0, snap.TotalSpent)
	assert.Equal(t, 0, snap.TransactionCount)
	assert.Equal(t, 0.0, snap.AveragePerTransaction)
	assert.False(t, math.IsNaN(snap.AveragePerTransaction))
	assert.Empty(t, snap.CategoryTotals)
}

func TestAggregate_FiltersRangeAndEligibility(t *testing.T) {
	txs := []core.Transaction{
		tx("in-start", 1, "a", weekOf.StartDate),
		tx("in-end", 2, "a", weekOf.EndDate),
		tx("before", 4, "a", weekOf.StartDate.Add(-time.Nanosecond)),
		tx("after", 8, "a", weekOf.EndDate.Add(time.Nanosecond)),
		{ID: "income", UserID: "u1", Amount: 16, Category: "salary", Date: monday, Type: core.Income},
		{ID: "typed", UserID: "u1", Amount: 32, Category: "a", Date: monday, Type: core.Expense},
	}
	snap := Aggregate(txs, weekOf)
	assert.Equal(t, 35.0, snap.TotalSpent)
	assert.Equal(t, 3, snap.TransactionCount)
	assert.NotContains(t, snap.CategoryTotals, "salary")
}

func TestGroupByCategory_SortedWithPercentages(t *testing.T) {
	groups := GroupByCategory(scenarioWeek())
	require.Len(t, groups, 2)

	assert.Equal(t, core.CategoryGroup{Category: "food", TotalSpent: 150, Count: 2, AvgAmount: 75, Percentage: 93.75}, groups[0])
	assert.Equal(t, core.CategoryGroup{Category: "transport", TotalSpent: 10, Count: 1, AvgAmount: 10, Percentage: 6.25}, groups[1])
}

func TestGroupByCategory_TiesKeepFirstEncounter(t *testing.T) {
	txs := []core.Transaction{
		tx("1", 5, "b", monday),
		tx("2", 9, "c", monday),
		tx("3", 5, "a", monday),
		tx("4", 4, "b", monday),
		tx("5", 9, "a", monday),
	}
	// b=9, c=9, a=14
	var order []string
	for _, g := range GroupByCategory(txs) {
		order = append(order, g.Category)
	}
	assert.Equal(t, []string{"a", "b", "c"}, order)

	// identical input, identical output
	assert.Equal(t, GroupByCategory(txs), GroupByCategory(txs))
}

func TestGroupByCategory_ZeroTotalHasZeroPercentages(t *testing.T) {
	groups := GroupByCategory([]core.Transaction{tx("1", 0, "a", monday), tx("2", 0, "b", monday)})
	require.Len(t, groups, 2)
	for _, g := range groups {
		assert.Equal(t, 0.0, g.Percentage)
		assert.False(t, math.IsNaN(g.Percentage))
	}
	assert.Empty(t, GroupByCategory(nil))
}

func TestGroupByCategory_MatchesAggregate(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	categories := []string{"food", "rent", "fun", "transport", "health", core.DefaultCategory}
	for round := 0; round < 50; round++ {
		var txs []core.Transaction
		n := rng.Intn(40)
		for i := 0; i < n; i++ {
			d := weekOf.StartDate.AddDate(0, 0, rng.Intn(14)-3).Add(time.Duration(rng.Intn(86400)) * time.Second)
			x := tx(fmt.Sprint(i), math.Round(rng.Float64()*50000)/100, categories[rng.Intn(len(categories))], d)
			if rng.Intn(5) == 0 {
				x.Type = core.Income
			}
			txs = append(txs, x)
		}

		snap := Aggregate(txs, weekOf)
		groups := GroupByCategory(FilterPeriod(txs, weekOf))

		var sum, pct float64
		for i, g := range groups {
			sum += g.TotalSpent
			pct += g.Percentage
			if i > 0 && groups[i-1].TotalSpent != g.TotalSpent {
				assert.Greater(t, groups[i-1].TotalSpent, g.TotalSpent, "round %d not sorted", round)
			}
		}
		assert.InDelta(t, snap.TotalSpent, sum, 1e-6, "round %d", round)

		var catSum float64
		for _, v := range snap.CategoryTotals {
			catSum += v
		}
		assert.InDelta(t, snap.TotalSpent, catSum, 1e-6, "round %d", round)

		if snap.TotalSpent > 0 {
			assert.InDelta(t, 100, pct, 0.1, "round %d", round)
			assert.InDelta(t, snap.TotalSpent/float64(snap.TransactionCount), snap.AveragePerTransaction, 1e-9)
		}
	}
}

func TestGroupByDay_SparseAndAscending(t *testing.T) {
	r := NewResolver(fixedClock(time.Date(2025, 4, 30, 20, 0, 0, 0, time.UTC)))
	window, err := r.Trailing(30)
	require.NoError(t, err)

	var txs []core.Transaction
	for i := 0; i < 20; i++ {
		txs = append(txs, tx(fmt.Sprint(i), 2.5, "food", time.Date(2025, 4, 17, i, 0, 0, 0, time.UTC)))
	}
	days := GroupByDay(FilterPeriod(txs, window))
	require.Len(t, days, 1, "days without transactions must be absent, not zero-filled")
	assert.Equal(t, core.DailyAmount{Date: "2025-04-17", Amount: 50}, days[0])
	assert.Equal(t, 50.0, AverageActiveDay(days))

	days = GroupByDay([]core.Transaction{
		tx("c", 3, "x", time.Date(2025, 4, 20, 23, 59, 0, 0, time.UTC)),
		tx("a", 1, "x", time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)),
		tx("b", 2, "x", time.Date(2025, 4, 20, 0, 1, 0, 0, time.UTC)),
	})
	assert.Equal(t, []core.DailyAmount{{Date: "2025-04-02", Amount: 1}, {Date: "2025-04-20", Amount: 5}}, days)
	assert.Equal(t, 0.0, AverageActiveDay(nil))
}

func TestTopExpenses(t *testing.T) {
	txs := []core.Transaction{
		tx("a", 10, "x", monday),
		tx("b", 30, "x", monday),
		{ID: "salary", UserID: "u1", Amount: 1000, Category: "pay", Date: monday, Type: core.Income},
		tx("c", 30, "x", monday),
		tx("d", 5, "x", monday),
	}
	top, err := TopExpenses(txs, 3)
	require.NoError(t, err)
	ids := []string{top[0].ID, top[1].ID, top[2].ID}
	assert.Equal(t, []string{"b", "c", "a"}, ids)

	all, err := TopExpenses(txs, 10)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = TopExpenses(txs, 0)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}
