// Package analytics derives spending summaries, trends, breakdowns and
// insights from a user's transactions.
//
// The functions in this package are pure: they never fetch, log or mutate
// their input. Transactions are expected to be normalised at ingestion
// (see core.Transaction.Normalize).
package analytics

import (
	"sort"

	"spendwise/internal/core"
)

// categoryAccumulator collects the running totals of one category.
type categoryAccumulator struct {
	category string
	total    float64
	count    int
}

// categoryTotals is the single-pass reduction shared by Aggregate,
// GroupByCategory and the insight rules. order keeps first-encounter order.
type categoryTotals struct {
	byName map[string]*categoryAccumulator
	order  []*categoryAccumulator
	total  float64
	count  int
}

func reduceByCategory(txs []core.Transaction) *categoryTotals {
	ct := &categoryTotals{byName: make(map[string]*categoryAccumulator)}
	for _, tx := range txs {
		if !tx.IsSpendEligible() {
			continue
		}
		acc, ok := ct.byName[tx.Category]
		if !ok {
			acc = &categoryAccumulator{category: tx.Category}
			ct.byName[tx.Category] = acc
			ct.order = append(ct.order, acc)
		}
		acc.total += tx.Amount
		acc.count++
		ct.total += tx.Amount
		ct.count++
	}
	return ct
}

// sorted returns the accumulators by descending total. Ties keep
// first-encounter order.
func (ct *categoryTotals) sorted() []*categoryAccumulator {
	out := make([]*categoryAccumulator, len(ct.order))
	copy(out, ct.order)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].total > out[j].total
	})
	return out
}

// FilterPeriod returns the spend-eligible transactions dated inside p.
func FilterPeriod(txs []core.Transaction, p core.Period) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.IsSpendEligible() && p.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	return out
}

// Aggregate reduces the spend-eligible transactions inside p. An empty
// selection yields a zero snapshot, never an error.
func Aggregate(txs []core.Transaction, p core.Period) core.AggregateSnapshot {
	ct := reduceByCategory(FilterPeriod(txs, p))
	snap := core.AggregateSnapshot{
		TotalSpent:       ct.total,
		TransactionCount: ct.count,
		CategoryTotals:   make(map[string]float64, len(ct.order)),
	}
	for _, acc := range ct.order {
		snap.CategoryTotals[acc.category] = acc.total
	}
	if ct.count > 0 {
		snap.AveragePerTransaction = ct.total / float64(ct.count)
	}
	return snap
}

// GroupByCategory groups the spend-eligible transactions by category, sorted
// by descending total with ties in first-encounter order. Percentages are of
// the grand total; all are 0 when the grand total is 0.
func GroupByCategory(txs []core.Transaction) []core.CategoryGroup {
	ct := reduceByCategory(txs)
	groups := make([]core.CategoryGroup, 0, len(ct.order))
	for _, acc := range ct.sorted() {
		g := core.CategoryGroup{
			Category:   acc.category,
			TotalSpent: acc.total,
			Count:      acc.count,
			AvgAmount:  core.Round2(acc.total / float64(acc.count)),
		}
		if ct.total > 0 {
			g.Percentage = core.Round2(acc.total / ct.total * 100)
		}
		groups = append(groups, g)
	}
	return groups
}

// GroupByDay sums the spend-eligible transactions per calendar date, in
// ascending date order. Days without transactions are omitted, not zero-filled.
func GroupByDay(txs []core.Transaction) []core.DailyAmount {
	byDay := make(map[string]float64)
	for _, tx := range txs {
		if !tx.IsSpendEligible() {
			continue
		}
		byDay[core.DayKey(tx.Date)] += tx.Amount
	}
	days := make([]core.DailyAmount, 0, len(byDay))
	for day, amount := range byDay {
		days = append(days, core.DailyAmount{Date: day, Amount: amount})
	}
	// YYYY-MM-DD sorts lexically in date order
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})
	return days
}

// AverageActiveDay returns the mean spend over the days present in days,
// rounded to two decimals, or 0 when days is empty.
func AverageActiveDay(days []core.DailyAmount) float64 {
	if len(days) == 0 {
		return 0
	}
	var sum float64
	for _, d := range days {
		sum += d.Amount
	}
	return core.Round2(sum / float64(len(days)))
}

// TopExpenses returns up to limit spend-eligible transactions by descending
// amount. Equal amounts keep input order.
func TopExpenses(txs []core.Transaction, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		return nil, core.InvalidArgument("limit must be positive, got %d", limit)
	}
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.IsSpendEligible() {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount > out[j].Amount
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
