package analytics

import (
	"fmt"
	"time"

	"spendwise/internal/core"
)

// WeekendSkewMultiplier is how much larger weekend spend must be than weekday
// spend before the weekend insight fires. Weekends hold 2 of 7 days, so short
// windows rarely reach it; the bias is accepted as is.
const WeekendSkewMultiplier = 1.3

// DeriveInsights evaluates the insight rules in order: dominant category,
// weekend skew, average daily spend. The last rule always fires, so the result
// is never empty. periodLengthDays must be positive.
func DeriveInsights(txs []core.Transaction, totalSpent float64, periodLengthDays int) ([]core.Insight, error) {
	if periodLengthDays <= 0 {
		return nil, core.InvalidArgument("period length must be positive, got %d", periodLengthDays)
	}
	var insights []core.Insight
	if in, ok := dominantCategory(txs, totalSpent); ok {
		insights = append(insights, in)
	}
	if in, ok := weekendSkew(txs); ok {
		insights = append(insights, in)
	}
	insights = append(insights, averageDaily(totalSpent, periodLengthDays))
	return insights, nil
}

func dominantCategory(txs []core.Transaction, totalSpent float64) (core.Insight, bool) {
	if totalSpent == 0 {
		return core.Insight{}, false
	}
	sorted := reduceByCategory(txs).sorted()
	if len(sorted) == 0 {
		return core.Insight{}, false
	}
	top := sorted[0]
	pct := top.total / totalSpent * 100
	return core.Insight{
		Kind:    core.InsightHighCategory,
		Message: fmt.Sprintf("%s is your highest expense at %s%% of total spending", top.category, core.FormatFixed(pct, 1)),
		Payload: map[string]any{
			"category":   top.category,
			"amount":     top.total,
			"percentage": core.Round(pct, 1),
		},
	}, true
}

func weekendSkew(txs []core.Transaction) (core.Insight, bool) {
	var weekend, weekday float64
	for _, tx := range txs {
		if !tx.IsSpendEligible() {
			continue
		}
		switch tx.Date.Weekday() {
		case time.Saturday, time.Sunday:
			weekend += tx.Amount
		default:
			weekday += tx.Amount
		}
	}
	if weekend <= weekday*WeekendSkewMultiplier {
		return core.Insight{}, false
	}
	return core.Insight{
		Kind:    core.InsightWeekend,
		Message: "You spend significantly more on weekends. Consider planning weekend activities with a budget.",
		Payload: map[string]any{
			"weekendTotal": weekend,
			"weekdayTotal": weekday,
		},
	}, true
}

func averageDaily(totalSpent float64, days int) core.Insight {
	avg := totalSpent / float64(days)
	return core.Insight{
		Kind:    core.InsightAverageDaily,
		Message: fmt.Sprintf("Your average daily spending is %s", core.FormatFixed(avg, 2)),
		Payload: map[string]any{
			"amount": core.Round2(avg),
			"days":   days,
		},
	}
}
