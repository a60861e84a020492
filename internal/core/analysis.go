package core

const (
	InsightHighCategory InsightKind = "high_category_spending"
	InsightWeekend      InsightKind = "weekend_spending"
	InsightAverageDaily InsightKind = "average_daily"
)

type (
	InsightKind string

	// AggregateSnapshot is the reduced summary of the spend-eligible
	// transactions of one period. AveragePerTransaction is full precision and 0
	// when there are no transactions.
	AggregateSnapshot struct {
		TotalSpent            float64            `json:"totalSpent"`
		TransactionCount      int                `json:"transactionCount"`
		CategoryTotals        map[string]float64 `json:"categoryTotals"`
		AveragePerTransaction float64            `json:"averagePerTransaction"`
	}

	// CategoryGroup is one row of a category breakdown.
	CategoryGroup struct {
		Category   string  `json:"category"`
		TotalSpent float64 `json:"totalSpent"`
		Count      int     `json:"count"`
		AvgAmount  float64 `json:"avgAmount"`
		Percentage float64 `json:"percentage"`
	}

	// DailyAmount is the spend of a single calendar day.
	DailyAmount struct {
		Date   string  `json:"date"`
		Amount float64 `json:"amount"`
	}

	// TrendPoint is one period of a spending trend.
	TrendPoint struct {
		Label            string  `json:"label"`
		TotalSpent       float64 `json:"totalSpent"`
		TransactionCount int     `json:"transactionCount"`
	}

	// Insight is a human-readable observation with its machine-readable values.
	Insight struct {
		Kind    InsightKind    `json:"kind"`
		Message string         `json:"message"`
		Payload map[string]any `json:"payload"`
	}
)
