package analytics

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"spendwise/internal/core"
)

const (
	// DefaultTrendMonths is the trend length used when the caller gives none.
	DefaultTrendMonths = 6

	// maxParallelFetches bounds concurrent source queries per trend.
	maxParallelFetches = 4
)

// FetchFunc returns the transactions of one period from a transaction source.
type FetchFunc func(ctx context.Context, p core.Period) ([]core.Transaction, error)

// BuildTrend aggregates each of the last monthsBack calendar months, oldest
// first. Periods are fetched concurrently but emitted in chronological order.
// Any fetch failure fails the whole trend.
func BuildTrend(ctx context.Context, r *Resolver, fetch FetchFunc, monthsBack int) ([]core.TrendPoint, error) {
	periods, err := r.ResolveSeries(monthsBack, UnitMonth)
	if err != nil {
		return nil, err
	}

	points := make([]core.TrendPoint, len(periods))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)
	for i, p := range periods {
		g.Go(func() error {
			txs, err := fetch(gctx, p)
			if err != nil {
				return asFetchError(err, p)
			}
			snap := Aggregate(txs, p)
			points[i] = core.TrendPoint{
				Label:            p.Label,
				TotalSpent:       snap.TotalSpent,
				TransactionCount: snap.TransactionCount,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

func asFetchError(err error, p core.Period) error {
	var fe *core.FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &core.FetchError{Source: "transactions", Period: p.Label, Err: err}
}
