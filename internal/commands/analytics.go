package commands

import (
	"context"

	"github.com/spf13/cobra"

	"spendwise/internal/analytics"
)

func newSummaryCommand(opts *options) *cobra.Command {
	var year, month int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Spending summary of one calendar month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, svc *analytics.Service) (any, error) {
				return svc.MonthlySummary(ctx, opts.userID, year, month)
			})
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "year (default current)")
	cmd.Flags().IntVar(&month, "month", 0, "month 1-12 (default current)")

	return cmd
}

func newTrendsCommand(opts *options) *cobra.Command {
	var months int

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Monthly spending over the last months, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, svc *analytics.Service) (any, error) {
				return svc.Trends(ctx, opts.userID, months)
			})
		},
	}

	cmd.Flags().IntVar(&months, "months", opts.cfg.TrendMonths, "number of calendar months")

	return cmd
}

func newCategoriesCommand(opts *options) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Spending by category over a week, month or year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, svc *analytics.Service) (any, error) {
				return svc.CategoryAnalysis(ctx, opts.userID, period)
			})
		},
	}

	cmd.Flags().StringVar(&period, "period", analytics.DefaultCategoryToken, "week, month or year")

	return cmd
}

func newDailyCommand(opts *options) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Per-day spending over the trailing days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, svc *analytics.Service) (any, error) {
				return svc.DailyPattern(ctx, opts.userID, days)
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", opts.cfg.DailyWindowDays, "window length in days")

	return cmd
}

func newTopCommand(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Largest expenses of all time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, svc *analytics.Service) (any, error) {
				return svc.TopExpenses(ctx, opts.userID, limit)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", opts.cfg.TopExpensesLimit, "maximum number of expenses")

	return cmd
}

func newInsightsCommand(opts *options) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Spending insights over the trailing days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, svc *analytics.Service) (any, error) {
				return svc.Insights(ctx, opts.userID, days)
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", opts.cfg.InsightWindowDays, "window length in days")

	return cmd
}
