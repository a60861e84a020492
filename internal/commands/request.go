package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"spendwise/internal/amqp"
)

func newRequestCommand(opts *options) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "request-insights",
		Short: "Queue an insight digest request for the worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.userID == "" {
				return fmt.Errorf("--user is required")
			}
			if opts.cfg.AMQPURL == "" {
				return fmt.Errorf("AMQP_URL is not set")
			}

			client, err := amqp.NewClient(opts.cfg.AMQPURL, opts.cfg.AMQPExchange, opts.cfg.AMQPRequestQueue, opts.cfg.AMQPResultRoutingKey)
			if err != nil {
				return fmt.Errorf("connecting to AMQP: %w", err)
			}
			defer client.Close()

			msg := amqp.NewInsightRequestMessage(opts.userID, days)
			if err := client.PublishInsightRequest(cmd.Context(), msg); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), msg)
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "window length in days (default: worker setting)")

	return cmd
}
