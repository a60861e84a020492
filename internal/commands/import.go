package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"spendwise/internal/core"
	"spendwise/internal/source"
	"spendwise/internal/source/memory"
)

// batchWriter is implemented by stores that can insert many transactions
// atomically.
type batchWriter interface {
	AddBatch(ctx context.Context, txs []core.Transaction) ([]string, error)
}

type importResult struct {
	File     string `json:"file"`
	Backend  string `json:"backend"`
	Imported int    `json:"imported"`
}

func newImportCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import transactions from a YAML seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			res, err := runImport(ctx, opts, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}

	return cmd
}

func runImport(ctx context.Context, opts *options, path string) (importResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return importResult{}, fmt.Errorf("reading %s: %w", path, err)
	}
	txs, err := memory.ParseSeed(data)
	if err != nil {
		return importResult{}, err
	}

	be, err := opts.openBackend(ctx)
	if err != nil {
		return importResult{}, err
	}
	defer be.Close()

	if be.Name == "memory" {
		slog.Warn("Importing into the memory backend; data is lost when the command exits")
	}

	if bw, ok := be.Backend.(batchWriter); ok {
		if _, err := bw.AddBatch(ctx, txs); err != nil {
			return importResult{}, fmt.Errorf("importing %s: %w", path, err)
		}
	} else {
		for i, tx := range txs {
			if _, err := be.Backend.Add(ctx, tx); err != nil {
				if errors.Is(err, source.ErrReadOnly) {
					return importResult{}, fmt.Errorf("%s backend does not accept imports: %w", be.Name, err)
				}
				return importResult{}, fmt.Errorf("importing transaction %d: %w", i, err)
			}
		}
	}

	slog.Info("Import completed", "file", path, "backend", be.Name, "count", len(txs))
	return importResult{File: path, Backend: be.Name, Imported: len(txs)}, nil
}
