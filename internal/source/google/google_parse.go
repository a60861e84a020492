package google

import (
	"fmt"
	"strings"
	"time"

	"spendwise/internal/core"
)

var requiredHeaders = []string{"Date", "User", "Amount"}

// parseRows converts a values matrix, header row first, into transactions.
// Rows whose date or amount cannot be read are skipped and counted. Row ids
// are the 1-based sheet row numbers so they stay stable across reads.
func parseRows(values [][]interface{}, loc *time.Location) ([]core.Transaction, int, error) {
	if len(values) == 0 {
		return nil, 0, nil
	}
	headers := toStrings(values[0])
	col := make(map[string]int, len(headers))
	for _, name := range []string{"Date", "User", "Amount", "Category", "Type", "Description"} {
		col[name] = indexOf(headers, name)
	}
	var missing []string
	for _, name := range requiredHeaders {
		if col[name] == -1 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, 0, fmt.Errorf("unexpected sheet header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}

	var (
		out     []core.Transaction
		skipped int
	)
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if isBlank(row) {
			continue
		}
		date, err := core.ParseTimestamp(safeGet(row, col["Date"]), loc)
		if err != nil {
			skipped++
			continue
		}
		amount, err := core.ParseAmount(safeGet(row, col["Amount"]))
		if err != nil {
			skipped++
			continue
		}
		tx := core.Transaction{
			ID:          fmt.Sprintf("row-%d", i+1),
			UserID:      strings.TrimSpace(safeGet(row, col["User"])),
			Amount:      amount,
			Category:    safeGet(row, col["Category"]),
			Description: strings.TrimSpace(safeGet(row, col["Description"])),
			Date:        date,
			Type:        core.TransactionType(safeGet(row, col["Type"])),
		}.Normalize()
		if err := tx.Validate(); err != nil {
			skipped++
			continue
		}
		out = append(out, tx)
	}
	return out, skipped, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, s := range arr {
		if strings.EqualFold(s, target) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func isBlank(row []string) bool {
	for _, s := range row {
		if s != "" {
			return false
		}
	}
	return true
}
