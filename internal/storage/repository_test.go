package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	repo.loc = time.UTC
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository_AddAndFind(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.AddBatch(ctx, []core.Transaction{
		{ID: "a", UserID: "u1", Amount: 12.5, Category: " food ", Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "b", UserID: "u1", Amount: 40, Category: "", Date: time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC), Type: "expense"},
		{ID: "c", UserID: "u1", Amount: 99, Category: "rent", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "d", UserID: "u2", Amount: 5, Category: "food", Date: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)

	feb := core.Period{
		Label:     "2024-02",
		StartDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   core.EndOfDay(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)),
	}
	got, err := repo.Find(ctx, "u1", feb.Range())
	require.NoError(t, err)
	require.Len(t, got, 2, "both bounds are inclusive")
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "food", got[0].Category)
	assert.Equal(t, core.DefaultCategory, got[1].Category)
	assert.Equal(t, core.Expense, got[1].Type)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC), got[1].Date)
}

func TestSQLiteRepository_AddGeneratesID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Add(ctx, core.Transaction{UserID: "u1", Amount: 3, Date: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := repo.Find(ctx, "u1", core.AllTime().Range())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
}

func TestSQLiteRepository_AllTimeAcrossZones(t *testing.T) {
	zones := []*time.Location{
		time.FixedZone("CET", 1*60*60),
		time.FixedZone("JST", 9*60*60),
		time.FixedZone("EST", -5*60*60),
		time.UTC,
	}
	for _, loc := range zones {
		t.Run(loc.String(), func(t *testing.T) {
			repo := newTestRepo(t)
			repo.loc = loc
			ctx := context.Background()

			_, err := repo.Add(ctx, core.Transaction{ID: "x", UserID: "u1", Amount: 7, Date: time.Date(2025, 1, 6, 12, 0, 0, 0, loc)})
			require.NoError(t, err)

			got, err := repo.Find(ctx, "u1", core.AllTime().Range())
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.True(t, got[0].Date.Equal(time.Date(2025, 1, 6, 12, 0, 0, 0, loc)))
		})
	}
}

func TestSQLiteRepository_BoundTextClampsYears(t *testing.T) {
	repo := newTestRepo(t)

	repo.loc = time.FixedZone("CET", 1*60*60)
	assert.Equal(t, maxOccurredAt, repo.boundText(core.AllTime().EndDate))
	assert.Equal(t, "2025-01-06 13:00:00", repo.boundText(time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)))

	repo.loc = time.FixedZone("EST", -5*60*60)
	assert.Equal(t, minOccurredAt, repo.boundText(core.AllTime().StartDate))
}

func TestSQLiteRepository_AddBatchIsAtomic(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Add(ctx, core.Transaction{ID: "dup", UserID: "u1", Amount: 1, Date: time.Now()})
	require.NoError(t, err)

	_, err = repo.AddBatch(ctx, []core.Transaction{
		{ID: "fresh", UserID: "u1", Amount: 2, Date: time.Now()},
		{ID: "dup", UserID: "u1", Amount: 3, Date: time.Now()},
	})
	require.Error(t, err)

	got, err := repo.Find(ctx, "u1", core.AllTime().Range())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSQLiteRepository_RejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.Add(context.Background(), core.Transaction{UserID: "u1", Amount: -1, Date: time.Now()})
	assert.ErrorIs(t, err, core.ErrNegativeAmount)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	require.NoError(t, RunMigrations(path))
	require.NoError(t, RunMigrations(path))
}
