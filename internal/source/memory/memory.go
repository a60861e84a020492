package memory

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"spendwise/internal/core"
	"spendwise/internal/source"
)

// Store is an in-memory transaction source, optionally seeded from a YAML file.
type Store struct {
	mu    sync.RWMutex
	items []core.Transaction
	path  string
}

var (
	_ source.TransactionSource = (*Store)(nil)
	_ source.TransactionWriter = (*Store)(nil)
)

// seedFile is the on-disk layout of a seed file:
//
//	transactions:
//	  - id: t1
//	    userId: demo
//	    amount: 12.50
//	    category: food
//	    date: "2025-01-06 12:30:00"
//	    type: EXPENSE
type seedFile struct {
	Transactions []seedTransaction `yaml:"transactions"`
}

type seedTransaction struct {
	ID          string  `yaml:"id"`
	UserID      string  `yaml:"userId"`
	Amount      float64 `yaml:"amount"`
	Category    string  `yaml:"category"`
	Description string  `yaml:"description"`
	Date        string  `yaml:"date"`
	Type        string  `yaml:"type"`
}

// New returns a store holding txs, normalised.
func New(txs ...core.Transaction) *Store {
	items := make([]core.Transaction, len(txs))
	copy(items, txs)
	return &Store{items: core.NormalizeAll(items)}
}

// NewFromFile loads the seed file at path. A missing file yields an empty
// store so a fresh checkout still starts.
func NewFromFile(path string) (*Store, error) {
	s := &Store{path: path}
	items, err := readSeed(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("Seed file not found, starting empty", "path", path)
			return s, nil
		}
		return nil, err
	}
	s.items = items
	return s, nil
}

// Find returns copies of the user's transactions dated inside r.
func (s *Store) Find(ctx context.Context, userID string, r core.DateRange) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Transaction
	for _, tx := range s.items {
		if tx.UserID == userID && r.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// Add stores the transaction and returns its id, generating one when empty.
func (s *Store) Add(_ context.Context, tx core.Transaction) (string, error) {
	tx = tx.Normalize()
	if err := tx.Validate(); err != nil {
		return "", err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, tx)
	return tx.ID, nil
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Reload replaces the contents with a fresh read of the seed file.
func (s *Store) Reload() error {
	if s.path == "" {
		return fmt.Errorf("store has no seed file")
	}
	items, err := readSeed(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// Watch reloads the store whenever the seed file is written. A failed reload
// keeps the previous contents. Call the returned stop function to clean up.
func (s *Store) Watch() (stop func(), err error) {
	if s.path == "" {
		return nil, fmt.Errorf("store has no seed file")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("seed watcher: %w", err)
	}
	if err := w.Add(s.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("seed watcher add %s: %w", s.path, err)
	}

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					if err := s.Reload(); err != nil {
						slog.Warn("Seed reload failed, keeping previous data", "path", s.path, "error", err)
						continue
					}
					slog.Info("Seed file reloaded", "path", s.path, "count", s.Len())
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("Seed watcher error", "path", s.path, "error", err)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, nil
}

func readSeed(path string) ([]core.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeed(data)
}

// ParseSeed decodes a YAML seed document. Dates without an offset are read as
// local wall-clock time.
func ParseSeed(data []byte) ([]core.Transaction, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	out := make([]core.Transaction, 0, len(f.Transactions))
	for i, st := range f.Transactions {
		date, err := core.ParseTimestamp(st.Date, time.Local)
		if err != nil {
			return nil, fmt.Errorf("seed transaction %d: %w", i, err)
		}
		tx := core.Transaction{
			ID:          strings.TrimSpace(st.ID),
			UserID:      strings.TrimSpace(st.UserID),
			Amount:      st.Amount,
			Category:    st.Category,
			Description: st.Description,
			Date:        date,
			Type:        core.TransactionType(st.Type),
		}.Normalize()
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("seed transaction %d: %w", i, err)
		}
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		out = append(out, tx)
	}
	return out, nil
}
