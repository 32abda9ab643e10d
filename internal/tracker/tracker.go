// Package tracker holds the in-memory investor list with likelihood scores
// and applies status changes optimistically: the cache updates immediately
// and the database write happens in the background without rollback.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/opencrew/pitchboard/internal/errors"
	"github.com/opencrew/pitchboard/internal/models"
)

var ErrUnknownInvestor = errors.NewSentinel("investor not in tracker")

// InvestorStore is the persistence the tracker syncs against.
type InvestorStore interface {
	List(ctx context.Context) ([]models.Investor, error)
	UpdateStatus(ctx context.Context, id int64, status models.Status) error
}

type Tracker struct {
	store   InvestorStore
	profile models.CompanyProfile
	logger  *slog.Logger

	mu        sync.Mutex
	investors []models.Investor
	syncs     sync.WaitGroup
}

func New(store InvestorStore, profile models.CompanyProfile, logger *slog.Logger) *Tracker {
	return &Tracker{
		store:   store,
		profile: profile,
		logger:  logger.With("source", "tracker.Tracker"),
	}
}

// Refresh reloads the cache from the store and recomputes likelihood scores.
func (t *Tracker) Refresh(ctx context.Context) error {
	investors, err := t.store.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list investors")
	}
	for i := range investors {
		investors[i].LikelihoodScore = investors[i].Likelihood(t.profile)
	}

	t.mu.Lock()
	t.investors = investors
	t.mu.Unlock()
	return nil
}

// Investors returns a copy of the cached, scored investor list.
func (t *Tracker) Investors() []models.Investor {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.Investor, len(t.investors))
	copy(out, t.investors)
	return out
}

// Get returns the cached investor with the given ID.
func (t *Tracker) Get(id int64) (models.Investor, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, investor := range t.investors {
		if investor.ID == id {
			return investor, nil
		}
	}
	return models.Investor{}, ErrUnknownInvestor
}

// SetStatus applies the status to the cache synchronously and syncs the store
// in the background. A failed sync is logged and the cache keeps the new
// status; there is no rollback.
func (t *Tracker) SetStatus(ctx context.Context, id int64, status models.Status) error {
	t.mu.Lock()
	found := false
	for i := range t.investors {
		if t.investors[i].ID == id {
			t.investors[i].Status = status
			found = true
			break
		}
	}
	t.mu.Unlock()
	if !found {
		return ErrUnknownInvestor
	}

	t.syncs.Add(1)
	go func() {
		defer t.syncs.Done()
		syncCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := t.store.UpdateStatus(syncCtx, id, status); err != nil {
			t.logger.LogAttrs(syncCtx, slog.LevelError, "status sync failed",
				errors.SlogError(err),
				slog.Int64("investor_id", id),
				slog.String("status", string(status)))
		}
	}()
	return nil
}

// Flush waits for in-flight status syncs. Used on shutdown and in tests.
func (t *Tracker) Flush() {
	t.syncs.Wait()
}
