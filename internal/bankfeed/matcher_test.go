package bankfeed

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clearbooks-io/clearbooks/internal/accounts"
)

func TestMatcherFallsBackBelowThreshold(t *testing.T) {
	m := NewMatcher()
	candidates := []accounts.Account{
		{ID: 1, Name: "Office Supplies"},
		{ID: 2, Name: "Software Subscriptions"},
	}

	// exact name tokens present in the description
	got, ok := m.Match("AMZN Mktp office supplies order", candidates)
	require.True(t, ok)
	require.Equal(t, int64(1), got.ID)

	// nothing overlaps: fallback
	_, ok = m.Match("POS 4411 CITY PARKING", candidates)
	require.False(t, ok)

	// partial overlap below the threshold still falls back
	_, ok = m.Match("supplies run", candidates)
	require.False(t, ok)
}

func TestMatcherIgnoresCaseAndPunctuation(t *testing.T) {
	m := NewMatcher()
	candidates := []accounts.Account{{ID: 7, Name: "Fuel & Mileage"}}

	got, ok := m.Match("SHELL *FUEL* mileage 0441", candidates)
	require.True(t, ok)
	require.Equal(t, int64(7), got.ID)
}

type stubProvider struct {
	lines []RawTransaction
	err   error
}

func (p stubProvider) Fetch(ctx context.Context, companyID, bankAccountID int64, since time.Time) ([]RawTransaction, error) {
	return p.lines, p.err
}

type memoryFeedRepo struct {
	lines map[string]RawTransaction
	byID  map[int64]RawTransaction
	next  int64
}

func newMemoryFeedRepo() *memoryFeedRepo {
	return &memoryFeedRepo{lines: make(map[string]RawTransaction), byID: make(map[int64]RawTransaction)}
}

func (r *memoryFeedRepo) InsertLine(ctx context.Context, line RawTransaction) (RawTransaction, bool, error) {
	fp := line.Fingerprint()
	if _, ok := r.lines[fp]; ok {
		return RawTransaction{}, false, nil
	}
	r.next++
	line.ID = r.next
	line.TransactionID = r.next
	r.lines[fp] = line
	r.byID[line.ID] = line
	return line, true, nil
}

func (r *memoryFeedRepo) Get(ctx context.Context, companyID, lineID int64) (RawTransaction, error) {
	line, ok := r.byID[lineID]
	if !ok {
		return RawTransaction{}, ErrLineNotFound
	}
	return line, nil
}

func (r *memoryFeedRepo) ListUncategorized(ctx context.Context, companyID, bankAccountID int64) ([]RawTransaction, error) {
	var out []RawTransaction
	for _, line := range r.byID {
		if !line.Categorized {
			out = append(out, line)
		}
	}
	return out, nil
}

func (r *memoryFeedRepo) MarkCategorized(ctx context.Context, companyID, lineID int64) error {
	line, ok := r.byID[lineID]
	if !ok {
		return ErrLineNotFound
	}
	line.Categorized = true
	r.byID[lineID] = line
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestSyncDeduplicatesOverlappingWindows(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)
	lines := []RawTransaction{
		{PostedAt: day, Amount: -4200, Currency: "USD", Description: "coffee", Reference: "r1"},
		{PostedAt: day, Amount: 90000, Currency: "USD", Description: "client wire", Reference: "r2"},
	}
	repo := newMemoryFeedRepo()
	svc := NewService(repo, stubProvider{lines: lines}, nil, testLogger())

	n, err := svc.Sync(ctx, 1, 10, day.AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Equal(t, 2, n)

	// overlapping second window imports nothing new
	n, err = svc.Sync(ctx, 1, 10, day.AddDate(0, 0, -3))
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestSyncWrapsProviderFailure(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryFeedRepo(), stubProvider{err: errors.New("upstream 503")}, nil, testLogger())

	_, err := svc.Sync(ctx, 1, 10, time.Now())
	require.ErrorIs(t, err, ErrFeedUnavailable)
}
