package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPostingInputValidate(t *testing.T) {
	base := PostingInput{
		CompanyID: 1,
		Type:      TransactionJournal,
		PostedAt:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Currency:  "USD",
		Entries: []EntryInput{
			{AccountID: 1, Type: EntryDebit, Amount: 10000},
			{AccountID: 2, Type: EntryCredit, Amount: 10000},
		},
	}
	require.NoError(t, base.Validate())
	require.Equal(t, int64(10000), base.Total())

	unbalanced := base
	unbalanced.Entries = []EntryInput{
		{AccountID: 1, Type: EntryDebit, Amount: 10000},
		{AccountID: 2, Type: EntryCredit, Amount: 9999},
	}
	require.ErrorIs(t, unbalanced.Validate(), ErrUnbalanced)

	negative := base
	negative.Entries = []EntryInput{
		{AccountID: 1, Type: EntryDebit, Amount: -5},
		{AccountID: 2, Type: EntryCredit, Amount: -5},
	}
	require.ErrorIs(t, negative.Validate(), ErrNegativeAmount)

	single := base
	single.Entries = single.Entries[:1]
	require.ErrorIs(t, single.Validate(), ErrTooFewEntries)

	missing := base
	missing.Entries = []EntryInput{
		{AccountID: 0, Type: EntryDebit, Amount: 100},
		{AccountID: 2, Type: EntryCredit, Amount: 100},
	}
	require.ErrorIs(t, missing.Validate(), ErrMissingAccount)

	badSide := base
	badSide.Entries = []EntryInput{
		{AccountID: 1, Type: "BOTH", Amount: 100},
		{AccountID: 2, Type: EntryCredit, Amount: 100},
	}
	require.ErrorIs(t, badSide.Validate(), ErrBothSides)
}

func TestBalanced(t *testing.T) {
	require.True(t, Balanced([]Entry{
		{Type: EntryDebit, Amount: 500},
		{Type: EntryCredit, Amount: 300},
		{Type: EntryCredit, Amount: 200},
	}))
	require.False(t, Balanced([]Entry{
		{Type: EntryDebit, Amount: 500},
		{Type: EntryCredit, Amount: 499},
	}))
	require.True(t, Balanced(nil))
}

type memoryLedgerRepo struct {
	transactions map[int64]Transaction
	entries      map[int64][]Entry
	nextID       int64
}

func newMemoryLedgerRepo() *memoryLedgerRepo {
	return &memoryLedgerRepo{
		transactions: make(map[int64]Transaction),
		entries:      make(map[int64][]Entry),
	}
}

func (r *memoryLedgerRepo) GetWithEntries(ctx context.Context, companyID, transactionID int64) (Transaction, error) {
	t, ok := r.transactions[transactionID]
	if !ok || t.CompanyID != companyID {
		return Transaction{}, ErrTransactionNotFound
	}
	t.Entries = append([]Entry(nil), r.entries[transactionID]...)
	return t, nil
}

func (r *memoryLedgerRepo) ListPostedBetween(ctx context.Context, companyID int64, from, to time.Time) ([]Transaction, error) {
	var out []Transaction
	for _, t := range r.transactions {
		if t.CompanyID == companyID && !t.PostedAt.Before(from) && !t.PostedAt.After(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memoryLedgerRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryLedgerTx{repo: r})
}

type memoryLedgerTx struct {
	repo *memoryLedgerRepo
}

func (tx *memoryLedgerTx) InsertTransaction(ctx context.Context, in PostingInput) (Transaction, error) {
	for _, t := range tx.repo.transactions {
		if t.SourceKind != SourceNone && t.SourceKind == in.SourceKind && t.SourceID == in.SourceID {
			return Transaction{}, ErrSourceAlreadyLinked
		}
	}
	tx.repo.nextID++
	t := Transaction{
		ID:          tx.repo.nextID,
		CompanyID:   in.CompanyID,
		Type:        in.Type,
		PostedAt:    in.PostedAt,
		Amount:      in.Total(),
		Currency:    in.Currency,
		Description: in.Description,
		SourceKind:  in.SourceKind,
		SourceID:    in.SourceID,
	}
	tx.repo.transactions[t.ID] = t
	return t, nil
}

func (tx *memoryLedgerTx) InsertEntries(ctx context.Context, transactionID int64, entries []EntryInput) error {
	for _, e := range entries {
		tx.repo.nextID++
		tx.repo.entries[transactionID] = append(tx.repo.entries[transactionID], Entry{
			ID:            tx.repo.nextID,
			TransactionID: transactionID,
			AccountID:     e.AccountID,
			Type:          e.Type,
			Amount:        e.Amount,
		})
	}
	return nil
}

func (tx *memoryLedgerTx) DeleteBySource(ctx context.Context, companyID int64, kind SourceKind, sourceID uuid.UUID) error {
	for id, t := range tx.repo.transactions {
		if t.CompanyID == companyID && t.SourceKind == kind && t.SourceID == sourceID {
			delete(tx.repo.transactions, id)
			delete(tx.repo.entries, id)
		}
	}
	return nil
}

func (tx *memoryLedgerTx) EntriesExist(ctx context.Context, transactionID int64) (bool, error) {
	return len(tx.repo.entries[transactionID]) > 0, nil
}

func (tx *memoryLedgerTx) GetTransactionForUpdate(ctx context.Context, companyID, transactionID int64) (Transaction, error) {
	t, ok := tx.repo.transactions[transactionID]
	if !ok || t.CompanyID != companyID {
		return Transaction{}, ErrTransactionNotFound
	}
	return t, nil
}

func TestPostRejectsUnbalancedBeforeWrite(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := NewService(repo, nil)

	_, err := svc.Post(context.Background(), PostingInput{
		CompanyID: 1,
		PostedAt:  time.Now(),
		Currency:  "USD",
		Entries: []EntryInput{
			{AccountID: 1, Type: EntryDebit, Amount: 100},
			{AccountID: 2, Type: EntryCredit, Amount: 50},
		},
	})
	require.ErrorIs(t, err, ErrUnbalanced)
	require.Empty(t, repo.transactions)
}

func TestPostWritesTransactionAndEntries(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := NewService(repo, nil)

	posted, err := svc.Post(context.Background(), PostingInput{
		CompanyID: 1,
		PostedAt:  time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		Currency:  "USD",
		Entries: []EntryInput{
			{AccountID: 1, Type: EntryDebit, Amount: 2500},
			{AccountID: 2, Type: EntryCredit, Amount: 2500},
		},
	})
	require.NoError(t, err)
	require.Equal(t, TransactionJournal, posted.Type)
	require.Equal(t, int64(2500), posted.Amount)

	stored, err := svc.Get(context.Background(), 1, posted.ID)
	require.NoError(t, err)
	require.Len(t, stored.Entries, 2)
	require.True(t, Balanced(stored.Entries))
}

func TestCheckIntegrityFlagsBrokenTransactions(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	good, err := svc.Post(ctx, PostingInput{
		CompanyID: 1,
		PostedAt:  time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		Currency:  "USD",
		Entries: []EntryInput{
			{AccountID: 1, Type: EntryDebit, Amount: 100},
			{AccountID: 2, Type: EntryCredit, Amount: 100},
		},
	})
	require.NoError(t, err)

	// corrupt one entry behind the service's back
	repo.entries[good.ID][1].Amount = 99

	broken, err := svc.CheckIntegrity(ctx, 1,
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, []int64{good.ID}, broken)
}
