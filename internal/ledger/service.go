package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clearbooks-io/clearbooks/internal/audit"
)

// Service posts and reads raw journal transactions. Document-driven
// postings go through the posting engine; this service covers manual
// journal entries and read access.
type Service struct {
	repo  Repository
	audit audit.Recorder
	now   func() time.Time
}

// NewService builds the ledger service.
func NewService(repo Repository, recorder audit.Recorder) *Service {
	return &Service{repo: repo, audit: recorder, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Post validates and writes a manual journal transaction.
func (s *Service) Post(ctx context.Context, in PostingInput) (Transaction, error) {
	if err := in.Validate(); err != nil {
		return Transaction{}, err
	}
	if in.Type == "" {
		in.Type = TransactionJournal
	}
	if in.SourceKind == "" {
		in.SourceKind = SourceNone
		in.SourceID = uuid.New()
	}
	var posted Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inserted, err := tx.InsertTransaction(ctx, in)
		if err != nil {
			return err
		}
		if err := tx.InsertEntries(ctx, inserted.ID, in.Entries); err != nil {
			return err
		}
		posted = inserted
		return nil
	})
	if err != nil {
		return Transaction{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, audit.Log{
			Action:   "ledger.post",
			Entity:   "transaction",
			EntityID: fmt.Sprintf("%d", posted.ID),
			Meta: map[string]any{
				"type":   string(posted.Type),
				"amount": posted.Amount,
			},
			At: s.now(),
		})
	}
	return posted, nil
}

// Get loads one transaction with its entries.
func (s *Service) Get(ctx context.Context, companyID, transactionID int64) (Transaction, error) {
	return s.repo.GetWithEntries(ctx, companyID, transactionID)
}

// ListPostedBetween returns transactions in a posted-at window.
func (s *Service) ListPostedBetween(ctx context.Context, companyID int64, from, to time.Time) ([]Transaction, error) {
	return s.repo.ListPostedBetween(ctx, companyID, from, to)
}

// CheckIntegrity re-verifies the balance invariant over a window and
// returns the ids of any transactions whose entries do not net to zero.
func (s *Service) CheckIntegrity(ctx context.Context, companyID int64, from, to time.Time) ([]int64, error) {
	transactions, err := s.repo.ListPostedBetween(ctx, companyID, from, to)
	if err != nil {
		return nil, err
	}
	var broken []int64
	for _, t := range transactions {
		full, err := s.repo.GetWithEntries(ctx, companyID, t.ID)
		if err != nil {
			return nil, err
		}
		if !Balanced(full.Entries) {
			broken = append(broken, t.ID)
		}
	}
	return broken, nil
}
