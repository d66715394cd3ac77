package bankfeed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clearbooks-io/clearbooks/internal/accounts"
)

// Provider fetches raw feed lines from an upstream bank connection.
type Provider interface {
	Fetch(ctx context.Context, companyID, bankAccountID int64, since time.Time) ([]RawTransaction, error)
}

// Directory is the slice of the account directory the matcher needs.
type Directory interface {
	InCategory(ctx context.Context, companyID int64, category accounts.Category, excluding ...int64) ([]accounts.Account, error)
	Uncategorized(ctx context.Context, companyID int64, deposit bool) (accounts.Account, error)
}

// Service imports bank feed lines and suggests categories for them.
// Categorization itself (writing the balanced entry pair) goes
// through the posting engine.
type Service struct {
	repo      Repository
	provider  Provider
	directory Directory
	matcher   Matcher
	logger    *slog.Logger
}

// NewService builds the bank feed service.
func NewService(repo Repository, provider Provider, directory Directory, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		provider:  provider,
		directory: directory,
		matcher:   NewMatcher(),
		logger:    logger,
	}
}

// Sync pulls feed lines since the given time and imports the ones not
// seen before. Provider failures leave previously imported lines
// intact.
func (s *Service) Sync(ctx context.Context, companyID, bankAccountID int64, since time.Time) (int, error) {
	lines, err := s.provider.Fetch(ctx, companyID, bankAccountID, since)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}
	imported := 0
	for _, line := range lines {
		line.CompanyID = companyID
		line.BankAccountID = bankAccountID
		if line.SourceID == uuid.Nil {
			line.SourceID = uuid.New()
		}
		_, inserted, err := s.repo.InsertLine(ctx, line)
		if err != nil {
			return imported, err
		}
		if inserted {
			imported++
		}
	}
	s.logger.Info("bank feed synced",
		slog.Int64("company_id", companyID),
		slog.Int64("bank_account_id", bankAccountID),
		slog.Int("imported", imported),
		slog.Int("fetched", len(lines)))
	return imported, nil
}

// Suggestion pairs a feed line with the account it should post to.
type Suggestion struct {
	Line    RawTransaction
	Account accounts.Account
	// Matched is false when the uncategorized fallback was used.
	Matched bool
}

// Suggest proposes a category for every uncategorized line of a bank
// account. Deposits match against revenue accounts, withdrawals
// against expense accounts; misses fall back to the uncategorized
// income or expense account.
func (s *Service) Suggest(ctx context.Context, companyID, bankAccountID int64) ([]Suggestion, error) {
	lines, err := s.repo.ListUncategorized(ctx, companyID, bankAccountID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, nil
	}
	revenue, err := s.directory.InCategory(ctx, companyID, accounts.CategoryRevenue)
	if err != nil {
		return nil, err
	}
	expense, err := s.directory.InCategory(ctx, companyID, accounts.CategoryExpense)
	if err != nil {
		return nil, err
	}

	out := make([]Suggestion, 0, len(lines))
	for _, line := range lines {
		candidates := expense
		if line.Deposit() {
			candidates = revenue
		}
		account, matched := s.matcher.Match(line.Description, candidates)
		if !matched {
			account, err = s.directory.Uncategorized(ctx, companyID, line.Deposit())
			if err != nil {
				return nil, err
			}
		}
		out = append(out, Suggestion{Line: line, Account: account, Matched: matched})
	}
	return out, nil
}

// Get loads one feed line.
func (s *Service) Get(ctx context.Context, companyID, lineID int64) (RawTransaction, error) {
	return s.repo.Get(ctx, companyID, lineID)
}

// MarkCategorized records that a line's ledger transaction received
// its entries.
func (s *Service) MarkCategorized(ctx context.Context, companyID, lineID int64) error {
	return s.repo.MarkCategorized(ctx, companyID, lineID)
}
