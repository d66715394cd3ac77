package accounts

import (
	"context"
	"fmt"

	"github.com/clearbooks-io/clearbooks/internal/money"
)

// Service exposes the account directory operations.
type Service struct {
	repo Repository
}

// NewService builds the directory service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve fetches an account scoped to a company.
func (s *Service) Resolve(ctx context.Context, companyID, accountID int64) (Account, error) {
	return s.repo.Get(ctx, companyID, accountID)
}

// System fetches a role account (AR, AP, tax, discount, uncategorized).
// Its absence means the chart was never seeded for the company, which
// is a configuration fault the caller must not retry.
func (s *Service) System(ctx context.Context, companyID int64, kind SystemAccountKind) (Account, error) {
	acc, err := s.repo.GetSystem(ctx, companyID, kind)
	if err != nil {
		return Account{}, fmt.Errorf("resolve system account %s: %w", kind, err)
	}
	return acc, nil
}

// Uncategorized returns the fallback account for a cash flow direction:
// income for deposits, expense for withdrawals.
func (s *Service) Uncategorized(ctx context.Context, companyID int64, deposit bool) (Account, error) {
	kind := SystemUncategorizedExpense
	if deposit {
		kind = SystemUncategorizedIncome
	}
	return s.System(ctx, companyID, kind)
}

// List returns all company accounts in category-then-code order.
func (s *Service) List(ctx context.Context, companyID int64) ([]Account, error) {
	return s.repo.ListByCompany(ctx, companyID)
}

// InCategory returns company accounts of one category ordered by code,
// optionally excluding specific ids.
func (s *Service) InCategory(ctx context.Context, companyID int64, category Category, excluding ...int64) ([]Account, error) {
	if excluding == nil {
		excluding = []int64{}
	}
	return s.repo.ListInCategory(ctx, companyID, category, excluding)
}

// Subtypes lists the company's account subtypes.
func (s *Service) Subtypes(ctx context.Context, companyID int64) ([]Subtype, error) {
	return s.repo.ListSubtypes(ctx, companyID)
}

// Create inserts a new account after validating its shape.
func (s *Service) Create(ctx context.Context, account Account) (Account, error) {
	if account.CompanyID == 0 {
		return Account{}, fmt.Errorf("accounts: company required")
	}
	if account.Code == "" || account.Name == "" {
		return Account{}, fmt.Errorf("accounts: code and name required")
	}
	if !money.ValidCurrency(account.CurrencyCode) {
		return Account{}, fmt.Errorf("accounts: invalid currency %q", account.CurrencyCode)
	}
	if account.AccountableKind == "" {
		account.AccountableKind = AccountableNone
	}
	if account.ParentID != nil {
		parent, err := s.repo.Get(ctx, account.CompanyID, *account.ParentID)
		if err != nil {
			return Account{}, err
		}
		if parent.Category != account.Category {
			return Account{}, ErrParentCategoryMismatch
		}
	}
	return s.repo.Insert(ctx, account)
}

// SetParent reassigns an account's parent, rejecting cycles by walking
// the prospective parent chain with a visited set. The walk is bounded
// by tree depth, so a corrupted chain cannot loop forever.
func (s *Service) SetParent(ctx context.Context, companyID, accountID int64, parentID *int64) error {
	if parentID == nil {
		return s.repo.UpdateParent(ctx, companyID, accountID, nil)
	}
	if *parentID == accountID {
		return ErrParentCycle
	}
	account, err := s.repo.Get(ctx, companyID, accountID)
	if err != nil {
		return err
	}
	visited := map[int64]bool{accountID: true}
	cursor := parentID
	for cursor != nil {
		if visited[*cursor] {
			return ErrParentCycle
		}
		visited[*cursor] = true
		parent, err := s.repo.Get(ctx, companyID, *cursor)
		if err != nil {
			return err
		}
		if parent.Category != account.Category {
			return ErrParentCategoryMismatch
		}
		cursor = parent.ParentID
	}
	return s.repo.UpdateParent(ctx, companyID, accountID, parentID)
}

// Delete removes an account unless journal entries reference it.
func (s *Service) Delete(ctx context.Context, companyID, accountID int64) error {
	inUse, err := s.repo.HasEntries(ctx, accountID)
	if err != nil {
		return err
	}
	if inUse {
		return ErrAccountInUse
	}
	return s.repo.Delete(ctx, companyID, accountID)
}
