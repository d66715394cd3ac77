package reports

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/clearbooks-io/clearbooks/internal/accounts"
	"github.com/clearbooks-io/clearbooks/internal/balances"
	"github.com/clearbooks-io/clearbooks/internal/documents"
)

// Directory is the slice of the account directory reports read from.
type Directory interface {
	List(ctx context.Context, companyID int64) ([]accounts.Account, error)
	Subtypes(ctx context.Context, companyID int64) ([]accounts.Subtype, error)
}

// DocumentSource lists documents for receivable/payable reports.
type DocumentSource interface {
	ListOutstanding(ctx context.Context, companyID int64, kind documents.Kind) ([]documents.Document, error)
	ListByKind(ctx context.Context, companyID int64, kind documents.Kind) ([]documents.Document, error)
}

// Service builds financial reports over aggregated balances, caching
// results in Redis and collapsing concurrent identical builds.
type Service struct {
	directory  Directory
	aggregator *balances.Aggregator
	docs       DocumentSource
	cache      *Cache
	group      singleflight.Group

	// FiscalYearStart anchors year-to-date windows, January by default.
	FiscalYearStart time.Month
}

// NewService builds the report service.
func NewService(directory Directory, aggregator *balances.Aggregator, docs DocumentSource, cache *Cache) *Service {
	return &Service{
		directory:       directory,
		aggregator:      aggregator,
		docs:            docs,
		cache:           cache,
		FiscalYearStart: time.January,
	}
}

// rows loads every account with its subtype and balance for a window.
func (s *Service) rows(ctx context.Context, companyID int64, start, end time.Time) ([]AccountRow, error) {
	accts, err := s.directory.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	subtypes, err := s.directory.Subtypes(ctx, companyID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]accounts.Subtype, len(subtypes))
	for _, st := range subtypes {
		byID[st.ID] = st
	}
	bals, err := s.aggregator.ForAccounts(ctx, companyID, accts, start, end)
	if err != nil {
		return nil, err
	}
	rows := make([]AccountRow, 0, len(accts))
	for _, acc := range accts {
		rows = append(rows, AccountRow{
			Account: acc,
			Subtype: byID[acc.SubtypeID],
			Balance: bals[acc.ID],
		})
	}
	return rows, nil
}

// cached fetches through Redis and singleflight, building at most one
// copy of a given report key at a time.
func (s *Service) cached(ctx context.Context, keyParts []string, dest interface{}, build func(context.Context) (interface{}, error)) error {
	key, err := s.cache.BuildKey(ctx, keyParts...)
	if err != nil {
		return err
	}
	return s.cache.FetchJSON(ctx, key, dest, func(ctx context.Context) (interface{}, error) {
		ch := s.group.DoChan(key, func() (interface{}, error) {
			return build(ctx)
		})
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res := <-ch:
			return res.Val, res.Err
		}
	})
}

// TrialBalance builds the year-to-date trial balance as of a date.
// Running it from the fiscal year start keeps debit and credit totals
// equal without a retained-earnings closing entry.
func (s *Service) TrialBalance(ctx context.Context, companyID int64, asOf time.Time) (TrialBalance, error) {
	start := balances.FiscalPeriodStart(asOf, s.FiscalYearStart)
	window := Window{Start: start, End: asOf}
	var out TrialBalance
	err := s.cached(ctx, keyReport("tb", companyID, dayToken(asOf)), &out, func(ctx context.Context) (interface{}, error) {
		rows, err := s.rows(ctx, companyID, window.Start, window.End)
		if err != nil {
			return nil, err
		}
		return BuildTrialBalance(window, rows), nil
	})
	return out, err
}

// BalanceSheet builds the statement of financial position as of a
// date, with fiscal-year-to-date earnings carried as an equity line.
func (s *Service) BalanceSheet(ctx context.Context, companyID int64, asOf time.Time) (BalanceSheet, error) {
	start := balances.FiscalPeriodStart(asOf, s.FiscalYearStart)
	var out BalanceSheet
	err := s.cached(ctx, keyReport("bs", companyID, dayToken(asOf)), &out, func(ctx context.Context) (interface{}, error) {
		rows, err := s.rows(ctx, companyID, start, asOf)
		if err != nil {
			return nil, err
		}
		pl := BuildIncomeStatement(Window{Start: start, End: asOf}, rows)
		return BuildBalanceSheet(asOf, rows, pl.NetIncome), nil
	})
	return out, err
}

// IncomeStatement builds the profit and loss over an inclusive window.
func (s *Service) IncomeStatement(ctx context.Context, companyID int64, start, end time.Time) (IncomeStatement, error) {
	window := Window{Start: start, End: end}
	var out IncomeStatement
	err := s.cached(ctx, keyReport("pl", companyID, dayToken(start), dayToken(end)), &out, func(ctx context.Context) (interface{}, error) {
		rows, err := s.rows(ctx, companyID, start, end)
		if err != nil {
			return nil, err
		}
		return BuildIncomeStatement(window, rows), nil
	})
	return out, err
}

// CashFlow builds cash movement for bank and cash-equivalent accounts
// over an inclusive window.
func (s *Service) CashFlow(ctx context.Context, companyID int64, start, end time.Time) (CashFlow, error) {
	window := Window{Start: start, End: end}
	var out CashFlow
	err := s.cached(ctx, keyReport("cf", companyID, dayToken(start), dayToken(end)), &out, func(ctx context.Context) (interface{}, error) {
		rows, err := s.rows(ctx, companyID, start, end)
		if err != nil {
			return nil, err
		}
		var cashRows []AccountRow
		for _, r := range rows {
			if r.Account.IsBankAccount() || r.Subtype.Name == accounts.CashSubtypeName || r.Subtype.InverseCashFlow {
				cashRows = append(cashRows, r)
			}
		}
		return BuildCashFlow(window, cashRows), nil
	})
	return out, err
}

// AgingReceivables buckets unpaid invoices by days overdue.
func (s *Service) AgingReceivables(ctx context.Context, companyID int64, asOf time.Time, periods, daysPerPeriod int) (Aging, error) {
	return s.aging(ctx, "ar_aging", companyID, documents.KindInvoice, asOf, periods, daysPerPeriod)
}

// AgingPayables buckets unpaid bills by days overdue.
func (s *Service) AgingPayables(ctx context.Context, companyID int64, asOf time.Time, periods, daysPerPeriod int) (Aging, error) {
	return s.aging(ctx, "ap_aging", companyID, documents.KindBill, asOf, periods, daysPerPeriod)
}

func (s *Service) aging(ctx context.Context, kind string, companyID int64, docKind documents.Kind, asOf time.Time, periods, daysPerPeriod int) (Aging, error) {
	// the bucket layout is part of the result, so it is part of the key;
	// normalised first so explicit defaults share the cached entry
	if periods <= 0 {
		periods = defaultAgingPeriods
	}
	if daysPerPeriod <= 0 {
		daysPerPeriod = defaultAgingDays
	}
	key := keyReport(kind, companyID, dayToken(asOf), strconv.Itoa(periods), strconv.Itoa(daysPerPeriod))
	var out Aging
	err := s.cached(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		docs, err := s.docs.ListOutstanding(ctx, companyID, docKind)
		if err != nil {
			return nil, err
		}
		return BuildAging(asOf, docs, periods, daysPerPeriod), nil
	})
	return out, err
}

// ClientSummaries totals invoices per client as of now.
func (s *Service) ClientSummaries(ctx context.Context, companyID int64, asOf time.Time) ([]EntitySummary, error) {
	return s.entitySummaries(ctx, "clients", companyID, documents.KindInvoice, asOf)
}

// VendorSummaries totals bills per vendor as of now.
func (s *Service) VendorSummaries(ctx context.Context, companyID int64, asOf time.Time) ([]EntitySummary, error) {
	return s.entitySummaries(ctx, "vendors", companyID, documents.KindBill, asOf)
}

func (s *Service) entitySummaries(ctx context.Context, kind string, companyID int64, docKind documents.Kind, asOf time.Time) ([]EntitySummary, error) {
	var out []EntitySummary
	err := s.cached(ctx, keyReport(kind, companyID, dayToken(asOf)), &out, func(ctx context.Context) (interface{}, error) {
		docs, err := s.docs.ListByKind(ctx, companyID, docKind)
		if err != nil {
			return nil, err
		}
		return BuildEntitySummaries(asOf, docs), nil
	})
	return out, err
}

// Invalidate drops every cached report after a ledger write.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}
