package posting

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clearbooks-io/clearbooks/internal/accounts"
	"github.com/clearbooks-io/clearbooks/internal/audit"
	"github.com/clearbooks-io/clearbooks/internal/bankfeed"
	"github.com/clearbooks-io/clearbooks/internal/documents"
	"github.com/clearbooks-io/clearbooks/internal/ledger"
	"github.com/clearbooks-io/clearbooks/internal/money"
)

// Directory resolves accounts the posting engine writes to.
type Directory interface {
	System(ctx context.Context, companyID int64, kind accounts.SystemAccountKind) (accounts.Account, error)
	Resolve(ctx context.Context, companyID, accountID int64) (accounts.Account, error)
}

// AdjustmentReader loads tax and discount rules during bill posting.
type AdjustmentReader interface {
	GetAdjustment(ctx context.Context, companyID, adjustmentID int64) (documents.Adjustment, error)
}

// RateSource provides exchange rates for a currency pair on a date.
type RateSource interface {
	Rate(ctx context.Context, from, to string, on time.Time) (decimal.Decimal, error)
}

// Settings reads company-level configuration.
type Settings interface {
	DefaultCurrency(ctx context.Context, companyID int64) (string, error)
}

// Invalidator drops cached reports after a ledger write.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// FeedLines is the slice of the bank feed the categorizer needs.
type FeedLines interface {
	Get(ctx context.Context, companyID, lineID int64) (bankfeed.RawTransaction, error)
	MarkCategorized(ctx context.Context, companyID, lineID int64) error
}

// Service turns documents, payments, and bank feed lines into
// balanced journal entries. Every write runs inside one repository
// transaction together with its document-side update.
type Service struct {
	repo        Repository
	directory   Directory
	adjustments AdjustmentReader
	rates       RateSource
	settings    Settings
	audit       audit.Recorder
	cache       Invalidator
	feed        FeedLines
	now         func() time.Time
}

// NewService builds the posting engine.
func NewService(repo Repository, directory Directory, adjustments AdjustmentReader, rates RateSource, settings Settings, recorder audit.Recorder, cache Invalidator, feed FeedLines) *Service {
	return &Service{
		repo:        repo,
		directory:   directory,
		adjustments: adjustments,
		rates:       rates,
		settings:    settings,
		audit:       recorder,
		cache:       cache,
		feed:        feed,
		now:         time.Now,
	}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// convert translates cents between currencies at the rate for the
// posting date. Same-currency amounts pass through untouched.
func (s *Service) convert(ctx context.Context, amount int64, from, to string, on time.Time) (int64, error) {
	if from == to || from == "" {
		return amount, nil
	}
	rate, err := s.rates.Rate(ctx, from, to, on)
	if err != nil {
		return 0, fmt.Errorf("%w: %s/%s: %v", ErrNoRate, from, to, err)
	}
	converted, err := money.New(amount, from).Convert(to, rate)
	if err != nil {
		return 0, fmt.Errorf("%w: %s/%s", ErrNoRate, from, to)
	}
	return converted.Amount, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx)
	}
}

func (s *Service) record(ctx context.Context, action string, companyID, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if meta == nil {
		meta = map[string]any{}
	}
	meta["company_id"] = companyID
	_ = s.audit.Record(ctx, audit.Log{
		Action:   action,
		Entity:   "posting",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
		At:       s.now(),
	})
}

// ApproveInvoice posts an invoice to the ledger. Re-approving after a
// line edit replaces the previous posting atomically, so the ledger
// never shows the invoice twice. The receivable debit is computed as
// the balancing figure, which keeps multi-currency postings balanced
// after per-component rounding.
func (s *Service) ApproveInvoice(ctx context.Context, companyID, documentID int64) (ledger.Transaction, error) {
	defaultCurrency, err := s.settings.DefaultCurrency(ctx, companyID)
	if err != nil {
		return ledger.Transaction{}, err
	}
	ar, err := s.directory.System(ctx, companyID, accounts.SystemAccountsReceivable)
	if err != nil {
		return ledger.Transaction{}, err
	}
	salesTax, err := s.directory.System(ctx, companyID, accounts.SystemSalesTax)
	if err != nil {
		return ledger.Transaction{}, err
	}
	salesDiscount, err := s.directory.System(ctx, companyID, accounts.SystemSalesDiscount)
	if err != nil {
		return ledger.Transaction{}, err
	}

	var posted ledger.Transaction
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		doc, err := tx.GetDocumentForUpdate(ctx, companyID, documentID)
		if err != nil {
			return err
		}
		if doc.Kind != documents.KindInvoice {
			return ErrNotPostable
		}
		if doc.Status == documents.StatusVoid {
			return ErrNotPostable
		}
		if len(doc.LineItems) == 0 {
			return documents.ErrNoLineItems
		}

		var entries []ledger.EntryInput
		var creditTotal, debitTotal int64
		for _, li := range doc.LineItems {
			amount, err := s.convert(ctx, li.Subtotal, doc.CurrencyCode, defaultCurrency, doc.Date)
			if err != nil {
				return err
			}
			if amount != 0 {
				entries = append(entries, ledger.EntryInput{AccountID: li.AccountID, Type: ledger.EntryCredit, Amount: amount})
				creditTotal += amount
			}
			for _, adjID := range li.AdjustmentIDs {
				adj, err := s.adjustments.GetAdjustment(ctx, companyID, adjID)
				if err != nil {
					return err
				}
				raw := adj.Amount(li.Subtotal)
				if raw == 0 {
					continue
				}
				amount, err := s.convert(ctx, raw, doc.CurrencyCode, defaultCurrency, doc.Date)
				if err != nil {
					return err
				}
				if adj.Category == documents.AdjustmentTax {
					accountID, err := s.adjustmentAccount(ctx, companyID, adj, salesTax)
					if err != nil {
						return err
					}
					entries = append(entries, ledger.EntryInput{AccountID: accountID, Type: ledger.EntryCredit, Amount: amount})
					creditTotal += amount
				} else {
					accountID, err := s.adjustmentAccount(ctx, companyID, adj, salesDiscount)
					if err != nil {
						return err
					}
					entries = append(entries, ledger.EntryInput{AccountID: accountID, Type: ledger.EntryDebit, Amount: amount})
					debitTotal += amount
				}
			}
		}
		if doc.DiscountMethod == documents.DiscountPerDocument && doc.DiscountTotal > 0 {
			// whole-document discounts spread across lines by subtotal so
			// each line's revenue impact survives in the journal
			for _, share := range allocateDocumentDiscount(doc) {
				if share == 0 {
					continue
				}
				amount, err := s.convert(ctx, share, doc.CurrencyCode, defaultCurrency, doc.Date)
				if err != nil {
					return err
				}
				entries = append(entries, ledger.EntryInput{AccountID: salesDiscount.ID, Type: ledger.EntryDebit, Amount: amount})
				debitTotal += amount
			}
		}
		// receivable balances whatever the converted components sum to
		entries = append(entries, ledger.EntryInput{AccountID: ar.ID, Type: ledger.EntryDebit, Amount: creditTotal - debitTotal})

		in := ledger.PostingInput{
			CompanyID:   companyID,
			Type:        ledger.TransactionJournal,
			PostedAt:    doc.Date,
			Currency:    defaultCurrency,
			Description: fmt.Sprintf("Invoice %s", doc.Number),
			SourceKind:  ledger.SourceInvoice,
			SourceID:    doc.SourceID,
			Entries:     entries,
		}
		if err := in.Validate(); err != nil {
			return err
		}
		if err := tx.DeleteBySource(ctx, companyID, ledger.SourceInvoice, doc.SourceID); err != nil {
			return err
		}
		posted, err = tx.InsertTransaction(ctx, in)
		if err != nil {
			return err
		}
		if err := tx.InsertEntries(ctx, posted.ID, in.Entries); err != nil {
			return err
		}

		if doc.Status == documents.StatusDraft {
			doc.Status = documents.StatusSent
		}
		approvedAt := s.now()
		doc.ApprovedAt = &approvedAt
		return tx.UpdateDocumentPosting(ctx, doc)
	})
	if err != nil {
		return ledger.Transaction{}, err
	}
	s.record(ctx, "posting.invoice_approved", companyID, documentID, map[string]any{"transaction_id": posted.ID})
	s.invalidate(ctx)
	return posted, nil
}

// adjustmentAccount picks the ledger account for one tax or discount
// rule: the account linked on the rule when set, the seeded system
// account otherwise.
func (s *Service) adjustmentAccount(ctx context.Context, companyID int64, adj documents.Adjustment, fallback accounts.Account) (int64, error) {
	if adj.AccountID == nil {
		return fallback.ID, nil
	}
	acct, err := s.directory.Resolve(ctx, companyID, *adj.AccountID)
	if err != nil {
		return 0, err
	}
	return acct.ID, nil
}

// allocateDocumentDiscount splits a whole-document discount across the
// lines in proportion to their subtotals, in document currency.
func allocateDocumentDiscount(doc documents.Document) []int64 {
	weights := make([]int64, len(doc.LineItems))
	for i, li := range doc.LineItems {
		weights[i] = li.Subtotal
	}
	return AllocateProportionally(doc.DiscountTotal, weights)
}

// ApproveBill posts a bill to the ledger: expenses and recoverable
// tax on the debit side, the payable as the balancing credit.
// Re-approval replaces the previous posting.
func (s *Service) ApproveBill(ctx context.Context, companyID, documentID int64) (ledger.Transaction, error) {
	defaultCurrency, err := s.settings.DefaultCurrency(ctx, companyID)
	if err != nil {
		return ledger.Transaction{}, err
	}
	ap, err := s.directory.System(ctx, companyID, accounts.SystemAccountsPayable)
	if err != nil {
		return ledger.Transaction{}, err
	}
	purchaseTax, err := s.directory.System(ctx, companyID, accounts.SystemPurchaseTax)
	if err != nil {
		return ledger.Transaction{}, err
	}
	purchaseDiscount, err := s.directory.System(ctx, companyID, accounts.SystemPurchaseDiscount)
	if err != nil {
		return ledger.Transaction{}, err
	}

	var posted ledger.Transaction
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		doc, err := tx.GetDocumentForUpdate(ctx, companyID, documentID)
		if err != nil {
			return err
		}
		if doc.Kind != documents.KindBill || doc.Status == documents.StatusVoid {
			return ErrNotPostable
		}
		if len(doc.LineItems) == 0 {
			return documents.ErrNoLineItems
		}

		var entries []ledger.EntryInput
		var debitTotal, creditTotal int64
		for _, li := range doc.LineItems {
			// non-recoverable tax folds into the expense; everything else
			// posts to the rule's own account
			var folded int64
			var lineEntries []ledger.EntryInput
			for _, adjID := range li.AdjustmentIDs {
				adj, err := s.adjustments.GetAdjustment(ctx, companyID, adjID)
				if err != nil {
					return err
				}
				raw := adj.Amount(li.Subtotal)
				if raw == 0 {
					continue
				}
				if adj.Category == documents.AdjustmentTax && !adj.Recoverable {
					folded += raw
					continue
				}
				amount, err := s.convert(ctx, raw, doc.CurrencyCode, defaultCurrency, doc.Date)
				if err != nil {
					return err
				}
				if adj.Category == documents.AdjustmentTax {
					accountID, err := s.adjustmentAccount(ctx, companyID, adj, purchaseTax)
					if err != nil {
						return err
					}
					lineEntries = append(lineEntries, ledger.EntryInput{AccountID: accountID, Type: ledger.EntryDebit, Amount: amount})
					debitTotal += amount
				} else {
					accountID, err := s.adjustmentAccount(ctx, companyID, adj, purchaseDiscount)
					if err != nil {
						return err
					}
					lineEntries = append(lineEntries, ledger.EntryInput{AccountID: accountID, Type: ledger.EntryCredit, Amount: amount})
					creditTotal += amount
				}
			}
			amount, err := s.convert(ctx, li.Subtotal+folded, doc.CurrencyCode, defaultCurrency, doc.Date)
			if err != nil {
				return err
			}
			if amount > 0 {
				entries = append(entries, ledger.EntryInput{AccountID: li.AccountID, Type: ledger.EntryDebit, Amount: amount})
				debitTotal += amount
			}
			entries = append(entries, lineEntries...)
		}
		if doc.DiscountMethod == documents.DiscountPerDocument && doc.DiscountTotal > 0 {
			for _, share := range allocateDocumentDiscount(doc) {
				if share == 0 {
					continue
				}
				amount, err := s.convert(ctx, share, doc.CurrencyCode, defaultCurrency, doc.Date)
				if err != nil {
					return err
				}
				entries = append(entries, ledger.EntryInput{AccountID: purchaseDiscount.ID, Type: ledger.EntryCredit, Amount: amount})
				creditTotal += amount
			}
		}
		// payable balances the converted debit side
		entries = append(entries, ledger.EntryInput{AccountID: ap.ID, Type: ledger.EntryCredit, Amount: debitTotal - creditTotal})

		in := ledger.PostingInput{
			CompanyID:   companyID,
			Type:        ledger.TransactionJournal,
			PostedAt:    doc.Date,
			Currency:    defaultCurrency,
			Description: fmt.Sprintf("Bill %s", doc.Number),
			SourceKind:  ledger.SourceBill,
			SourceID:    doc.SourceID,
			Entries:     entries,
		}
		if err := in.Validate(); err != nil {
			return err
		}
		if err := tx.DeleteBySource(ctx, companyID, ledger.SourceBill, doc.SourceID); err != nil {
			return err
		}
		posted, err = tx.InsertTransaction(ctx, in)
		if err != nil {
			return err
		}
		if err := tx.InsertEntries(ctx, posted.ID, in.Entries); err != nil {
			return err
		}

		if doc.Status == documents.StatusDraft {
			doc.Status = documents.StatusSent
		}
		approvedAt := s.now()
		doc.ApprovedAt = &approvedAt
		return tx.UpdateDocumentPosting(ctx, doc)
	})
	if err != nil {
		return ledger.Transaction{}, err
	}
	s.record(ctx, "posting.bill_approved", companyID, documentID, map[string]any{"transaction_id": posted.ID})
	s.invalidate(ctx)
	return posted, nil
}

// PaymentInput describes a payment or refund against one document.
// BankAccountID is the ledger account of the bank account the money
// moved through. Amount is positive cents in the document currency.
type PaymentInput struct {
	CompanyID     int64
	Kind          documents.Kind
	DocumentID    int64
	BankAccountID int64
	Amount        int64
	Refund        bool
	PaidAt        time.Time
	Method        string
	Notes         string
}

// RecordPayment applies a payment to an approved document: one
// payment row, one bank-side transaction, and the recomputed payment
// status, all in one repository transaction. Refunds flip the entry
// sides and reduce the paid total.
func (s *Service) RecordPayment(ctx context.Context, in PaymentInput) (documents.Payment, error) {
	if in.Amount <= 0 {
		return documents.Payment{}, ErrZeroPayment
	}
	defaultCurrency, err := s.settings.DefaultCurrency(ctx, in.CompanyID)
	if err != nil {
		return documents.Payment{}, err
	}
	counterKind := accounts.SystemAccountsReceivable
	if in.Kind == documents.KindBill {
		counterKind = accounts.SystemAccountsPayable
	}
	counter, err := s.directory.System(ctx, in.CompanyID, counterKind)
	if err != nil {
		return documents.Payment{}, err
	}

	var payment documents.Payment
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		doc, err := tx.GetDocumentForUpdate(ctx, in.CompanyID, in.DocumentID)
		if err != nil {
			return err
		}
		if doc.Kind != in.Kind {
			return documents.ErrDocumentNotFound
		}
		switch doc.Status {
		case documents.StatusDraft, documents.StatusVoid:
			return ErrNotPostable
		}

		payment, err = s.applyPayment(ctx, tx, &doc, in, counter.ID, defaultCurrency)
		if err != nil {
			return err
		}
		return tx.UpdateDocumentPosting(ctx, doc)
	})
	if err != nil {
		return documents.Payment{}, err
	}
	s.record(ctx, "posting.payment_recorded", in.CompanyID, in.DocumentID, map[string]any{
		"amount": in.Amount,
		"refund": in.Refund,
	})
	s.invalidate(ctx)
	return payment, nil
}

// applyPayment writes one payment's rows inside an open transaction
// and mutates the document's paid totals. The caller persists the
// document update.
func (s *Service) applyPayment(ctx context.Context, tx TxRepository, doc *documents.Document, in PaymentInput, counterAccountID int64, defaultCurrency string) (documents.Payment, error) {
	converted, err := s.convert(ctx, in.Amount, doc.CurrencyCode, defaultCurrency, in.PaidAt)
	if err != nil {
		return documents.Payment{}, err
	}

	// invoice payments move money into the bank, bill payments out;
	// refunds flip whichever direction applies
	intoBank := doc.Kind == documents.KindInvoice
	if in.Refund {
		intoBank = !intoBank
	}
	bankSide, counterSide := ledger.EntryDebit, ledger.EntryCredit
	txnType := ledger.TransactionDeposit
	if !intoBank {
		bankSide, counterSide = ledger.EntryCredit, ledger.EntryDebit
		txnType = ledger.TransactionWithdrawal
	}

	payment := documents.Payment{
		CompanyID:     in.CompanyID,
		DocumentKind:  doc.Kind,
		DocumentID:    doc.ID,
		SourceID:      uuid.New(),
		PaidAt:        in.PaidAt,
		Amount:        in.Amount,
		Refund:        in.Refund,
		Method:        in.Method,
		BankAccountID: in.BankAccountID,
		Notes:         in.Notes,
	}
	posting := ledger.PostingInput{
		CompanyID:   in.CompanyID,
		Type:        txnType,
		PostedAt:    in.PaidAt,
		Currency:    defaultCurrency,
		Description: fmt.Sprintf("Payment for %s %s", doc.Kind, doc.Number),
		SourceKind:  ledger.SourcePayment,
		SourceID:    payment.SourceID,
		Entries: []ledger.EntryInput{
			{AccountID: in.BankAccountID, Type: bankSide, Amount: converted},
			{AccountID: counterAccountID, Type: counterSide, Amount: converted},
		},
	}
	if err := posting.Validate(); err != nil {
		return documents.Payment{}, err
	}
	txn, err := tx.InsertTransaction(ctx, posting)
	if err != nil {
		return documents.Payment{}, err
	}
	if err := tx.InsertEntries(ctx, txn.ID, posting.Entries); err != nil {
		return documents.Payment{}, err
	}
	payment, err = tx.InsertPayment(ctx, payment)
	if err != nil {
		return documents.Payment{}, err
	}

	if in.Refund {
		doc.AmountPaid -= in.Amount
	} else {
		doc.AmountPaid += in.Amount
	}
	doc.AmountDue = doc.Total - doc.AmountPaid
	doc.Status = documents.StatusForPaid(doc.AmountPaid, doc.Total)
	return payment, nil
}

// BulkPaymentInput applies one received amount across several
// documents of the same kind and entity.
type BulkPaymentInput struct {
	CompanyID     int64
	Kind          documents.Kind
	DocumentIDs   []int64
	BankAccountID int64
	Amount        int64
	PaidAt        time.Time
	Method        string
	Notes         string
}

// RecordBulkPayment splits a lump sum across documents in proportion
// to their outstanding balances, with the final document absorbing
// the rounding remainder. All documents update atomically.
func (s *Service) RecordBulkPayment(ctx context.Context, in BulkPaymentInput) ([]documents.Payment, error) {
	if in.Amount <= 0 {
		return nil, ErrZeroPayment
	}
	defaultCurrency, err := s.settings.DefaultCurrency(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}
	counterKind := accounts.SystemAccountsReceivable
	if in.Kind == documents.KindBill {
		counterKind = accounts.SystemAccountsPayable
	}
	counter, err := s.directory.System(ctx, in.CompanyID, counterKind)
	if err != nil {
		return nil, err
	}

	var payments []documents.Payment
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		docs := make([]documents.Document, 0, len(in.DocumentIDs))
		weights := make([]int64, 0, len(in.DocumentIDs))
		for _, id := range in.DocumentIDs {
			doc, err := tx.GetDocumentForUpdate(ctx, in.CompanyID, id)
			if err != nil {
				return err
			}
			if doc.Kind != in.Kind {
				return documents.ErrDocumentNotFound
			}
			docs = append(docs, doc)
			due := doc.AmountDue
			if due < 0 {
				due = 0
			}
			weights = append(weights, due)
		}
		var outstanding int64
		for _, w := range weights {
			outstanding += w
		}
		if outstanding == 0 {
			return ErrNothingOutstanding
		}

		shares := AllocateProportionally(in.Amount, weights)
		for i := range docs {
			if shares[i] == 0 {
				continue
			}
			single := PaymentInput{
				CompanyID:     in.CompanyID,
				Kind:          in.Kind,
				DocumentID:    docs[i].ID,
				BankAccountID: in.BankAccountID,
				Amount:        shares[i],
				PaidAt:        in.PaidAt,
				Method:        in.Method,
				Notes:         in.Notes,
			}
			payment, err := s.applyPayment(ctx, tx, &docs[i], single, counter.ID, defaultCurrency)
			if err != nil {
				return err
			}
			if err := tx.UpdateDocumentPosting(ctx, docs[i]); err != nil {
				return err
			}
			payments = append(payments, payment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, "posting.bulk_payment_recorded", in.CompanyID, 0, map[string]any{
		"amount":    in.Amount,
		"documents": len(payments),
	})
	s.invalidate(ctx)
	return payments, nil
}

// CategorizeBankTransaction writes the balanced entry pair for an
// imported feed line: bank account on one side, the chosen category
// account on the other. Lines whose transaction already carries
// entries return ErrAlreadyCategorized and are left untouched.
func (s *Service) CategorizeBankTransaction(ctx context.Context, companyID, lineID, accountID int64) error {
	line, err := s.feed.Get(ctx, companyID, lineID)
	if err != nil {
		return err
	}
	defaultCurrency, err := s.settings.DefaultCurrency(ctx, companyID)
	if err != nil {
		return err
	}
	if _, err := s.directory.Resolve(ctx, companyID, accountID); err != nil {
		return err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		exists, err := tx.EntriesExist(ctx, line.TransactionID)
		if err != nil {
			return err
		}
		if exists {
			return bankfeed.ErrAlreadyCategorized
		}

		amount := line.Amount
		if amount < 0 {
			amount = -amount
		}
		converted, err := s.convert(ctx, amount, line.Currency, defaultCurrency, line.PostedAt)
		if err != nil {
			return err
		}
		bankSide, categorySide := ledger.EntryDebit, ledger.EntryCredit
		if !line.Deposit() {
			bankSide, categorySide = ledger.EntryCredit, ledger.EntryDebit
		}
		return tx.InsertEntries(ctx, line.TransactionID, []ledger.EntryInput{
			{AccountID: line.BankAccountID, Type: bankSide, Amount: converted},
			{AccountID: accountID, Type: categorySide, Amount: converted},
		})
	})
	if err != nil {
		return err
	}
	if err := s.feed.MarkCategorized(ctx, companyID, lineID); err != nil {
		return err
	}
	s.record(ctx, "posting.bank_line_categorized", companyID, lineID, map[string]any{"account_id": accountID})
	s.invalidate(ctx)
	return nil
}

// CategorizeBankTransfer books a feed line as a journal with an
// explicit debit/credit account pair, used for transfers between own
// accounts where the deposit/withdrawal sign convention does not pick
// the sides. A zero account id on either side falls back to the
// uncategorized transfer clearing account.
func (s *Service) CategorizeBankTransfer(ctx context.Context, companyID, lineID, debitAccountID, creditAccountID int64) error {
	line, err := s.feed.Get(ctx, companyID, lineID)
	if err != nil {
		return err
	}
	defaultCurrency, err := s.settings.DefaultCurrency(ctx, companyID)
	if err != nil {
		return err
	}
	if debitAccountID == 0 || creditAccountID == 0 {
		clearing, err := s.directory.System(ctx, companyID, accounts.SystemUncategorizedTransfer)
		if err != nil {
			return err
		}
		if debitAccountID == 0 {
			debitAccountID = clearing.ID
		}
		if creditAccountID == 0 {
			creditAccountID = clearing.ID
		}
	}
	if _, err := s.directory.Resolve(ctx, companyID, debitAccountID); err != nil {
		return err
	}
	if _, err := s.directory.Resolve(ctx, companyID, creditAccountID); err != nil {
		return err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		exists, err := tx.EntriesExist(ctx, line.TransactionID)
		if err != nil {
			return err
		}
		if exists {
			return bankfeed.ErrAlreadyCategorized
		}

		amount := line.Amount
		if amount < 0 {
			amount = -amount
		}
		converted, err := s.convert(ctx, amount, line.Currency, defaultCurrency, line.PostedAt)
		if err != nil {
			return err
		}
		return tx.InsertEntries(ctx, line.TransactionID, []ledger.EntryInput{
			{AccountID: debitAccountID, Type: ledger.EntryDebit, Amount: converted},
			{AccountID: creditAccountID, Type: ledger.EntryCredit, Amount: converted},
		})
	})
	if err != nil {
		return err
	}
	if err := s.feed.MarkCategorized(ctx, companyID, lineID); err != nil {
		return err
	}
	s.record(ctx, "posting.bank_line_transferred", companyID, lineID, map[string]any{
		"debit_account_id":  debitAccountID,
		"credit_account_id": creditAccountID,
	})
	s.invalidate(ctx)
	return nil
}
