package posting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/clearbooks-io/clearbooks/internal/accounts"
	"github.com/clearbooks-io/clearbooks/internal/bankfeed"
	"github.com/clearbooks-io/clearbooks/internal/documents"
	"github.com/clearbooks-io/clearbooks/internal/ledger"
)

const (
	acctAR               = int64(100)
	acctSalesTax         = int64(101)
	acctSalesDiscount    = int64(102)
	acctAP               = int64(103)
	acctPurchaseTax      = int64(104)
	acctPurchaseDiscount = int64(105)
	acctTransferClearing = int64(106)
	acctBank             = int64(110)
	acctSales            = int64(120)
	acctRent             = int64(130)
)

type memoryStore struct {
	docs     map[int64]documents.Document
	txns     map[int64]ledger.Transaction
	entries  map[int64][]ledger.EntryInput
	payments []documents.Payment
	nextTxn  int64
	nextPay  int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		docs:    make(map[int64]documents.Document),
		txns:    make(map[int64]ledger.Transaction),
		entries: make(map[int64][]ledger.EntryInput),
	}
}

func (s *memoryStore) snapshot() *memoryStore {
	c := newMemoryStore()
	for k, v := range s.docs {
		c.docs[k] = v
	}
	for k, v := range s.txns {
		c.txns[k] = v
	}
	for k, v := range s.entries {
		c.entries[k] = append([]ledger.EntryInput(nil), v...)
	}
	c.payments = append([]documents.Payment(nil), s.payments...)
	c.nextTxn, c.nextPay = s.nextTxn, s.nextPay
	return c
}

type memoryPostingRepo struct {
	store *memoryStore
}

// WithTx restores the pre-transaction state when fn fails, matching
// the rollback the real repository gets from Postgres.
func (r *memoryPostingRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	before := r.store.snapshot()
	if err := fn(ctx, &memoryPostingTx{store: r.store}); err != nil {
		*r.store = *before
		return err
	}
	return nil
}

type memoryPostingTx struct {
	store *memoryStore
}

func (t *memoryPostingTx) InsertTransaction(ctx context.Context, in ledger.PostingInput) (ledger.Transaction, error) {
	t.store.nextTxn++
	txn := ledger.Transaction{
		ID:         t.store.nextTxn,
		CompanyID:  in.CompanyID,
		Type:       in.Type,
		PostedAt:   in.PostedAt,
		Amount:     in.Total(),
		Currency:   in.Currency,
		SourceKind: in.SourceKind,
		SourceID:   in.SourceID,
	}
	t.store.txns[txn.ID] = txn
	return txn, nil
}

func (t *memoryPostingTx) InsertEntries(ctx context.Context, transactionID int64, entries []ledger.EntryInput) error {
	t.store.entries[transactionID] = append(t.store.entries[transactionID], entries...)
	return nil
}

func (t *memoryPostingTx) DeleteBySource(ctx context.Context, companyID int64, kind ledger.SourceKind, sourceID uuid.UUID) error {
	for id, txn := range t.store.txns {
		if txn.CompanyID == companyID && txn.SourceKind == kind && txn.SourceID == sourceID {
			delete(t.store.txns, id)
			delete(t.store.entries, id)
		}
	}
	return nil
}

func (t *memoryPostingTx) EntriesExist(ctx context.Context, transactionID int64) (bool, error) {
	return len(t.store.entries[transactionID]) > 0, nil
}

func (t *memoryPostingTx) GetDocumentForUpdate(ctx context.Context, companyID, documentID int64) (documents.Document, error) {
	doc, ok := t.store.docs[documentID]
	if !ok || doc.CompanyID != companyID {
		return documents.Document{}, documents.ErrDocumentNotFound
	}
	return doc, nil
}

func (t *memoryPostingTx) UpdateDocumentPosting(ctx context.Context, doc documents.Document) error {
	stored, ok := t.store.docs[doc.ID]
	if !ok {
		return documents.ErrDocumentNotFound
	}
	stored.Status = doc.Status
	stored.ApprovedAt = doc.ApprovedAt
	stored.AmountPaid = doc.AmountPaid
	stored.AmountDue = doc.AmountDue
	t.store.docs[doc.ID] = stored
	return nil
}

func (t *memoryPostingTx) InsertPayment(ctx context.Context, payment documents.Payment) (documents.Payment, error) {
	t.store.nextPay++
	payment.ID = t.store.nextPay
	t.store.payments = append(t.store.payments, payment)
	return payment, nil
}

type stubDirectory struct{}

func (stubDirectory) System(ctx context.Context, companyID int64, kind accounts.SystemAccountKind) (accounts.Account, error) {
	ids := map[accounts.SystemAccountKind]int64{
		accounts.SystemAccountsReceivable:    acctAR,
		accounts.SystemSalesTax:              acctSalesTax,
		accounts.SystemSalesDiscount:         acctSalesDiscount,
		accounts.SystemAccountsPayable:       acctAP,
		accounts.SystemPurchaseTax:           acctPurchaseTax,
		accounts.SystemPurchaseDiscount:      acctPurchaseDiscount,
		accounts.SystemUncategorizedTransfer: acctTransferClearing,
	}
	id, ok := ids[kind]
	if !ok {
		return accounts.Account{}, accounts.ErrChartNotSeeded
	}
	return accounts.Account{ID: id, CompanyID: companyID}, nil
}

func (stubDirectory) Resolve(ctx context.Context, companyID, accountID int64) (accounts.Account, error) {
	return accounts.Account{ID: accountID, CompanyID: companyID}, nil
}

type stubAdjustments struct {
	byID map[int64]documents.Adjustment
}

func (s stubAdjustments) GetAdjustment(ctx context.Context, companyID, adjustmentID int64) (documents.Adjustment, error) {
	adj, ok := s.byID[adjustmentID]
	if !ok {
		return documents.Adjustment{}, documents.ErrAdjustmentNotFound
	}
	return adj, nil
}

type stubRates struct {
	rates map[string]decimal.Decimal
}

func (s stubRates) Rate(ctx context.Context, from, to string, on time.Time) (decimal.Decimal, error) {
	rate, ok := s.rates[from+"/"+to]
	if !ok {
		return decimal.Zero, errors.New("no rate")
	}
	return rate, nil
}

type stubSettings struct{}

func (stubSettings) DefaultCurrency(ctx context.Context, companyID int64) (string, error) {
	return "USD", nil
}

type memoryFeed struct {
	lines map[int64]bankfeed.RawTransaction
}

func (f *memoryFeed) Get(ctx context.Context, companyID, lineID int64) (bankfeed.RawTransaction, error) {
	line, ok := f.lines[lineID]
	if !ok {
		return bankfeed.RawTransaction{}, bankfeed.ErrLineNotFound
	}
	return line, nil
}

func (f *memoryFeed) MarkCategorized(ctx context.Context, companyID, lineID int64) error {
	line := f.lines[lineID]
	line.Categorized = true
	f.lines[lineID] = line
	return nil
}

func newTestService(store *memoryStore, adjustments map[int64]documents.Adjustment, feed *memoryFeed) *Service {
	if feed == nil {
		feed = &memoryFeed{lines: map[int64]bankfeed.RawTransaction{}}
	}
	rates := stubRates{rates: map[string]decimal.Decimal{
		"EUR/USD": decimal.RequireFromString("1.0917"),
	}}
	return NewService(
		&memoryPostingRepo{store: store},
		stubDirectory{},
		stubAdjustments{byID: adjustments},
		rates,
		stubSettings{},
		nil,
		nil,
		feed,
	)
}

func balancedEntries(t *testing.T, entries []ledger.EntryInput) (debit, credit int64) {
	t.Helper()
	for _, e := range entries {
		require.GreaterOrEqual(t, e.Amount, int64(0))
		if e.Type == ledger.EntryDebit {
			debit += e.Amount
		} else {
			credit += e.Amount
		}
	}
	require.Equal(t, debit, credit)
	return debit, credit
}

// salesTaxAdjustments is the 10% sales tax rule the invoice fixture
// lines reference.
func salesTaxAdjustments() map[int64]documents.Adjustment {
	return map[int64]documents.Adjustment{
		1: {ID: 1, Category: documents.AdjustmentTax, Type: documents.AdjustmentSales, Computation: documents.ComputationPercentage, Rate: 1000},
	}
}

func invoiceFixture() documents.Document {
	doc := documents.Document{
		ID:           1,
		CompanyID:    1,
		Kind:         documents.KindInvoice,
		Number:       "INV-007",
		EntityID:     5,
		SourceID:     uuid.New(),
		Date:         time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC),
		CurrencyCode: "USD",
		Status:       documents.StatusDraft,
		LineItems: []documents.LineItem{
			{AccountID: acctSales, Subtotal: 60000, TaxTotal: 6000, AdjustmentIDs: []int64{1}, Total: 66000},
			{AccountID: acctSales, Subtotal: 40000, TaxTotal: 4000, AdjustmentIDs: []int64{1}, Total: 44000},
		},
	}
	doc.Subtotal = 100000
	doc.TaxTotal = 10000
	doc.Total = 110000
	doc.AmountDue = 110000
	return doc
}

func TestApproveInvoicePostsBalancedJournal(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.docs[1] = invoiceFixture()
	svc := newTestService(store, salesTaxAdjustments(), nil)

	txn, err := svc.ApproveInvoice(ctx, 1, 1)
	require.NoError(t, err)

	entries := store.entries[txn.ID]
	debit, _ := balancedEntries(t, entries)
	require.Equal(t, int64(110000), debit)

	var arDebit int64
	for _, e := range entries {
		if e.AccountID == acctAR && e.Type == ledger.EntryDebit {
			arDebit += e.Amount
		}
	}
	require.Equal(t, int64(110000), arDebit)

	doc := store.docs[1]
	require.Equal(t, documents.StatusSent, doc.Status)
	require.NotNil(t, doc.ApprovedAt)
}

func TestReapprovalReplacesPriorPosting(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.docs[1] = invoiceFixture()
	svc := newTestService(store, salesTaxAdjustments(), nil)

	first, err := svc.ApproveInvoice(ctx, 1, 1)
	require.NoError(t, err)
	second, err := svc.ApproveInvoice(ctx, 1, 1)
	require.NoError(t, err)

	require.NotContains(t, store.txns, first.ID)
	require.Contains(t, store.txns, second.ID)
	require.Len(t, store.txns, 1)
}

func TestApproveInvoiceMultiCurrencyBalances(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	doc := invoiceFixture()
	doc.CurrencyCode = "EUR"
	// odd subtotals force per-component rounding during conversion
	doc.LineItems = []documents.LineItem{
		{AccountID: acctSales, Subtotal: 33333, Total: 33333},
		{AccountID: acctSales, Subtotal: 66667, Total: 66667},
	}
	doc.Subtotal = 100000
	doc.TaxTotal = 0
	doc.Total = 100000
	store.docs[1] = doc
	svc := newTestService(store, nil, nil)

	txn, err := svc.ApproveInvoice(ctx, 1, 1)
	require.NoError(t, err)

	// the receivable absorbs conversion rounding so the journal
	// balances in company currency regardless of the rate
	balancedEntries(t, store.entries[txn.ID])
	require.Equal(t, "USD", store.txns[txn.ID].Currency)
}

func TestApproveInvoiceRejectsWrongState(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	doc := invoiceFixture()
	doc.Status = documents.StatusVoid
	store.docs[1] = doc
	svc := newTestService(store, salesTaxAdjustments(), nil)

	_, err := svc.ApproveInvoice(ctx, 1, 1)
	require.ErrorIs(t, err, ErrNotPostable)
	require.Empty(t, store.txns)
}

func TestApproveInvoicePostsLinkedAdjustmentAccounts(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	vatPayable := int64(999)
	promoContra := int64(998)
	adjustments := map[int64]documents.Adjustment{
		1: {ID: 1, Category: documents.AdjustmentTax, Type: documents.AdjustmentSales, Computation: documents.ComputationPercentage, Rate: 1000, AccountID: &vatPayable},
		2: {ID: 2, Category: documents.AdjustmentDiscount, Type: documents.AdjustmentSales, Computation: documents.ComputationFixed, Rate: 250, AccountID: &promoContra},
	}
	doc := invoiceFixture()
	doc.LineItems = []documents.LineItem{
		{AccountID: acctSales, Subtotal: 10000, TaxTotal: 1000, DiscountTotal: 250, AdjustmentIDs: []int64{1, 2}, Total: 10750},
	}
	doc.Subtotal = 10000
	doc.TaxTotal = 1000
	doc.DiscountTotal = 250
	doc.Total = 10750
	doc.AmountDue = 10750
	store.docs[1] = doc
	svc := newTestService(store, adjustments, nil)

	txn, err := svc.ApproveInvoice(ctx, 1, 1)
	require.NoError(t, err)

	entries := store.entries[txn.ID]
	balancedEntries(t, entries)

	byAccount := map[int64]int64{}
	for _, e := range entries {
		if e.Type == ledger.EntryDebit {
			byAccount[e.AccountID] += e.Amount
		} else {
			byAccount[e.AccountID] -= e.Amount
		}
	}
	// rules linked to their own accounts bypass the system fallbacks
	require.Equal(t, int64(-1000), byAccount[vatPayable])
	require.Equal(t, int64(250), byAccount[promoContra])
	require.Zero(t, byAccount[acctSalesTax])
	require.Zero(t, byAccount[acctSalesDiscount])
	require.Equal(t, int64(10750), byAccount[acctAR])
}

func TestApproveInvoiceAllocatesDocumentDiscount(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	doc := invoiceFixture()
	doc.DiscountMethod = documents.DiscountPerDocument
	doc.DiscountComputation = documents.ComputationFixed
	doc.DiscountRate = 7
	doc.LineItems = []documents.LineItem{
		{AccountID: acctSales, Subtotal: 6000, Total: 6000},
		{AccountID: acctSales, Subtotal: 4000, Total: 4000},
	}
	doc.Subtotal = 10000
	doc.TaxTotal = 0
	doc.DiscountTotal = 7
	doc.Total = 9993
	doc.AmountDue = 9993
	store.docs[1] = doc
	svc := newTestService(store, nil, nil)

	txn, err := svc.ApproveInvoice(ctx, 1, 1)
	require.NoError(t, err)

	entries := store.entries[txn.ID]
	balancedEntries(t, entries)

	var shares []int64
	var arDebit int64
	for _, e := range entries {
		if e.AccountID == acctSalesDiscount {
			require.Equal(t, ledger.EntryDebit, e.Type)
			shares = append(shares, e.Amount)
		}
		if e.AccountID == acctAR {
			arDebit = e.Amount
		}
	}
	// 60/40 split of 7 cents, remainder on the last line
	require.Equal(t, []int64{4, 3}, shares)
	require.Equal(t, int64(9993), arDebit)
}

func TestApproveBillSplitsRecoverableTax(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	adjustments := map[int64]documents.Adjustment{
		1: {ID: 1, Category: documents.AdjustmentTax, Computation: documents.ComputationPercentage, Rate: 1000, Recoverable: true},
		2: {ID: 2, Category: documents.AdjustmentTax, Computation: documents.ComputationPercentage, Rate: 500, Recoverable: false},
	}
	doc := documents.Document{
		ID:           2,
		CompanyID:    1,
		Kind:         documents.KindBill,
		Number:       "BILL-31",
		SourceID:     uuid.New(),
		Date:         time.Date(2024, time.April, 9, 0, 0, 0, 0, time.UTC),
		CurrencyCode: "USD",
		Status:       documents.StatusDraft,
		LineItems: []documents.LineItem{
			// 10% recoverable + 5% non-recoverable on 50000
			{AccountID: acctRent, Subtotal: 50000, TaxTotal: 7500, AdjustmentIDs: []int64{1, 2}, Total: 57500},
		},
	}
	doc.Subtotal = 50000
	doc.TaxTotal = 7500
	doc.Total = 57500
	store.docs[2] = doc
	svc := newTestService(store, adjustments, nil)

	txn, err := svc.ApproveBill(ctx, 1, 2)
	require.NoError(t, err)

	entries := store.entries[txn.ID]
	balancedEntries(t, entries)

	byAccount := map[int64]int64{}
	for _, e := range entries {
		if e.Type == ledger.EntryDebit {
			byAccount[e.AccountID] += e.Amount
		} else {
			byAccount[e.AccountID] -= e.Amount
		}
	}
	// non-recoverable 2500 folds into the expense debit
	require.Equal(t, int64(52500), byAccount[acctRent])
	require.Equal(t, int64(5000), byAccount[acctPurchaseTax])
	require.Equal(t, int64(-57500), byAccount[acctAP])
}

func TestApproveBillPostsLinkedTaxAccount(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	inputVAT := int64(997)
	adjustments := map[int64]documents.Adjustment{
		1: {ID: 1, Category: documents.AdjustmentTax, Type: documents.AdjustmentPurchase, Computation: documents.ComputationPercentage, Rate: 1000, Recoverable: true, AccountID: &inputVAT},
	}
	doc := documents.Document{
		ID:           3,
		CompanyID:    1,
		Kind:         documents.KindBill,
		Number:       "BILL-44",
		SourceID:     uuid.New(),
		Date:         time.Date(2024, time.April, 16, 0, 0, 0, 0, time.UTC),
		CurrencyCode: "USD",
		Status:       documents.StatusDraft,
		LineItems: []documents.LineItem{
			{AccountID: acctRent, Subtotal: 50000, TaxTotal: 5000, AdjustmentIDs: []int64{1}, Total: 55000},
		},
	}
	doc.Subtotal = 50000
	doc.TaxTotal = 5000
	doc.Total = 55000
	store.docs[3] = doc
	svc := newTestService(store, adjustments, nil)

	txn, err := svc.ApproveBill(ctx, 1, 3)
	require.NoError(t, err)

	entries := store.entries[txn.ID]
	balancedEntries(t, entries)

	byAccount := map[int64]int64{}
	for _, e := range entries {
		if e.Type == ledger.EntryDebit {
			byAccount[e.AccountID] += e.Amount
		} else {
			byAccount[e.AccountID] -= e.Amount
		}
	}
	require.Equal(t, int64(50000), byAccount[acctRent])
	require.Equal(t, int64(5000), byAccount[inputVAT])
	require.Zero(t, byAccount[acctPurchaseTax])
	require.Equal(t, int64(-55000), byAccount[acctAP])
}

func sentInvoice(id int64, total int64) documents.Document {
	doc := invoiceFixture()
	doc.ID = id
	doc.SourceID = uuid.New()
	doc.Status = documents.StatusSent
	doc.LineItems = []documents.LineItem{{AccountID: acctSales, Subtotal: total, Total: total}}
	doc.Subtotal = total
	doc.TaxTotal = 0
	doc.Total = total
	doc.AmountDue = total
	return doc
}

func TestRecordPaymentLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.docs[1] = sentInvoice(1, 10000)
	svc := newTestService(store, nil, nil)

	pay := func(amount int64, refund bool) error {
		_, err := svc.RecordPayment(ctx, PaymentInput{
			CompanyID:     1,
			Kind:          documents.KindInvoice,
			DocumentID:    1,
			BankAccountID: acctBank,
			Amount:        amount,
			Refund:        refund,
			PaidAt:        time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
			Method:        "bank_transfer",
		})
		return err
	}

	require.NoError(t, pay(4000, false))
	require.Equal(t, documents.StatusPartial, store.docs[1].Status)
	require.Equal(t, int64(6000), store.docs[1].AmountDue)

	require.NoError(t, pay(6000, false))
	require.Equal(t, documents.StatusPaid, store.docs[1].Status)

	require.NoError(t, pay(500, false))
	require.Equal(t, documents.StatusOverpaid, store.docs[1].Status)

	// refund walks the overpayment back
	require.NoError(t, pay(500, true))
	require.Equal(t, documents.StatusPaid, store.docs[1].Status)

	for id := range store.txns {
		balancedEntries(t, store.entries[id])
	}
}

func TestRecordPaymentRejectsDraftAndZero(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.docs[1] = invoiceFixture() // draft
	svc := newTestService(store, nil, nil)

	_, err := svc.RecordPayment(ctx, PaymentInput{CompanyID: 1, Kind: documents.KindInvoice, DocumentID: 1, BankAccountID: acctBank, Amount: 1000})
	require.ErrorIs(t, err, ErrNotPostable)
	require.Empty(t, store.payments)

	_, err = svc.RecordPayment(ctx, PaymentInput{CompanyID: 1, Kind: documents.KindInvoice, DocumentID: 1, BankAccountID: acctBank})
	require.ErrorIs(t, err, ErrZeroPayment)
}

func TestRecordBulkPaymentAllocatesAcrossInvoices(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.docs[1] = sentInvoice(1, 6000)
	store.docs[2] = sentInvoice(2, 4000)
	svc := newTestService(store, nil, nil)

	// 7 cents short of the combined total: 60/40 split puts the odd
	// cent where the running remainder leaves it
	payments, err := svc.RecordBulkPayment(ctx, BulkPaymentInput{
		CompanyID:     1,
		Kind:          documents.KindInvoice,
		DocumentIDs:   []int64{1, 2},
		BankAccountID: acctBank,
		Amount:        9993,
		PaidAt:        time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, payments, 2)
	require.Equal(t, int64(5996), payments[0].Amount)
	require.Equal(t, int64(3997), payments[1].Amount)

	require.Equal(t, int64(4), store.docs[1].AmountDue)
	require.Equal(t, int64(3), store.docs[2].AmountDue)
	require.Equal(t, documents.StatusPartial, store.docs[1].Status)
	require.Equal(t, documents.StatusPartial, store.docs[2].Status)
}

func TestRecordBulkPaymentNothingOutstanding(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	doc := sentInvoice(1, 5000)
	doc.AmountPaid = 5000
	doc.AmountDue = 0
	doc.Status = documents.StatusPaid
	store.docs[1] = doc
	svc := newTestService(store, nil, nil)

	_, err := svc.RecordBulkPayment(ctx, BulkPaymentInput{
		CompanyID:     1,
		Kind:          documents.KindInvoice,
		DocumentIDs:   []int64{1},
		BankAccountID: acctBank,
		Amount:        1000,
	})
	require.ErrorIs(t, err, ErrNothingOutstanding)
	require.Empty(t, store.payments)
}

func TestCategorizeBankTransactionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.nextTxn = 50
	store.txns[50] = ledger.Transaction{ID: 50, CompanyID: 1, Type: ledger.TransactionWithdrawal}
	feed := &memoryFeed{lines: map[int64]bankfeed.RawTransaction{
		7: {
			ID:            7,
			CompanyID:     1,
			BankAccountID: acctBank,
			TransactionID: 50,
			Amount:        -4200,
			Currency:      "USD",
			Description:   "coffee beans",
		},
	}}
	svc := newTestService(store, nil, feed)

	require.NoError(t, svc.CategorizeBankTransaction(ctx, 1, 7, acctRent))

	entries := store.entries[50]
	balancedEntries(t, entries)
	require.Len(t, entries, 2)
	// withdrawal credits the bank and debits the category
	for _, e := range entries {
		if e.AccountID == acctBank {
			require.Equal(t, ledger.EntryCredit, e.Type)
		}
		if e.AccountID == acctRent {
			require.Equal(t, ledger.EntryDebit, e.Type)
		}
	}
	require.True(t, feed.lines[7].Categorized)

	err := svc.CategorizeBankTransaction(ctx, 1, 7, acctRent)
	require.ErrorIs(t, err, bankfeed.ErrAlreadyCategorized)
	require.Len(t, store.entries[50], 2)
}

func TestCategorizeBankTransferBooksExplicitPair(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.nextTxn = 60
	store.txns[60] = ledger.Transaction{ID: 60, CompanyID: 1, Type: ledger.TransactionWithdrawal}
	feed := &memoryFeed{lines: map[int64]bankfeed.RawTransaction{
		8: {
			ID:            8,
			CompanyID:     1,
			BankAccountID: acctBank,
			TransactionID: 60,
			Amount:        -25000,
			Currency:      "USD",
			Description:   "move to savings",
		},
	}}
	svc := newTestService(store, nil, feed)

	savings := int64(111)
	require.NoError(t, svc.CategorizeBankTransfer(ctx, 1, 8, savings, acctBank))

	entries := store.entries[60]
	balancedEntries(t, entries)
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.Equal(t, int64(25000), e.Amount)
		switch e.AccountID {
		case savings:
			require.Equal(t, ledger.EntryDebit, e.Type)
		case acctBank:
			require.Equal(t, ledger.EntryCredit, e.Type)
		default:
			t.Fatalf("unexpected account %d", e.AccountID)
		}
	}
	require.True(t, feed.lines[8].Categorized)

	err := svc.CategorizeBankTransfer(ctx, 1, 8, savings, acctBank)
	require.ErrorIs(t, err, bankfeed.ErrAlreadyCategorized)
	require.Len(t, store.entries[60], 2)
}

func TestCategorizeBankTransferDefaultsToClearingAccount(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.nextTxn = 61
	store.txns[61] = ledger.Transaction{ID: 61, CompanyID: 1, Type: ledger.TransactionDeposit}
	feed := &memoryFeed{lines: map[int64]bankfeed.RawTransaction{
		9: {
			ID:            9,
			CompanyID:     1,
			BankAccountID: acctBank,
			TransactionID: 61,
			Amount:        18000,
			Currency:      "USD",
			Description:   "incoming wire",
		},
	}}
	svc := newTestService(store, nil, feed)

	require.NoError(t, svc.CategorizeBankTransfer(ctx, 1, 9, acctBank, 0))

	entries := store.entries[61]
	balancedEntries(t, entries)
	require.Len(t, entries, 2)
	for _, e := range entries {
		if e.AccountID == acctTransferClearing {
			require.Equal(t, ledger.EntryCredit, e.Type)
		}
		if e.AccountID == acctBank {
			require.Equal(t, ledger.EntryDebit, e.Type)
		}
	}
}
