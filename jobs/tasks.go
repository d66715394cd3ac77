package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeRecurringGenerate materialises due recurring invoices.
	TaskTypeRecurringGenerate = "recurring:generate"
	// TaskTypeLedgerIntegrity verifies every posted transaction still
	// balances.
	TaskTypeLedgerIntegrity = "ledger:integrity"
	// TaskTypeBankFeedSync pulls new lines from a bank feed.
	TaskTypeBankFeedSync = "bankfeed:sync"
)

// RecurringGeneratePayload scopes a generation run. CompanyID zero
// means every company.
type RecurringGeneratePayload struct {
	CompanyID int64 `json:"company_id"`
}

// NewRecurringGenerateTask constructs the generation task.
func NewRecurringGenerateTask(payload RecurringGeneratePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeRecurringGenerate, data), nil
}

// LedgerIntegrityPayload scopes an integrity sweep. CompanyID zero
// means every company; LookbackDays zero defaults to a full sweep
// window of 90 days.
type LedgerIntegrityPayload struct {
	CompanyID    int64 `json:"company_id"`
	LookbackDays int   `json:"lookback_days"`
}

// NewLedgerIntegrityTask constructs the integrity task.
func NewLedgerIntegrityTask(payload LedgerIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeLedgerIntegrity, data), nil
}

// BankFeedSyncPayload identifies the bank account to sync.
type BankFeedSyncPayload struct {
	CompanyID     int64 `json:"company_id"`
	BankAccountID int64 `json:"bank_account_id"`
	SinceDays     int   `json:"since_days"`
}

// NewBankFeedSyncTask constructs the feed sync task.
func NewBankFeedSyncTask(payload BankFeedSyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeBankFeedSync, data), nil
}
