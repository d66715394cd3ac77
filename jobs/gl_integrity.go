package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const defaultIntegrityLookbackDays = 90

// IntegrityChecker flags unbalanced transactions, satisfied by the
// ledger service.
type IntegrityChecker interface {
	CheckIntegrity(ctx context.Context, companyID int64, from, to time.Time) ([]int64, error)
}

// IntegritySweep scans recent postings of every company and reports
// any transaction whose entries no longer net to zero. It never
// repairs anything; an unbalanced transaction means a bug or manual
// tampering and needs a human.
type IntegritySweep struct {
	checker   IntegrityChecker
	companies CompanyLister
	logger    *slog.Logger
	now       func() time.Time
}

// NewIntegritySweep builds the sweep.
func NewIntegritySweep(checker IntegrityChecker, companies CompanyLister, logger *slog.Logger) *IntegritySweep {
	return &IntegritySweep{checker: checker, companies: companies, logger: logger, now: time.Now}
}

// Run sweeps one company, or every company when companyID is zero.
// The returned error is non-nil only for infrastructure failures;
// unbalanced findings are logged and counted.
func (s *IntegritySweep) Run(ctx context.Context, companyID int64, lookbackDays int) (int, error) {
	if lookbackDays <= 0 {
		lookbackDays = defaultIntegrityLookbackDays
	}
	to := s.now()
	from := to.AddDate(0, 0, -lookbackDays)

	ids := []int64{companyID}
	if companyID == 0 {
		var err error
		ids, err = s.companies.ListIDs(ctx)
		if err != nil {
			return 0, err
		}
	}
	found := 0
	for _, id := range ids {
		bad, err := s.checker.CheckIntegrity(ctx, id, from, to)
		if err != nil {
			return found, fmt.Errorf("integrity check company %d: %w", id, err)
		}
		if len(bad) > 0 {
			s.logger.Error("unbalanced transactions found",
				slog.Int64("company_id", id),
				slog.Any("transaction_ids", bad))
			found += len(bad)
		}
	}
	return found, nil
}

// HandleLedgerIntegrity adapts the sweep to an asynq handler.
func HandleLedgerIntegrity(s *IntegritySweep) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload LedgerIntegrityPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		found, err := s.Run(ctx, payload.CompanyID, payload.LookbackDays)
		if err != nil {
			return err
		}
		if found == 0 {
			s.logger.Info("ledger integrity sweep clean", slog.Int64("company_id", payload.CompanyID))
		}
		return nil
	}
}
