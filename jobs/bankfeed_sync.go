package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/clearbooks-io/clearbooks/internal/bankfeed"
)

const defaultSyncLookbackDays = 7

// FeedSyncer imports new bank feed lines, satisfied by the bank feed
// service.
type FeedSyncer interface {
	Sync(ctx context.Context, companyID, bankAccountID int64, since time.Time) (int, error)
}

// HandleBankFeedSync adapts the feed syncer to an asynq handler.
// Upstream outages requeue with backoff rather than failing the task
// permanently.
func HandleBankFeedSync(syncer FeedSyncer, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload BankFeedSyncPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.SinceDays <= 0 {
			payload.SinceDays = defaultSyncLookbackDays
		}
		since := time.Now().AddDate(0, 0, -payload.SinceDays)
		imported, err := syncer.Sync(ctx, payload.CompanyID, payload.BankAccountID, since)
		if err != nil {
			if errors.Is(err, bankfeed.ErrFeedUnavailable) {
				logger.Warn("bank feed unavailable, will retry",
					slog.Int64("bank_account_id", payload.BankAccountID),
					slog.Any("error", err))
			}
			return err
		}
		logger.Info("bank feed sync complete",
			slog.Int64("bank_account_id", payload.BankAccountID),
			slog.Int("imported", imported))
		return nil
	}
}
