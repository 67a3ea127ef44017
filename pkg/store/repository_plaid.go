package store

import (
	"context"
	"fmt"

	"github.com/rounduppay/core/pkg/model"
)

// InsertPlaidTransaction writes one audit row, best-effort, before chain
// assembly. A write collision on transactionId is treated as success
// (invariant 7: at most once per transactionId), so a redelivered or
// retried intake run never errors on this step.
func (c *Client) InsertPlaidTransaction(ctx context.Context, rec model.PlaidTransactionRecord) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO plaid_transactions (transaction_id, user_id, amount_cents, roundup_cents, date, name, summed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (transaction_id) DO NOTHING`,
		rec.TransactionID, rec.UserID, int64(rec.Amount), int64(rec.Roundup), rec.Date, rec.Name, rec.Summed)
	if err != nil {
		return fmt.Errorf("store: inserting plaid transaction %s: %w", rec.TransactionID, err)
	}
	return nil
}
