package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rounduppay/core/pkg/model"
)

// GetAddress fetches one ledger address by id.
func (c *Client) GetAddress(ctx context.Context, address string) (*model.Address, error) {
	a := &model.Address{Address: address}
	row := c.db.QueryRowContext(ctx, `SELECT public_key_hex, latest_transaction FROM addresses WHERE address = $1`, address)
	if err := row.Scan(&a.PublicKeyHex, &a.LatestTransaction); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("store: querying address %s: %w", address, err)
	}
	return a, nil
}

// AdvanceTip sets Address.latestTransaction to newTip, but only if the
// address's current tip equals expectedPreviousTip (invariant 6: the tip
// only advances forward). A mismatch returns ErrStaleTip (open question
// (b), decided) without writing anything.
func (c *Client) AdvanceTip(ctx context.Context, address, expectedPreviousTip, newTip string) error {
	result, err := c.db.ExecContext(ctx, `
		UPDATE addresses SET latest_transaction = $1
		WHERE address = $2 AND latest_transaction = $3`,
		newTip, address, expectedPreviousTip)
	if err != nil {
		return fmt.Errorf("store: advancing tip for %s: %w", address, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: checking rows affected: %w", err)
	}
	if rows == 0 {
		current, getErr := c.GetAddress(ctx, address)
		if getErr == nil && current.LatestTransaction == newTip {
			// Already advanced by a prior, now-redelivered commit of the
			// same message: idempotent no-op, not a failure.
			return nil
		}
		return ErrStaleTip
	}
	return nil
}
