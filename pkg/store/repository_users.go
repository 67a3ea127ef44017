package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rounduppay/core/pkg/model"
	"github.com/rounduppay/core/pkg/money"
)

// EligibleUserIDs returns the ids of active users with at least one active
// pledge that has a provisioned address for some month. Aggregator-token
// presence is checked by the caller after bank-type resolution (the
// registry lookup the store layer does not own).
func (c *Client) EligibleUserIDs(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT DISTINCT u.id
		FROM users u
		JOIN pledges p ON p.user_id = u.id AND p.active
		JOIN pledge_addresses pa ON pa.pledge_id = p.id
		WHERE u.active
		ORDER BY u.id`)
	if err != nil {
		return nil, fmt.Errorf("store: querying eligible users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: scanning user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetUser hydrates a full User aggregate: the user row, its pledges, each
// pledge's monthly address map, and its aggregator tokens/accounts.
func (c *Client) GetUser(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{ID: id, AggregatorTokens: map[string]string{}, AggregatorAccounts: map[string]string{}}

	var latestRoundupDate sql.NullString
	row := c.db.QueryRowContext(ctx, `SELECT active, latest_roundup_date FROM users WHERE id = $1`, id)
	if err := row.Scan(&user.Active, &latestRoundupDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: querying user %s: %w", id, err)
	}
	user.LatestRoundupDate = latestRoundupDate.String

	pledgeRows, err := c.db.QueryContext(ctx, `
		SELECT id, active, bank_id, npo_id, monthly_limit_cents
		FROM pledges WHERE user_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("store: querying pledges for %s: %w", id, err)
	}
	defer pledgeRows.Close()

	type pledgeRow struct {
		dbID int64
		model.Pledge
	}
	var pledges []pledgeRow
	for pledgeRows.Next() {
		var pr pledgeRow
		var limitCents int64
		if err := pledgeRows.Scan(&pr.dbID, &pr.Active, &pr.BankID, &pr.NPOID, &limitCents); err != nil {
			return nil, fmt.Errorf("store: scanning pledge: %w", err)
		}
		pr.MonthlyLimit = money.Cents(limitCents)
		pr.Addresses = map[string]string{}
		pledges = append(pledges, pr)
	}
	if err := pledgeRows.Err(); err != nil {
		return nil, err
	}

	for i := range pledges {
		addrRows, err := c.db.QueryContext(ctx, `SELECT month, address_id FROM pledge_addresses WHERE pledge_id = $1`, pledges[i].dbID)
		if err != nil {
			return nil, fmt.Errorf("store: querying pledge addresses: %w", err)
		}
		for addrRows.Next() {
			var month, addressID string
			if err := addrRows.Scan(&month, &addressID); err != nil {
				addrRows.Close()
				return nil, fmt.Errorf("store: scanning pledge address: %w", err)
			}
			pledges[i].Addresses[month] = addressID
		}
		if err := addrRows.Err(); err != nil {
			addrRows.Close()
			return nil, err
		}
		addrRows.Close()
		user.Pledges = append(user.Pledges, pledges[i].Pledge)
	}

	tokenRows, err := c.db.QueryContext(ctx, `SELECT bank_type, access_token, account_id FROM aggregator_tokens WHERE user_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("store: querying aggregator tokens for %s: %w", id, err)
	}
	defer tokenRows.Close()
	for tokenRows.Next() {
		var bankType, token, account string
		if err := tokenRows.Scan(&bankType, &token, &account); err != nil {
			return nil, fmt.Errorf("store: scanning aggregator token: %w", err)
		}
		user.AggregatorTokens[bankType] = token
		user.AggregatorAccounts[bankType] = account
	}
	if err := tokenRows.Err(); err != nil {
		return nil, err
	}

	return user, nil
}

// SetLatestRoundupDate records the date C9 last successfully ran C8 for
// this user.
func (c *Client) SetLatestRoundupDate(ctx context.Context, userID, date string) error {
	_, err := c.db.ExecContext(ctx, `UPDATE users SET latest_roundup_date = $1 WHERE id = $2`, date, userID)
	if err != nil {
		return fmt.Errorf("store: updating latest_roundup_date for %s: %w", userID, err)
	}
	return nil
}
