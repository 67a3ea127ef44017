package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rounduppay/core/pkg/model"
)

// UpsertRun records the last invocation of a named background process.
func (c *Client) UpsertRun(ctx context.Context, run model.Run) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO runs (process, last) VALUES ($1, $2)
		ON CONFLICT (process) DO UPDATE SET last = EXCLUDED.last`,
		run.Process, run.Last)
	if err != nil {
		return fmt.Errorf("store: upserting run %s: %w", run.Process, err)
	}
	return nil
}

// GetRun fetches the last-run record for a process, or a zero-value Run
// with a zero time if it has never run.
func (c *Client) GetRun(ctx context.Context, process string) (model.Run, error) {
	run := model.Run{Process: process}
	var last time.Time
	row := c.db.QueryRowContext(ctx, `SELECT last FROM runs WHERE process = $1`, process)
	if err := row.Scan(&last); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, nil
		}
		return run, fmt.Errorf("store: querying run %s: %w", process, err)
	}
	run.Last = last
	return run, nil
}
