package intake

import "errors"

// Sentinel errors for the per-user intake worker (C8). Every one of
// these aborts only this user's run; the scheduler's fan-out is
// otherwise unaffected.
var (
	ErrNoAccessToken   = errors.New("intake: no aggregator access token for bank type")
	ErrNoAddress       = errors.New("intake: no address provisioned for this month")
	ErrNoPreviousChain = errors.New("intake: no-previous-chain")
)
