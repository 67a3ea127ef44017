package chain

import "errors"

// Error kinds from the builder (C3). Callers classify on these sentinels
// via errors.Is; the intake worker maps them onto the abort/alert
// disposition table.
var (
	ErrAddressMismatch           = errors.New("chain: address-mismatch")
	ErrInvalidPreviousTransaction = errors.New("chain: invalid-previous-transaction")
	ErrPreviousHashMismatch      = errors.New("chain: previous-transaction-hash-mismatch")
	ErrInvalidTransactionInput   = errors.New("chain: invalid-transaction-input")
	ErrInvalidTransactionAmount  = errors.New("chain: invalid-transaction-amount")
	ErrInvalidTransactionRoundup = errors.New("chain: invalid-transaction-roundup")
)
