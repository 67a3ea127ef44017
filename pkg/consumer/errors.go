package consumer

import "errors"

// Sentinel errors from the commit protocol. Each one drops the current
// message (no delete, letting the queue redeliver) rather than aborting
// the consumer's polling loop.
var (
	ErrAddressNotFound       = errors.New("consumer: address-not-found")
	ErrOuterSignatureInvalid = errors.New("consumer: signature-for-aws-message-is-incorrect")
	ErrEntrySignatureInvalid = errors.New("consumer: signature-for-last-transaction-is-incorrect")
	ErrNoTransactionChain    = errors.New("consumer: no-transaction-chain")
	ErrMalformedMessage      = errors.New("consumer: malformed message")
)
