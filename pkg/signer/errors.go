// Package signer implements the signer (C4) and signature verifier (C5):
// computing the canonical hash over a chain envelope and producing or
// checking a detached ed25519 signature against it.
package signer

import "errors"

var (
	// ErrInvalidSignature is returned when the signing primitive yields no
	// signature bytes.
	ErrInvalidSignature = errors.New("signer: invalid-signature")
	// ErrNoTransactionChain is returned by Verify's callers when an envelope
	// has no transactions to verify against (malformed queue message).
	ErrNoTransactionChain = errors.New("signer: no-transaction-chain")
)
