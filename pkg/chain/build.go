// Package chain implements the chain builder (C3): given a verified
// previous tip, an address, and an ordered batch of eligible transactions,
// it produces a sequence of hash-linked chain entries.
package chain

import (
	"fmt"
	"time"
)

const hashType = "sha256"

// Build produces one chain entry per input, in order, each linked to the
// one before it by hash and carrying currency/limit forward from previous.
// Returns a BalanceBreach (non-blocking) if the final balance falls below
// previous.Payload.Limit — the builder never rejects on this condition
// (open question (a), decided non-blocking; see DESIGN.md).
//
// An empty inputs batch returns an empty, non-nil slice and a nil error;
// the caller is expected to skip enqueueing rather than treat this as
// failure.
func Build(address string, previous *Entry, inputs []RawInput) ([]*Entry, *BalanceBreach, error) {
	if previous == nil || previous.Payload.Currency == "" {
		return nil, nil, ErrInvalidPreviousTransaction
	}
	if previous.Payload.Address != address {
		return nil, nil, ErrAddressMismatch
	}

	wantHash, err := HashPayload(previous.Payload)
	if err != nil {
		return nil, nil, fmt.Errorf("chain: hashing previous payload: %w", err)
	}
	if wantHash != previous.Hash.Value {
		return nil, nil, ErrPreviousHashMismatch
	}

	entries := make([]*Entry, 0, len(inputs))
	prev := previous
	for _, in := range inputs {
		if in.ID == "" {
			return nil, nil, ErrInvalidTransactionInput
		}
		if !in.Amount.IsPositive() {
			return nil, nil, ErrInvalidTransactionAmount
		}
		if in.Roundup < 0 {
			return nil, nil, ErrInvalidTransactionRoundup
		}

		timestamp := in.Date
		if timestamp == "" {
			timestamp = time.Now().UTC().Format("2006-01-02")
		}

		prevHash := prev.Hash.Value
		payload := Payload{
			Count:     prev.Payload.Count + 1,
			Address:   address,
			Amount:    in.Amount,
			Roundup:   in.Roundup,
			Balance:   prev.Payload.Balance.Sub(in.Roundup),
			Currency:  prev.Payload.Currency,
			Limit:     prev.Payload.Limit,
			Previous:  &prevHash,
			Timestamp: timestamp,
			Reference: in.ID,
		}

		hashValue, err := HashPayload(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("chain: hashing payload for %s: %w", in.ID, err)
		}

		entry := &Entry{
			Hash:       Hash{Type: hashType, Value: hashValue},
			Payload:    payload,
			Signatures: []Signature{},
		}
		entries = append(entries, entry)
		prev = entry
	}

	var breach *BalanceBreach
	if len(entries) > 0 {
		final := entries[len(entries)-1]
		if final.Payload.Balance < final.Payload.Limit {
			breach = &BalanceBreach{FinalBalance: final.Payload.Balance, Limit: final.Payload.Limit}
		}
	}

	return entries, breach, nil
}
