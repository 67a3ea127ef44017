package chain

import "github.com/rounduppay/core/pkg/money"

// Hash identifies the digest algorithm and hex-encoded value of whatever it
// is attached to.
type Hash struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// SignatureHeader names the signing key that produced a Signature.
type SignatureHeader struct {
	Alg string `json:"alg"`
	Kid string `json:"kid"`
}

// Signature is one detached signature over an envelope or entry hash.
type Signature struct {
	Header    SignatureHeader `json:"header"`
	Signature string          `json:"signature"`
}

// Payload is the hashed content of one chain entry.
type Payload struct {
	Count     int         `json:"count"`
	Address   string      `json:"address"`
	Amount    money.Cents `json:"amount"`
	Roundup   money.Cents `json:"roundup"`
	Balance   money.Cents `json:"balance"`
	Currency  string      `json:"currency"`
	Limit     money.Cents `json:"limit"`
	Previous  *string     `json:"previous"`
	Timestamp string      `json:"timestamp"`
	Reference string      `json:"reference"`
}

// Entry is a hashed payload plus whatever signatures have accumulated on it
// so far (none at build time; the server signs the envelope, not its
// entries; the external signer appends its co-signature to the latest
// entry).
type Entry struct {
	Hash       Hash        `json:"hash"`
	Payload    Payload     `json:"payload"`
	Signatures []Signature `json:"signatures"`
}

// EnvelopePayload is the hashed content of an envelope: the address, the
// previous tip entry, and the new batch of entries. The intake worker
// always sets Previous: the persisted tip, or a synthesized zero-count
// genesis entry for an address with no commits yet.
type EnvelopePayload struct {
	Address      string `json:"address"`
	Previous     *Entry `json:"previous"`
	Transactions []Entry `json:"transactions"`
}

// Envelope is what is signed, enqueued, and eventually committed by the
// consumer.
type Envelope struct {
	Hash       Hash            `json:"hash"`
	Payload    EnvelopePayload `json:"payload"`
	Signatures []Signature     `json:"signatures"`
}

// RawInput is one eligible transaction ready for the builder: an amount and
// a precomputed round-up (pkg/roundup.Compute has already run), a date, and
// the aggregator transaction id that becomes payload.reference.
type RawInput struct {
	ID      string
	Amount  money.Cents
	Roundup money.Cents
	Date    string
}

// BalanceBreach is a non-blocking signal that the final entry's balance
// fell below previous.payload.limit. The builder still returns the built
// entries; it is up to the caller to log or alert on a non-nil breach.
type BalanceBreach struct {
	FinalBalance money.Cents
	Limit        money.Cents
}
