// Package model holds the entity types shared across the round-up
// pipeline: users, pledges, banks, ledger addresses, and the raw and
// audit-copy transaction records that move between components.
package model

import (
	"time"

	"github.com/rounduppay/core/pkg/money"
)

// User is an enrolled donor. Ancillary fields (email, session, etc.) live
// in the out-of-scope REST surface; only what the round-up pipeline reads
// is modeled here.
type User struct {
	ID                 string
	Active             bool
	LatestRoundupDate  string // YYYY-MM-DD, empty if the user has never run
	Pledges            []Pledge
	AggregatorTokens   map[string]string // bank-type -> opaque access token
	AggregatorAccounts map[string]string // bank-type -> account id
}

// ActivePledge returns the first active pledge, matching the spec's
// "at most one active pledge is observed; if multiple, the first is taken"
// rule. Returns false if none is active.
func (u *User) ActivePledge() (Pledge, bool) {
	for _, p := range u.Pledges {
		if p.Active {
			return p, true
		}
	}
	return Pledge{}, false
}

// Pledge commits a user's round-ups from one bank to one non-profit.
type Pledge struct {
	Active       bool
	BankID       string
	NPOID        string
	MonthlyLimit money.Cents       // signed, negative bound
	Addresses    map[string]string // "YYYY-MM" -> address id
}

// AddressForMonth returns the ledger address id for the given "YYYY-MM"
// key, or false if the pledge has none provisioned for that month.
func (p Pledge) AddressForMonth(yyyymm string) (string, bool) {
	id, ok := p.Addresses[yyyymm]
	return id, ok
}

// Bank identifies an aggregator-connected financial institution.
type Bank struct {
	ID   string
	Type string // indexes AggregatorTokens / AggregatorAccounts
}

// Address is a per-pledge, per-month ledger identity that a hash-linked
// chain of round-up entries is appended to.
type Address struct {
	Address           string
	PublicKeyHex      string // hex-encoded ed25519 public key of the address signer
	LatestTransaction string // hash value of the current tip, empty for genesis
}

// IsGenesis reports whether the address has no chain entries yet.
func (a Address) IsGenesis() bool { return a.LatestTransaction == "" }

// RawTransaction is a transaction as reported by the external aggregator.
type RawTransaction struct {
	ID      string
	Amount  money.Cents // positive = debit
	Date    string      // YYYY-MM-DD
	Name    string
	Pending bool
}

// EligibleTransaction is a RawTransaction that survived pkg/txfilter, with
// its round-up precomputed.
type EligibleTransaction struct {
	RawTransaction
	Roundup money.Cents
}

// PlaidTransactionRecord is the audit copy persisted for every eligible
// raw transaction before chain assembly, independent of whether the chain
// is ultimately accepted by the signer.
type PlaidTransactionRecord struct {
	TransactionID string
	UserID        string
	Amount        money.Cents
	Roundup       money.Cents
	Date          string
	Name          string
	Summed        bool
}

// Run records the last invocation of a named background process
// ("roundup" for the scheduler, "roundup-consumer" for the consumer).
type Run struct {
	Process string
	Last    time.Time
}
