// Package intake implements the per-user intake worker (C8): one run
// fetches a user's recent transactions from the aggregator, filters and
// rounds them up, assembles the new chain entries, signs the envelope,
// and hands it to the outbound queue and the external signer trigger.
package intake

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/rounduppay/core/pkg/aggregator"
	"github.com/rounduppay/core/pkg/chain"
	"github.com/rounduppay/core/pkg/model"
	"github.com/rounduppay/core/pkg/money"
	"github.com/rounduppay/core/pkg/queue"
	"github.com/rounduppay/core/pkg/roundup"
	"github.com/rounduppay/core/pkg/signer"
	"github.com/rounduppay/core/pkg/signerhook"
	"github.com/rounduppay/core/pkg/store"
	"github.com/rounduppay/core/pkg/txfilter"

	"crypto/ed25519"
)

const defaultCurrency = "USD"

// DateRange is the caller-clamped aggregator lookback window, both ends
// YYYY-MM-DD.
type DateRange struct {
	GTE string
	LTE string
}

// WorkItem is one user's unit of work, as assembled by the scheduler.
type WorkItem struct {
	UserID          string
	Address         string
	AggregatorToken string
	MonthlyLimit    int64 // minor units, signed negative bound (money.Cents)
	BankType        string
	DateRange       DateRange
}

// Result reports what the worker accomplished, so the scheduler can
// decide whether to advance the user's latestRoundupDate.
type Result struct {
	Enqueued         bool
	TransactionCount int
}

// repository is the subset of *store.Client the worker needs, narrowed so
// tests can supply a fake.
type repository interface {
	GetAddress(ctx context.Context, address string) (*model.Address, error)
	GetChainEntryByHash(ctx context.Context, hashValue string) (*chain.Entry, error)
	InsertPlaidTransaction(ctx context.Context, rec model.PlaidTransactionRecord) error
}

// aggregatorClient is the subset of *aggregator.Client the worker needs.
type aggregatorClient interface {
	GetTransactions(ctx context.Context, accessToken, gte, lte string) ([]model.RawTransaction, error)
}

// outboundQueue is the subset of *queue.Outbound the worker needs.
type outboundQueue interface {
	Send(ctx context.Context, envelope *chain.Envelope, queueURL string) error
}

// signerTrigger is the subset of *signerhook.Client the worker needs.
type signerTrigger interface {
	Trigger(ctx context.Context) error
}

// Worker runs one user's C8 intake per invocation.
type Worker struct {
	store      repository
	aggregator aggregatorClient
	outbound   outboundQueue
	hook       signerTrigger

	privateKey ed25519.PrivateKey
	kid        string
	queueURL   string

	logger *log.Logger
}

// Option customizes a Worker.
type Option func(*Worker)

// WithLogger overrides the default logger, which writes to the stdlib
// log output.
func WithLogger(l *log.Logger) Option {
	return func(w *Worker) { w.logger = l }
}

// NewWorker constructs a Worker from its collaborators. privateKey signs
// the outer envelope with kid; queueURL is the to-signer queue.
func NewWorker(st *store.Client, agg *aggregator.Client, outbound *queue.Outbound, hook *signerhook.Client, privateKey ed25519.PrivateKey, kid, queueURL string, opts ...Option) *Worker {
	w := &Worker{
		store:      st,
		aggregator: agg,
		outbound:   outbound,
		hook:       hook,
		privateKey: privateKey,
		kid:        kid,
		queueURL:   queueURL,
		logger:     log.New(log.Writer(), "[IntakeWorker] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run executes one user's intake. It never returns an error that the
// caller must retry within this run: failures are logged and reported via
// a zero Result, matching the "log and signal ready" discipline of C8.
func (w *Worker) Run(ctx context.Context, item WorkItem) Result {
	raw, err := w.aggregator.GetTransactions(ctx, item.AggregatorToken, item.DateRange.GTE, item.DateRange.LTE)
	if err != nil {
		w.logger.Printf("user %s: aggregator-http-error: %v", item.UserID, err)
		return Result{}
	}

	eligible := txfilter.Filter(raw)
	if len(eligible) == 0 {
		return Result{}
	}

	inputs := make([]chain.RawInput, 0, len(eligible))
	for _, tx := range eligible {
		amountUp := roundup.Compute(tx.Amount)
		inputs = append(inputs, chain.RawInput{ID: tx.ID, Amount: tx.Amount, Roundup: amountUp, Date: tx.Date})

		if err := w.store.InsertPlaidTransaction(ctx, model.PlaidTransactionRecord{
			TransactionID: tx.ID,
			UserID:        item.UserID,
			Amount:        tx.Amount,
			Roundup:       amountUp,
			Date:          tx.Date,
			Name:          tx.Name,
			Summed:        false,
		}); err != nil {
			// Best-effort audit copy: a failure here never aborts the chain.
			w.logger.Printf("user %s: persisting plaid transaction %s: %v", item.UserID, tx.ID, err)
		}
	}

	address, err := w.store.GetAddress(ctx, item.Address)
	if err != nil {
		w.logger.Printf("user %s: address-not-found: %v", item.UserID, err)
		return Result{}
	}

	previous, err := w.previousTip(ctx, address, item)
	if err != nil {
		w.logger.Printf("user %s: %v", item.UserID, err)
		return Result{}
	}

	entries, breach, err := chain.Build(item.Address, previous, inputs)
	if err != nil {
		w.logger.Printf("user %s: chain build failed: %v", item.UserID, err)
		return Result{}
	}
	if len(entries) == 0 {
		return Result{}
	}
	if breach != nil {
		w.logger.Printf("user %s: balance-breach: balance=%s limit=%s", item.UserID, breach.FinalBalance, breach.Limit)
	}

	envelope := &chain.Envelope{
		Payload: chain.EnvelopePayload{
			Address:      item.Address,
			Previous:     previous,
			Transactions: derefEntries(entries),
		},
	}

	if err := signer.Sign(envelope, w.privateKey, w.kid); err != nil {
		w.logger.Printf("user %s: invalid-signature: %v", item.UserID, err)
		return Result{}
	}

	if err := w.outbound.Send(ctx, envelope, w.queueURL); err != nil {
		w.logger.Printf("user %s: queue-send-error: %v", item.UserID, err)
		return Result{}
	}

	if err := w.hook.Trigger(ctx); err != nil {
		w.logger.Printf("user %s: signer-http-error: %v", item.UserID, err)
		return Result{}
	}

	return Result{Enqueued: true, TransactionCount: len(entries)}
}

// previousTip resolves the chain tip to build against: a synthesized
// genesis entry when the address has never had a commit, otherwise the
// persisted entry named by Address.latestTransaction.
func (w *Worker) previousTip(ctx context.Context, address *model.Address, item WorkItem) (*chain.Entry, error) {
	if address.IsGenesis() {
		return genesisEntry(item.Address, item.MonthlyLimit)
	}

	entry, err := w.store.GetChainEntryByHash(ctx, address.LatestTransaction)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNoPreviousChain, address.LatestTransaction)
		}
		return nil, fmt.Errorf("fetching previous chain tip: %w", err)
	}
	return entry, nil
}

// genesisEntry synthesizes the zero-count starting point for an address
// that has never committed a chain entry, carrying the pledge's monthly
// limit forward as the builder expects.
func genesisEntry(address string, monthlyLimit int64) (*chain.Entry, error) {
	payload := chain.Payload{
		Count:     0,
		Address:   address,
		Amount:    0,
		Roundup:   0,
		Balance:   0,
		Currency:  defaultCurrency,
		Limit:     money.Cents(monthlyLimit),
		Previous:  nil,
		Timestamp: time.Now().UTC().Format("2006-01-02"),
		Reference: "",
	}
	hashHex, err := chain.HashPayload(payload)
	if err != nil {
		return nil, fmt.Errorf("hashing genesis payload: %w", err)
	}
	return &chain.Entry{
		Hash:    chain.Hash{Type: "sha256", Value: hashHex},
		Payload: payload,
	}, nil
}

func derefEntries(entries []*chain.Entry) []chain.Entry {
	out := make([]chain.Entry, len(entries))
	for i, e := range entries {
		out[i] = *e
	}
	return out
}
