// Package consumer implements the consumer (C10): draining the
// from-signer queue, verifying each envelope's signatures and hash
// linkage, persisting its entries, and advancing the address tip.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/rounduppay/core/pkg/chain"
	"github.com/rounduppay/core/pkg/firestoresync"
	"github.com/rounduppay/core/pkg/metrics"
	"github.com/rounduppay/core/pkg/model"
	"github.com/rounduppay/core/pkg/queue"
	"github.com/rounduppay/core/pkg/signer"
	"github.com/rounduppay/core/pkg/store"
)

// State is one of the consumer's state-machine states (spec §4.10).
type State string

const (
	StatePolling    State = "polling"
	StateProcessing State = "processing"
	StateTerminal   State = "terminal"
)

// emptyPollThreshold is how many consecutive empty polls the consumer
// tolerates before terminating (spec §4.10, §5).
const emptyPollThreshold = 3

const runProcessName = "roundup-consumer"

// repository is the subset of *store.Client the consumer needs.
type repository interface {
	GetAddress(ctx context.Context, address string) (*model.Address, error)
	UpsertChainEntry(ctx context.Context, address string, entry *chain.Entry) error
	AdvanceTip(ctx context.Context, address, expectedPreviousTip, newTip string) error
	UpsertRun(ctx context.Context, run model.Run) error
}

// inboundQueue is the subset of *queue.Inbound the consumer needs.
type inboundQueue interface {
	Receive(ctx context.Context, queueURL string) ([]queue.Message, error)
	Delete(ctx context.Context, queueURL, receiptHandle string) error
}

// Consumer runs C10's poll/process loop to completion (sustained
// emptiness) each time Run is invoked.
type Consumer struct {
	inbound inboundQueue
	store   repository
	metrics *metrics.Registry
	sync    *firestoresync.SyncService

	queueURL        string
	serverPublicKey string

	state      State
	emptyCount int

	logger *log.Logger
}

// Option customizes a Consumer.
type Option func(*Consumer)

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Consumer) { c.logger = l }
}

// WithSyncService mirrors each commit, signature failure, and run record
// to Firestore for the operator dashboard. Omit this option to skip
// mirroring entirely.
func WithSyncService(s *firestoresync.SyncService) Option {
	return func(c *Consumer) { c.sync = s }
}

// NewConsumer builds a Consumer. serverPublicKeyHex verifies the outer
// (server-kid) envelope signature in the commit protocol's step 2.
func NewConsumer(inbound *queue.Inbound, st *store.Client, metricsReg *metrics.Registry, queueURL, serverPublicKeyHex string, opts ...Option) *Consumer {
	c := &Consumer{
		inbound:         inbound,
		store:           st,
		metrics:         metricsReg,
		queueURL:        queueURL,
		serverPublicKey: serverPublicKeyHex,
		state:           StatePolling,
		logger:          log.New(log.Writer(), "[Consumer] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the consumer's current state-machine state.
func (c *Consumer) State() State { return c.state }

// Run drives the poll/process loop until the consumer reaches Terminal
// (emptyPollThreshold consecutive empty polls), writing a run record on
// exit. ctx cancellation also ends the loop, without writing Terminal's
// run record (an operator-initiated shutdown is not the spec's
// sustained-emptiness termination).
func (c *Consumer) Run(ctx context.Context) error {
	c.state = StatePolling
	c.emptyCount = 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		messages, err := c.inbound.Receive(ctx, c.queueURL)
		if err != nil {
			c.logger.Printf("receive failed: %v", err)
			return err
		}

		if len(messages) == 0 {
			c.emptyCount++
			c.incEmptyPolls()
			if c.emptyCount >= emptyPollThreshold {
				c.state = StateTerminal
				last := time.Now().UTC()
				if c.sync != nil {
					c.sync.MirrorRun(ctx, firestoresync.RunEvent{Process: runProcessName, Last: last})
				}
				return c.store.UpsertRun(ctx, model.Run{Process: runProcessName, Last: last})
			}
			continue
		}

		c.state = StateProcessing
		c.emptyCount = 0
		for _, msg := range messages {
			c.processMessage(ctx, msg)
		}
		c.state = StatePolling
	}
}

// processMessage parses and commits one queue message, deleting its
// receipt only after a successful commit. Parse failures and commit
// failures both leave the receipt undeleted, letting the queue redeliver
// (or eventually dead-letter) the message.
func (c *Consumer) processMessage(ctx context.Context, msg queue.Message) {
	var envelope chain.Envelope
	if err := json.Unmarshal([]byte(msg.Body), &envelope); err != nil {
		c.logger.Printf("%v: %v", ErrMalformedMessage, err)
		return
	}
	if len(envelope.Payload.Transactions) == 0 {
		c.logger.Printf("%v", ErrNoTransactionChain)
		return
	}

	if err := c.commit(ctx, &envelope); err != nil {
		c.logger.Printf("commit failed: %v", err)
		return
	}

	if err := c.inbound.Delete(ctx, c.queueURL, msg.ReceiptHandle); err != nil {
		c.logger.Printf("deleting message: %v", err)
	}
	c.incCommitted()
}

// commit runs the six-step commit protocol from spec §4.10 over one
// envelope.
func (c *Consumer) commit(ctx context.Context, envelope *chain.Envelope) error {
	address, err := c.store.GetAddress(ctx, envelope.Payload.Address)
	if err != nil {
		c.incSignatureFailure(ctx, "address-not-found", envelope.Payload.Address)
		return errors.Join(ErrAddressNotFound, err)
	}

	if !signer.Verify(envelope, c.serverPublicKey) {
		c.incSignatureFailure(ctx, "outer", envelope.Payload.Address)
		return ErrOuterSignatureInvalid
	}

	for i := range envelope.Payload.Transactions {
		entry := &envelope.Payload.Transactions[i]
		if err := c.store.UpsertChainEntry(ctx, envelope.Payload.Address, entry); err != nil {
			return err
		}
	}

	latest := latestEntry(envelope)
	if latest == nil {
		return ErrNoTransactionChain
	}

	if !signer.VerifyEntry(latest, address.PublicKeyHex) {
		c.incSignatureFailure(ctx, "entry", envelope.Payload.Address)
		return ErrEntrySignatureInvalid
	}

	// A zero-count previous is the genesis entry the intake worker
	// synthesizes; it is never persisted, so the address's tip is still
	// empty when the first envelope commits.
	expectedPrevious := ""
	if envelope.Payload.Previous != nil && envelope.Payload.Previous.Payload.Count > 0 {
		expectedPrevious = envelope.Payload.Previous.Hash.Value
	}

	if err := c.store.AdvanceTip(ctx, envelope.Payload.Address, expectedPrevious, latest.Hash.Value); err != nil {
		return err
	}

	if c.sync != nil {
		c.sync.MirrorCommit(ctx, firestoresync.CommitEvent{
			Address:          envelope.Payload.Address,
			HashValue:        latest.Hash.Value,
			Count:            latest.Payload.Count,
			TransactionCount: len(envelope.Payload.Transactions),
			CommittedAt:      time.Now().UTC(),
		})
	}

	return nil
}

// latestEntry identifies the entry whose count equals
// previous.count + len(transactions), per spec §4.10 step 4. The builder
// always produces transactions in increasing-count order, so this is the
// last element, found by count rather than by position to stay correct
// even if a queue or signer implementation reorders the batch in transit.
func latestEntry(envelope *chain.Envelope) *chain.Entry {
	txs := envelope.Payload.Transactions
	if len(txs) == 0 {
		return nil
	}
	wantCount := len(txs)
	if envelope.Payload.Previous != nil {
		wantCount = envelope.Payload.Previous.Payload.Count + len(txs)
	}
	for i := range txs {
		if txs[i].Payload.Count == wantCount {
			return &txs[i]
		}
	}
	return &txs[len(txs)-1]
}

func (c *Consumer) incEmptyPolls() {
	if c.metrics != nil {
		c.metrics.ConsumerEmptyPolls.Inc()
	}
}

func (c *Consumer) incCommitted() {
	if c.metrics != nil {
		c.metrics.EnvelopesCommitted.Inc()
	}
}

func (c *Consumer) incSignatureFailure(ctx context.Context, kind, address string) {
	if c.metrics != nil {
		c.metrics.SignatureFailures.WithLabelValues(kind).Inc()
	}
	if c.sync != nil {
		c.sync.MirrorSignatureFailure(ctx, firestoresync.SignatureFailureEvent{
			Kind:      kind,
			Address:   address,
			Reference: address,
			At:        time.Now().UTC(),
		})
	}
}
