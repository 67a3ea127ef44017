package intake

import (
	"context"
	"crypto/ed25519"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/rounduppay/core/pkg/chain"
	"github.com/rounduppay/core/pkg/model"
	"github.com/rounduppay/core/pkg/money"
	"github.com/rounduppay/core/pkg/store"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type fakeRepo struct {
	address     *model.Address
	addressErr  error
	entry       *chain.Entry
	entryErr    error
	insertedIDs []string
	insertErr   error
}

func (r *fakeRepo) GetAddress(ctx context.Context, address string) (*model.Address, error) {
	if r.addressErr != nil {
		return nil, r.addressErr
	}
	return r.address, nil
}

func (r *fakeRepo) GetChainEntryByHash(ctx context.Context, hashValue string) (*chain.Entry, error) {
	if r.entryErr != nil {
		return nil, r.entryErr
	}
	return r.entry, nil
}

func (r *fakeRepo) InsertPlaidTransaction(ctx context.Context, rec model.PlaidTransactionRecord) error {
	r.insertedIDs = append(r.insertedIDs, rec.TransactionID)
	return r.insertErr
}

type fakeAggregator struct {
	txs []model.RawTransaction
	err error
}

func (a *fakeAggregator) GetTransactions(ctx context.Context, accessToken, gte, lte string) ([]model.RawTransaction, error) {
	return a.txs, a.err
}

type fakeOutbound struct {
	sent *chain.Envelope
	err  error
}

func (o *fakeOutbound) Send(ctx context.Context, envelope *chain.Envelope, queueURL string) error {
	o.sent = envelope
	return o.err
}

type fakeHook struct {
	triggered bool
	err       error
}

func (h *fakeHook) Trigger(ctx context.Context) error {
	h.triggered = true
	return h.err
}

func testWorker(repo *fakeRepo, agg *fakeAggregator, out *fakeOutbound, hook *fakeHook) *Worker {
	_, priv, _ := ed25519.GenerateKey(nil)
	return &Worker{
		store:      repo,
		aggregator: agg,
		outbound:   out,
		hook:       hook,
		privateKey: priv,
		kid:        "server",
		queueURL:   "https://queue.example/to-signer",
		logger:     testLogger(),
	}
}

func TestWorker_Run_GenesisAddress(t *testing.T) {
	repo := &fakeRepo{address: &model.Address{Address: "addr-1", PublicKeyHex: "deadbeef", LatestTransaction: ""}}
	agg := &fakeAggregator{txs: []model.RawTransaction{
		{ID: "t1", Amount: 123, Date: "2026-07-30", Name: "merchant", Pending: false},
	}}
	out := &fakeOutbound{}
	hook := &fakeHook{}

	w := testWorker(repo, agg, out, hook)
	result := w.Run(context.Background(), WorkItem{
		UserID:          "user-1",
		Address:         "addr-1",
		AggregatorToken: "token",
		MonthlyLimit:    -1000,
		BankType:        "chase",
		DateRange:       DateRange{GTE: "2026-07-01", LTE: "2026-07-30"},
	})

	if !result.Enqueued {
		t.Fatal("expected Enqueued = true")
	}
	if result.TransactionCount != 1 {
		t.Fatalf("TransactionCount = %d, want 1", result.TransactionCount)
	}
	if out.sent == nil {
		t.Fatal("expected envelope to be sent")
	}
	if len(out.sent.Payload.Transactions) != 1 {
		t.Fatalf("envelope has %d transactions, want 1", len(out.sent.Payload.Transactions))
	}
	if !hook.triggered {
		t.Error("expected signer hook to be triggered")
	}
	if len(repo.insertedIDs) != 1 || repo.insertedIDs[0] != "t1" {
		t.Errorf("insertedIDs = %v, want [t1]", repo.insertedIDs)
	}
}

func TestWorker_Run_NoEligibleTransactions(t *testing.T) {
	repo := &fakeRepo{address: &model.Address{Address: "addr-1"}}
	agg := &fakeAggregator{txs: []model.RawTransaction{
		{ID: "t1", Amount: 123, Date: "2026-07-30", Pending: true},
	}}
	out := &fakeOutbound{}
	hook := &fakeHook{}

	w := testWorker(repo, agg, out, hook)
	result := w.Run(context.Background(), WorkItem{UserID: "user-1", Address: "addr-1"})

	if result.Enqueued {
		t.Error("expected Enqueued = false when no transactions survive the filter")
	}
	if out.sent != nil {
		t.Error("expected no envelope to be sent")
	}
}

func TestWorker_Run_AggregatorError(t *testing.T) {
	repo := &fakeRepo{address: &model.Address{Address: "addr-1"}}
	agg := &fakeAggregator{err: errors.New("boom")}
	out := &fakeOutbound{}
	hook := &fakeHook{}

	w := testWorker(repo, agg, out, hook)
	result := w.Run(context.Background(), WorkItem{UserID: "user-1", Address: "addr-1"})

	if result.Enqueued {
		t.Error("expected Enqueued = false on aggregator error")
	}
}

func TestWorker_Run_NoPreviousChain(t *testing.T) {
	repo := &fakeRepo{
		address:  &model.Address{Address: "addr-1", LatestTransaction: "deadbeef"},
		entryErr: store.ErrNotFound,
	}
	agg := &fakeAggregator{txs: []model.RawTransaction{
		{ID: "t1", Amount: 123, Date: "2026-07-30"},
	}}
	out := &fakeOutbound{}
	hook := &fakeHook{}

	w := testWorker(repo, agg, out, hook)
	result := w.Run(context.Background(), WorkItem{UserID: "user-1", Address: "addr-1"})

	if result.Enqueued {
		t.Error("expected Enqueued = false when the previous chain entry is missing")
	}
}

func TestWorker_Run_AddressNotFound(t *testing.T) {
	repo := &fakeRepo{addressErr: store.ErrAddressNotFound}
	agg := &fakeAggregator{txs: []model.RawTransaction{{ID: "t1", Amount: 123, Date: "2026-07-30"}}}
	out := &fakeOutbound{}
	hook := &fakeHook{}

	w := testWorker(repo, agg, out, hook)
	result := w.Run(context.Background(), WorkItem{UserID: "user-1", Address: "addr-1"})

	if result.Enqueued {
		t.Error("expected Enqueued = false when the address is not found")
	}
}

func TestWorker_Run_QueueSendError(t *testing.T) {
	repo := &fakeRepo{address: &model.Address{Address: "addr-1"}}
	agg := &fakeAggregator{txs: []model.RawTransaction{{ID: "t1", Amount: 123, Date: "2026-07-30"}}}
	out := &fakeOutbound{err: errors.New("send failed")}
	hook := &fakeHook{}

	w := testWorker(repo, agg, out, hook)
	result := w.Run(context.Background(), WorkItem{UserID: "user-1", Address: "addr-1"})

	if result.Enqueued {
		t.Error("expected Enqueued = false on queue send error")
	}
	if hook.triggered {
		t.Error("expected signer hook to not be triggered when enqueue failed")
	}
}

func TestGenesisEntry_BalanceAndLimit(t *testing.T) {
	entry, err := genesisEntry("addr-1", -500)
	if err != nil {
		t.Fatalf("genesisEntry: %v", err)
	}
	if entry.Payload.Balance != money.Zero {
		t.Errorf("genesis balance = %s, want 0.00", entry.Payload.Balance.String())
	}
	if entry.Payload.Limit != money.Cents(-500) {
		t.Errorf("genesis limit = %s, want -5.00", entry.Payload.Limit.String())
	}
	if entry.Payload.Count != 0 {
		t.Errorf("genesis count = %d, want 0", entry.Payload.Count)
	}
}
