package firestoresync

import (
	"context"
	"fmt"
	"time"

	gcpfirestore "cloud.google.com/go/firestore"
)

// RunEvent mirrors one scheduler or consumer run record.
type RunEvent struct {
	Process         string
	Last            time.Time
	UsersDispatched int
	UsersFailed     int
}

// CommitEvent mirrors one envelope the consumer accepted and committed.
type CommitEvent struct {
	Address          string
	HashValue        string
	Count            int
	TransactionCount int
	CommittedAt      time.Time
}

// SignatureFailureEvent mirrors one signature verification failure the
// consumer observed, for operator alerting.
type SignatureFailureEvent struct {
	Kind      string // "outer", "entry" or "address-not-found"
	Address   string
	Reference string
	At        time.Time
}

// SyncService mirrors pipeline events to Firestore. Every Mirror* write is
// best-effort: a write failure is logged and returns nil, since losing a
// dashboard mirror write must never fail a scheduler or consumer run. The
// RecentCommits read returns its errors.
type SyncService struct {
	client *Client
}

// NewSyncService wraps a Client for domain event mirroring.
func NewSyncService(client *Client) *SyncService {
	return &SyncService{client: client}
}

// MirrorRun writes one run event to the "runs" collection, keyed by
// process name so each process's document holds only its latest run.
func (s *SyncService) MirrorRun(ctx context.Context, event RunEvent) error {
	if !s.client.IsEnabled() {
		return nil
	}
	_, err := s.client.firestore.Doc("runs/"+event.Process).Set(ctx, map[string]interface{}{
		"process":         event.Process,
		"last":            event.Last,
		"usersDispatched": event.UsersDispatched,
		"usersFailed":     event.UsersFailed,
	})
	if err != nil {
		s.client.logger.Printf("mirroring run event for %s: %v", event.Process, err)
	}
	return nil
}

// MirrorCommit appends one commit event under the address's subcollection,
// so an operator can inspect an address's commit history in order.
func (s *SyncService) MirrorCommit(ctx context.Context, event CommitEvent) error {
	if !s.client.IsEnabled() {
		return nil
	}
	docPath := fmt.Sprintf("addresses/%s/commits/%s", event.Address, event.HashValue)
	_, err := s.client.firestore.Doc(docPath).Set(ctx, map[string]interface{}{
		"address":          event.Address,
		"hashValue":        event.HashValue,
		"count":            event.Count,
		"transactionCount": event.TransactionCount,
		"committedAt":      event.CommittedAt,
	})
	if err != nil {
		s.client.logger.Printf("mirroring commit event for %s: %v", event.Address, err)
	}
	return nil
}

// MirrorSignatureFailure appends one signature failure under the
// "signatureFailures" collection for operator alerting.
func (s *SyncService) MirrorSignatureFailure(ctx context.Context, event SignatureFailureEvent) error {
	if !s.client.IsEnabled() {
		return nil
	}
	docID := fmt.Sprintf("%s_%d", event.Reference, event.At.UnixNano())
	_, err := s.client.firestore.Doc("signatureFailures/"+docID).Set(ctx, map[string]interface{}{
		"kind":      event.Kind,
		"address":   event.Address,
		"reference": event.Reference,
		"at":        event.At,
	})
	if err != nil {
		s.client.logger.Printf("mirroring signature failure for %s: %v", event.Address, err)
	}
	return nil
}

// RecentCommits reads the most recent commits for an address, newest
// first, for a dashboard list view.
func (s *SyncService) RecentCommits(ctx context.Context, address string, limit int) ([]CommitEvent, error) {
	if !s.client.IsEnabled() {
		return nil, nil
	}
	collPath := fmt.Sprintf("addresses/%s/commits", address)
	docs, err := s.client.firestore.Collection(collPath).
		OrderBy("committedAt", gcpfirestore.Desc).
		Limit(limit).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("firestoresync: querying recent commits for %s: %w", address, err)
	}

	events := make([]CommitEvent, 0, len(docs))
	for _, doc := range docs {
		var event CommitEvent
		if err := doc.DataTo(&event); err != nil {
			return nil, fmt.Errorf("firestoresync: parsing commit event: %w", err)
		}
		events = append(events, event)
	}
	return events, nil
}
