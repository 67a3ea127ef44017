// Package firestoresync mirrors round-up pipeline events (scheduler runs,
// consumer commits, signature failures) into Firestore for a read-only
// operator dashboard. It is a best-effort side channel: every write is
// logged and swallowed on failure rather than propagated, since Firestore
// availability must never gate the pipeline's own correctness.
package firestoresync

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	gcpfirestore "cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Client wraps the Firebase Admin SDK's Firestore client, operating as a
// no-op when disabled so the pipeline can run with Firestore sync turned
// off in every environment except where an operator dashboard is wired up.
type Client struct {
	app       *firebase.App
	firestore *gcpfirestore.Client
	projectID string
	logger    *log.Logger
	enabled   bool
	mu        sync.RWMutex
}

// ClientConfig configures a Client.
type ClientConfig struct {
	ProjectID       string
	CredentialsFile string
	Enabled         bool
	Logger          *log.Logger
}

// NewClient builds a Client. When cfg.Enabled is false, every sync method
// on the returned Client is a no-op.
func NewClient(ctx context.Context, cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		cfg = &ClientConfig{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stdout, "[FirestoreSync] ", log.LstdFlags)
	}

	client := &Client{
		projectID: cfg.ProjectID,
		logger:    cfg.Logger,
		enabled:   cfg.Enabled,
	}

	if !cfg.Enabled {
		cfg.Logger.Println("firestore sync disabled, running in no-op mode")
		return client, nil
	}

	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("firestoresync: FIREBASE_PROJECT_ID is required when enabled")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestoresync: initializing firebase app: %w", err)
	}

	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestoresync: creating firestore client: %w", err)
	}

	client.app = app
	client.firestore = firestoreClient
	cfg.Logger.Printf("firestore sync initialized for project %s", cfg.ProjectID)
	return client, nil
}

// Close releases the underlying Firestore client.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.firestore != nil {
		return c.firestore.Close()
	}
	return nil
}

// IsEnabled reports whether sync writes actually reach Firestore.
func (c *Client) IsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// Health checks Firestore connectivity; disabled clients always report
// healthy since they make no network calls.
func (c *Client) Health(ctx context.Context) error {
	if !c.IsEnabled() {
		return nil
	}
	if c.firestore == nil {
		return fmt.Errorf("firestoresync: client not initialized")
	}
	_, err := c.firestore.Collection("_health_check").Doc("ping").Get(ctx)
	if err != nil && status.Code(err) == codes.NotFound {
		// A connected client reports NotFound for a document that was
		// never written; that is a healthy result, not a failure.
		return nil
	}
	return err
}
