// Command roundup-scheduler runs the daily dispatch loop (C9): it wakes
// eligible pledges on a cron schedule, pulls and rounds up their
// aggregator transactions, and enqueues signed envelopes for the external
// signer.
package main

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/rounduppay/core/pkg/aggregator"
	"github.com/rounduppay/core/pkg/bankregistry"
	"github.com/rounduppay/core/pkg/config"
	"github.com/rounduppay/core/pkg/firestoresync"
	"github.com/rounduppay/core/pkg/intake"
	"github.com/rounduppay/core/pkg/metrics"
	"github.com/rounduppay/core/pkg/queue"
	"github.com/rounduppay/core/pkg/scheduler"
	"github.com/rounduppay/core/pkg/signerhook"
	"github.com/rounduppay/core/pkg/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	var (
		runOnce  = flag.Bool("run-once", false, "run one dispatch cycle and exit, instead of starting the cron schedule")
		showHelp = flag.Bool("help", false, "show help message")
	)
	flag.Parse()

	if *showHelp {
		printHelp()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	privateKey, err := decodeServerKey(cfg.ServerPrivateKey)
	if err != nil {
		log.Fatalf("decoding SERVER_PRIVATE_KEY: %v", err)
	}

	storeClient, err := store.NewClient(cfg)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer storeClient.Close()

	if err := storeClient.MigrateUp(context.Background()); err != nil {
		log.Fatalf("running migrations: %v", err)
	}

	registry, err := bankregistry.Load(cfg.BankRegistryPath)
	if err != nil {
		log.Fatalf("loading bank registry from %s: %v", cfg.BankRegistryPath, err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		log.Fatalf("loading AWS config: %v", err)
	}
	outbound := queue.NewOutbound(awsCfg)

	metricsRegistry := metrics.NewRegistry()

	aggClient := aggregator.NewClient(cfg)
	hook := signerhook.NewClient(cfg.SignerURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	firestoreClient, err := firestoresync.NewClient(ctx, &firestoresync.ClientConfig{
		ProjectID:       cfg.FirebaseProjectID,
		CredentialsFile: cfg.FirebaseCredentialsFile,
		Enabled:         cfg.FirestoreEnabled,
	})
	if err != nil {
		log.Fatalf("initializing firestore sync: %v", err)
	}
	defer firestoreClient.Close()
	syncService := firestoresync.NewSyncService(firestoreClient)

	worker := intake.NewWorker(storeClient, aggClient, outbound, hook, privateKey, cfg.ServerKID, cfg.SQSURLToSigner)
	dispatcher := scheduler.NewDispatcher(storeClient, registry, worker, metricsRegistry, cfg.ScheduleCron,
		scheduler.WithSyncService(syncService))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := storeClient.Ping(r.Context()); err != nil {
			http.Error(w, fmt.Sprintf("database unhealthy: %v", err), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metricsRegistry.Handler())

	httpServer := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}

	go func() {
		log.Printf("health endpoint listening on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("health server: %v", err)
		}
	}()
	go func() {
		log.Printf("metrics endpoint listening on %s", cfg.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics server: %v", err)
		}
	}()

	if *runOnce {
		if err := dispatcher.RunOnce(ctx); err != nil {
			log.Fatalf("dispatch run failed: %v", err)
		}
		log.Println("dispatch run complete")
		return
	}

	if err := dispatcher.Start(ctx); err != nil {
		log.Fatalf("starting dispatcher: %v", err)
	}
	log.Printf("scheduler running, cron=%q", cfg.ScheduleCron)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down scheduler...")
	dispatcher.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("health server shutdown: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("metrics server shutdown: %v", err)
	}
	log.Println("scheduler stopped")
}

func decodeServerKey(hexKey string) (ed25519.PrivateKey, error) {
	keyBytes, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	if len(keyBytes) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid ed25519 key size: expected %d, got %d", ed25519.PrivateKeySize, len(keyBytes))
	}
	return ed25519.PrivateKey(keyBytes), nil
}

func printHelp() {
	fmt.Println(`roundup-scheduler

Dispatches daily round-up aggregation for every eligible pledge, building
and enqueueing signed envelopes for the external signer.

Flags:
  -run-once   run one dispatch cycle and exit, instead of starting the
              cron schedule
  -help       show this message`)
}
