// Command roundup-consumer drains the from-signer queue (C10),
// verifying each envelope's signatures and hash linkage before
// persisting its entries and advancing the address tip.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/rounduppay/core/pkg/config"
	"github.com/rounduppay/core/pkg/consumer"
	"github.com/rounduppay/core/pkg/firestoresync"
	"github.com/rounduppay/core/pkg/metrics"
	"github.com/rounduppay/core/pkg/queue"
	"github.com/rounduppay/core/pkg/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	var (
		runOnce  = flag.Bool("run-once", false, "drain the queue to sustained emptiness once and exit")
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

	storeClient, err := store.NewClient(cfg)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer storeClient.Close()

	if err := storeClient.MigrateUp(context.Background()); err != nil {
		log.Fatalf("running migrations: %v", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		log.Fatalf("loading AWS config: %v", err)
	}
	inbound := queue.NewInbound(awsCfg)

	metricsRegistry := metrics.NewRegistry()

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

	c := consumer.NewConsumer(inbound, storeClient, metricsRegistry, cfg.SQSURLFromSigner, cfg.SignerPublicKey,
		consumer.WithSyncService(syncService))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := storeClient.Ping(r.Context()); err != nil {
			http.Error(w, fmt.Sprintf("database unhealthy: %v", err), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok: " + string(c.State())))
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
		if err := c.Run(ctx); err != nil {
			log.Fatalf("consumer run failed: %v", err)
		}
		log.Println("consumer run complete, queue drained to sustained emptiness")
		return
	}

	// The consumer's Run loop terminates itself once it has observed
	// sustained emptiness; outside run-once mode, restart it on a short
	// delay so the process keeps draining the queue as new envelopes
	// arrive over time.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if err := c.Run(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("consumer run error: %v", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(10 * time.Second):
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down consumer...")
	cancel()
	<-done

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("health server shutdown: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("metrics server shutdown: %v", err)
	}
	log.Println("consumer stopped")
}

func printHelp() {
	fmt.Println(`roundup-consumer

Drains the from-signer queue, verifying and committing each signed
envelope to Postgres and advancing the owning address's chain tip.

Flags:
  -run-once   drain the queue to sustained emptiness once and exit,
              instead of restarting the poll loop indefinitely
  -help       show this message`)
}
