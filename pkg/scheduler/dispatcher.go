// Package scheduler implements the dispatcher (C9): selecting eligible
// users, computing each one's date range, and fanning work out to the
// intake worker under a fixed concurrency bound.
package scheduler

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rounduppay/core/pkg/bankregistry"
	"github.com/rounduppay/core/pkg/firestoresync"
	"github.com/rounduppay/core/pkg/intake"
	"github.com/rounduppay/core/pkg/metrics"
	"github.com/rounduppay/core/pkg/model"
	"github.com/rounduppay/core/pkg/store"
)

// maxConcurrentWorkers is the fixed concurrency bound from spec §4.9/§5.
const maxConcurrentWorkers = 10

const runProcessName = "roundup"

// repository is the subset of *store.Client the dispatcher needs.
type repository interface {
	EligibleUserIDs(ctx context.Context) ([]string, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	SetLatestRoundupDate(ctx context.Context, userID, date string) error
	UpsertRun(ctx context.Context, run model.Run) error
}

// bankResolver is the subset of *bankregistry.Registry the dispatcher
// needs.
type bankResolver interface {
	TypeForBank(bankID string) (string, bool)
}

// worker is the subset of *intake.Worker the dispatcher needs.
type worker interface {
	Run(ctx context.Context, item intake.WorkItem) intake.Result
}

// Dispatcher is the C9 scheduler: a cron-triggered daily run that fans
// out bounded-concurrency intake workers over eligible users.
type Dispatcher struct {
	mu sync.RWMutex

	store    repository
	registry bankResolver
	worker   worker
	metrics  *metrics.Registry
	sync     *firestoresync.SyncService

	schedule string
	cron     *cron.Cron
	entryID  cron.EntryID

	running bool
	logger  *log.Logger
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithSyncService mirrors each run record to Firestore for the operator
// dashboard. Omit this option to skip mirroring entirely.
func WithSyncService(s *firestoresync.SyncService) Option {
	return func(d *Dispatcher) { d.sync = s }
}

// NewDispatcher builds a Dispatcher. schedule is a standard 5-field cron
// expression (e.g. configured via SCHEDULE_CRON).
func NewDispatcher(st *store.Client, registry *bankregistry.Registry, w *intake.Worker, metricsReg *metrics.Registry, schedule string, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:    st,
		registry: registry,
		worker:   w,
		metrics:  metricsReg,
		schedule: schedule,
		cron:     cron.New(),
		logger:   log.New(log.Writer(), "[Dispatcher] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start registers the cron job and begins the background scheduler. It
// does not block; call Stop to shut down. ctx is passed to every scheduled
// RunOnce; cancelling it does not stop the cron schedule.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return nil
	}

	entryID, err := d.cron.AddFunc(d.schedule, func() {
		if err := d.RunOnce(ctx); err != nil {
			d.logger.Printf("run failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	d.entryID = entryID
	d.cron.Start()
	d.running = true
	d.logger.Printf("dispatcher started (schedule=%q)", d.schedule)
	return nil
}

// Stop halts the cron scheduler and waits for any in-flight run to
// finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return
	}
	<-d.cron.Stop().Done()
	d.running = false
	d.logger.Println("dispatcher stopped")
}

// RunOnce performs one full dispatch cycle: select eligible users, build
// their work items, and fan them out under the concurrency bound. It
// records a run record on completion, matching C9's "mark a run record"
// step.
func (d *Dispatcher) RunOnce(ctx context.Context) error {
	ids, err := d.store.EligibleUserIDs(ctx)
	if err != nil {
		return err
	}

	today := time.Now().UTC()
	sem := make(chan struct{}, maxConcurrentWorkers)
	var wg sync.WaitGroup
	var dispatched, failed atomic.Int64

	for _, id := range ids {
		id := id
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			d.dispatchOne(ctx, id, today, &dispatched, &failed)
		}()
	}
	wg.Wait()

	if d.sync != nil {
		d.sync.MirrorRun(ctx, firestoresync.RunEvent{
			Process:         runProcessName,
			Last:            today,
			UsersDispatched: int(dispatched.Load()),
			UsersFailed:     int(failed.Load()),
		})
	}

	return d.store.UpsertRun(ctx, model.Run{Process: runProcessName, Last: today})
}

// dispatchOne resolves one user's work item and runs the intake worker
// for them. Every failure is logged and treated as "ready": per-user
// failures never abort the dispatch loop.
func (d *Dispatcher) dispatchOne(ctx context.Context, userID string, today time.Time, dispatched, failed *atomic.Int64) {
	user, err := d.store.GetUser(ctx, userID)
	if err != nil {
		d.logger.Printf("user %s: fetching user: %v", userID, err)
		d.incUsersFailed()
		failed.Add(1)
		return
	}

	pledge, ok := user.ActivePledge()
	if !ok {
		d.logger.Printf("user %s: %v", userID, ErrNoActivePledge)
		d.incUsersFailed()
		failed.Add(1)
		return
	}

	gte, lte, skip := resolveDateRange(today, user.LatestRoundupDate)
	if skip {
		return
	}

	month := today.Format("2006-01")
	address, ok := pledge.AddressForMonth(month)
	if !ok {
		d.logger.Printf("user %s: %v (month=%s)", userID, ErrNoAddressForMonth, month)
		d.incUsersFailed()
		failed.Add(1)
		return
	}

	bankType, ok := d.registry.TypeForBank(pledge.BankID)
	if !ok {
		d.logger.Printf("user %s: %v (bank=%s)", userID, ErrUnknownBankType, pledge.BankID)
		d.incUsersFailed()
		failed.Add(1)
		return
	}

	token, ok := user.AggregatorTokens[bankType]
	if !ok {
		d.logger.Printf("user %s: %v (bank-type=%s)", userID, ErrNoAggregatorToken, bankType)
		d.incUsersFailed()
		failed.Add(1)
		return
	}

	d.incUsersDispatched()
	dispatched.Add(1)
	result := d.worker.Run(ctx, intake.WorkItem{
		UserID:          userID,
		Address:         address,
		AggregatorToken: token,
		MonthlyLimit:    int64(pledge.MonthlyLimit),
		BankType:        bankType,
		DateRange:       intake.DateRange{GTE: gte, LTE: lte},
	})

	if !result.Enqueued {
		d.incUsersFailed()
		failed.Add(1)
		return
	}

	if err := d.store.SetLatestRoundupDate(ctx, userID, today.Format(isoDate)); err != nil {
		d.logger.Printf("user %s: updating latestRoundupDate: %v", userID, err)
	}
}

func (d *Dispatcher) incUsersDispatched() {
	if d.metrics != nil {
		d.metrics.UsersDispatched.Inc()
	}
}

func (d *Dispatcher) incUsersFailed() {
	if d.metrics != nil {
		d.metrics.UsersFailed.Inc()
	}
}
