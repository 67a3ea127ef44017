// Package metrics exposes the Prometheus counters and gauges surfaced on
// METRICS_ADDR.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles every metric the scheduler and consumer emit.
type Registry struct {
	registry *prometheus.Registry

	UsersDispatched      prometheus.Counter
	UsersFailed          prometheus.Counter
	TransactionsFiltered prometheus.Counter
	EnvelopesEnqueued    prometheus.Counter
	EnvelopesCommitted   prometheus.Counter
	SignatureFailures    *prometheus.CounterVec
	ConsumerEmptyPolls   prometheus.Counter
	RunDuration          *prometheus.HistogramVec
}

// NewRegistry constructs and registers every metric on a fresh
// prometheus.Registry (never the global DefaultRegisterer, so tests and
// repeated process construction never collide on duplicate registration).
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		UsersDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roundup_users_dispatched_total",
			Help: "Number of per-user intake workers dispatched by the scheduler.",
		}),
		UsersFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roundup_users_failed_total",
			Help: "Number of per-user intake workers that aborted before enqueueing.",
		}),
		TransactionsFiltered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roundup_transactions_filtered_total",
			Help: "Number of aggregator transactions dropped by the eligibility filter.",
		}),
		EnvelopesEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roundup_envelopes_enqueued_total",
			Help: "Number of signed envelopes sent to the to-signer queue.",
		}),
		EnvelopesCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roundup_envelopes_committed_total",
			Help: "Number of co-signed envelopes the consumer verified and persisted.",
		}),
		SignatureFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roundup_signature_failures_total",
			Help: "Number of signature verification failures by kind.",
		}, []string{"kind"}),
		ConsumerEmptyPolls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roundup_consumer_empty_polls_total",
			Help: "Number of empty long-polls observed by the consumer.",
		}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "roundup_run_duration_seconds",
			Help: "Wall-clock duration of a scheduler or consumer run.",
		}, []string{"process"}),
	}

	reg.MustRegister(
		r.UsersDispatched, r.UsersFailed, r.TransactionsFiltered,
		r.EnvelopesEnqueued, r.EnvelopesCommitted, r.SignatureFailures,
		r.ConsumerEmptyPolls, r.RunDuration,
	)
	r.registry = reg
	return r
}

// Handler returns the HTTP handler to mount on METRICS_ADDR.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
