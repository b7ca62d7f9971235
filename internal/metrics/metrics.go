// Package metrics exposes session lifecycle counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login methods.
const (
	MethodPassword = "password"
	MethodGoogle   = "google"
	MethodFacebook = "facebook"
)

// Outcomes shared by login and refresh.
const (
	OutcomeSuccess    = "success"
	OutcomeFailure    = "failure"
	OutcomeDenied     = "denied"
	OutcomeSuperseded = "superseded"
	OutcomeCanceled   = "canceled"
)

// Recorder is what the session manager reports to. RecordRefresh is for
// refreshes that reached the gateway; RecordRefreshSkipped counts the ones
// answered without a gateway call so they stay out of the latency histogram.
type Recorder interface {
	RecordLogin(method, outcome string)
	RecordRefresh(outcome string, duration time.Duration)
	RecordRefreshSkipped(outcome string)
	RecordLogout()
}

// Nop discards every observation.
type Nop struct{}

func (Nop) RecordLogin(string, string)          {}
func (Nop) RecordRefresh(string, time.Duration) {}
func (Nop) RecordRefreshSkipped(string)         {}
func (Nop) RecordLogout()                       {}

var _ Recorder = Nop{}
var _ Recorder = (*Collector)(nil)

// Collector records session metrics in Prometheus.
type Collector struct {
	loginTotal      *prometheus.CounterVec
	refreshTotal    *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	logoutTotal     prometheus.Counter
}

// NewCollector creates a Collector registered on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "session_login_total",
			Help: "Login attempts by method and outcome",
		}, []string{"method", "outcome"}),
		refreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "session_refresh_total",
			Help: "Access token refresh calls by outcome",
		}, []string{"outcome"}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "session_refresh_duration_seconds",
			Help:    "Latency of refresh-token calls to the identity gateway",
			Buckets: prometheus.DefBuckets,
		}),
		logoutTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "session_logout_total",
			Help: "Installed sessions cleared for any reason",
		}),
	}

	reg.MustRegister(
		c.loginTotal,
		c.refreshTotal,
		c.refreshDuration,
		c.logoutTotal,
	)
	return c
}

func (c *Collector) RecordLogin(method, outcome string) {
	c.loginTotal.WithLabelValues(method, outcome).Inc()
}

func (c *Collector) RecordRefresh(outcome string, duration time.Duration) {
	c.refreshTotal.WithLabelValues(outcome).Inc()
	c.refreshDuration.Observe(duration.Seconds())
}

func (c *Collector) RecordRefreshSkipped(outcome string) {
	c.refreshTotal.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordLogout() {
	c.logoutTotal.Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
