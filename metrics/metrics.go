// Package metrics exposes gateway counters in the Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/egor/vicai/service"
)

// Collector implements service.Observer. Each Collector owns its registry
// so tests can build as many as they like.
type Collector struct {
	reg *prometheus.Registry

	requests    *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	intents     *prometheus.CounterVec
	rateLimited prometheus.Counter
	depFailures *prometheus.CounterVec
	latency     prometheus.Histogram
	httpTotal   *prometheus.CounterVec
}

func New() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vicai",
			Name:      "requests_total",
			Help:      "Chat requests by outcome.",
		}, []string{"outcome"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vicai",
			Name:      "safety_rejections_total",
			Help:      "Messages rejected by the keyword filter, by reason.",
		}, []string{"reason"}),
		intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vicai",
			Name:      "intents_total",
			Help:      "Classified intents of answered messages.",
		}, []string{"intent"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vicai",
			Name:      "rate_limited_total",
			Help:      "Requests rejected inside the client cooldown.",
		}),
		depFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vicai",
			Name:      "dependency_failures_total",
			Help:      "Generator and rate store failures.",
		}, []string{"dependency"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vicai",
			Name:      "request_duration_seconds",
			Help:      "Time to handle a chat request, generator included.",
			Buckets:   []float64{.005, .025, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		httpTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vicai",
			Name:      "http_responses_total",
			Help:      "HTTP responses by route and status.",
		}, []string{"route", "status"}),
	}
	c.reg.MustRegister(
		c.requests, c.rejections, c.intents, c.rateLimited, c.depFailures, c.latency, c.httpTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) Observe(ev service.Event) {
	c.requests.WithLabelValues(string(ev.Outcome)).Inc()
	c.latency.Observe(ev.Latency.Seconds())

	switch ev.Outcome {
	case service.OutcomeOK:
		c.intents.WithLabelValues(string(ev.Intent)).Inc()
	case service.OutcomeRejected:
		c.rejections.WithLabelValues(ev.Reason).Inc()
	case service.OutcomeRateLimited:
		c.rateLimited.Inc()
	case service.OutcomeGeneratorError:
		c.depFailures.WithLabelValues(service.DepGenerator).Inc()
	case service.OutcomeStoreError:
		c.depFailures.WithLabelValues(service.DepRateStore).Inc()
	}
}

// Middleware counts responses per matched route.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()
		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		c.httpTotal.WithLabelValues(route, strconv.Itoa(ctx.Writer.Status())).Inc()
	}
}

// Handler serves /metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{Timeout: 5 * time.Second})
}

// Registry is exposed for extra collectors.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }
