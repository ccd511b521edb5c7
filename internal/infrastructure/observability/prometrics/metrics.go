package prometrics

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
)

// Registry hands out label-vector instruments registered on a Prometheus registerer.
// Asking twice for the same name returns the instrument created the first time.
type Registry interface {
	Counter(name string, help string, labelKeys ...string) observability.Counter
	Histogram(name string, help string, buckets []float64, labelKeys ...string) observability.Histogram
}

type registry struct {
	reg        prometheus.Registerer
	counters   sync.Map // name -> *prometheus.CounterVec
	histograms sync.Map // name -> *prometheus.HistogramVec
	namespace  string
	subsystem  string
}

// New registers on reg; a nil reg means prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, namespace, subsystem string) Registry {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &registry{reg: reg, namespace: namespace, subsystem: subsystem}
}

type counter struct{ v *prometheus.CounterVec }

func (c *counter) Add(d float64, labels ...observability.Label) {
	c.v.With(labelMap(labels)).Add(d)
}

type histogram struct{ v *prometheus.HistogramVec }

func (h *histogram) Observe(v float64, labels ...observability.Label) {
	h.v.With(labelMap(labels)).Observe(v)
}

func labelMap(ls []observability.Label) prometheus.Labels {
	m := make(prometheus.Labels, len(ls))
	for _, l := range ls {
		m[l.Key] = l.Value
	}
	return m
}

func (r *registry) Counter(name string, help string, labelKeys ...string) observability.Counter {
	if v, ok := r.counters.Load(name); ok {
		return &counter{v: v.(*prometheus.CounterVec)}
	}
	cv := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace, Subsystem: r.subsystem, Name: name, Help: help,
	}, labelKeys)
	cv = register(r.reg, cv)
	actual, _ := r.counters.LoadOrStore(name, cv)
	return &counter{v: actual.(*prometheus.CounterVec)}
}

func (r *registry) Histogram(name string, help string, buckets []float64, labelKeys ...string) observability.Histogram {
	if v, ok := r.histograms.Load(name); ok {
		return &histogram{v: v.(*prometheus.HistogramVec)}
	}
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace, Subsystem: r.subsystem, Name: name, Help: help, Buckets: buckets,
	}, labelKeys)
	hv = register(r.reg, hv)
	actual, _ := r.histograms.LoadOrStore(name, hv)
	return &histogram{v: actual.(*prometheus.HistogramVec)}
}

// register reuses a collector that is already registered under the same descriptor.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// Standard builds the instruments the service reports, keyed by their observability.MetricKey.
func Standard(r Registry) (map[observability.MetricKey]observability.Counter, map[observability.MetricKey]observability.Histogram) {
	counters := map[observability.MetricKey]observability.Counter{
		observability.MUsecaseRequests: r.Counter(string(observability.MUsecaseRequests),
			"Total number of use case invocations.", "use_case", "outcome"),
		observability.MExternalRequests: r.Counter(string(observability.MExternalRequests),
			"Total number of calls to collaborators.", "peer", "endpoint", "outcome"),
		observability.MHTTPRequests: r.Counter(string(observability.MHTTPRequests),
			"Total number of HTTP requests.", "method", "route", "status"),
		observability.MOrderLinesAccepted: r.Counter(string(observability.MOrderLinesAccepted),
			"Order lines accepted, by product.", "product_id"),
	}
	histograms := map[observability.MetricKey]observability.Histogram{
		observability.MUsecaseDuration: r.Histogram(string(observability.MUsecaseDuration),
			"Duration of use case execution in seconds.", nil, "use_case"),
		observability.MExternalRequestDuration: r.Histogram(string(observability.MExternalRequestDuration),
			"Duration of collaborator calls in seconds.", nil, "peer", "endpoint"),
		observability.MHTTPRequestDuration: r.Histogram(string(observability.MHTTPRequestDuration),
			"Duration of HTTP requests in seconds.", nil, "method", "route", "status"),
	}
	return counters, histograms
}
