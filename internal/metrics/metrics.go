package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the service's Prometheus registry.
type Collector struct {
	registry *prometheus.Registry

	generations *prometheus.CounterVec
	urls        *prometheus.CounterVec
	validations *prometheus.CounterVec
	rateLimited *prometheus.CounterVec
	reloads     prometheus.Counter
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{registry: reg}

	c.generations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "urlgen_generations_total",
		Help: "Form submissions processed",
	}, []string{"result"})

	c.urls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "urlgen_urls_total",
		Help: "URLs generated by scheme and whether they carry an auth_key",
	}, []string{"scheme", "signed"})

	c.validations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "urlgen_validations_total",
		Help: "auth_key validation outcomes",
	}, []string{"result"})

	c.rateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "urlgen_ratelimit_decisions_total",
		Help: "Rate limiter decisions (allowed, blocked, error)",
	}, []string{"result"})

	c.reloads = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "urlgen_config_reloads_total",
		Help: "Successful config file reloads",
	})

	reg.MustRegister(c.generations, c.urls, c.validations, c.rateLimited, c.reloads)
	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) RecordGeneration(err error) {
	if err != nil {
		c.generations.WithLabelValues("error").Inc()
		return
	}
	c.generations.WithLabelValues("ok").Inc()
}

func (c *Collector) RecordURLs(scheme string, signed bool, n int) {
	c.urls.WithLabelValues(scheme, strconv.FormatBool(signed)).Add(float64(n))
}

func (c *Collector) RecordValidation(result string) {
	c.validations.WithLabelValues(result).Inc()
}

func (c *Collector) RecordRateLimit(result string) {
	c.rateLimited.WithLabelValues(result).Inc()
}

func (c *Collector) RecordReload() {
	c.reloads.Inc()
}
