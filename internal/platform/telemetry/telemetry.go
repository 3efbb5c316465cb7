// Package telemetry provides lightweight observability for the report
// pipeline using only standard library constructs: named counters and a
// Prometheus text exposition endpoint, without importing a metrics SDK.
package telemetry

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/labstack/echo/v4"
)

// Counter is a monotonically increasing metric.
type Counter struct {
	value int64
}

// Inc adds one to the counter.
func (c *Counter) Inc() { atomic.AddInt64(&c.value, 1) }

// Add adds n to the counter.
func (c *Counter) Add(n int64) { atomic.AddInt64(&c.value, n) }

// Value returns the current count.
func (c *Counter) Value() int64 { return atomic.LoadInt64(&c.value) }

type metric struct {
	name    string
	help    string
	counter *Counter
}

// Registry holds the process's named counters and renders them in the
// Prometheus text exposition format.
type Registry struct {
	service string
	mu      sync.RWMutex
	metrics map[string]*metric
}

// NewRegistry creates a registry; service labels every exported metric.
func NewRegistry(service string) *Registry {
	return &Registry{
		service: service,
		metrics: make(map[string]*metric),
	}
}

// Counter returns the counter registered under name, creating it on first
// use. Repeated registrations with the same name share one counter.
func (r *Registry) Counter(name, help string) *Counter {
	r.mu.RLock()
	m, ok := r.metrics[name]
	r.mu.RUnlock()
	if ok {
		return m.counter
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.metrics[name]; ok {
		return m.counter
	}
	m = &metric{name: name, help: help, counter: &Counter{}}
	r.metrics[name] = m
	return m.counter
}

// Expose renders all counters in Prometheus text format, sorted by name.
func (r *Registry) Expose() string {
	r.mu.RLock()
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		r.mu.RLock()
		m := r.metrics[name]
		r.mu.RUnlock()
		if m.help != "" {
			fmt.Fprintf(&sb, "# HELP %s %s\n", m.name, m.help)
		}
		fmt.Fprintf(&sb, "# TYPE %s counter\n", m.name)
		fmt.Fprintf(&sb, "%s{service=%q} %d\n", m.name, r.service, m.counter.Value())
	}
	return sb.String()
}

// Handler serves the /metrics endpoint.
func (r *Registry) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Blob(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8", []byte(r.Expose()))
	}
}

// Middleware counts HTTP requests and error responses.
func (r *Registry) Middleware() echo.MiddlewareFunc {
	requests := r.Counter("http_requests_total", "Total HTTP requests served.")
	errors := r.Counter("http_request_errors_total", "Total HTTP requests that returned an error.")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requests.Inc()
			err := next(c)
			if err != nil || c.Response().Status >= http.StatusInternalServerError {
				errors.Inc()
			}
			return err
		}
	}
}
