package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestCounter_SharedAcrossRegistrations(t *testing.T) {
	r := NewRegistry("medledger")
	a := r.Counter("ingest_total", "Total ingestion attempts.")
	b := r.Counter("ingest_total", "Total ingestion attempts.")
	if a != b {
		t.Fatal("same name must return the same counter")
	}
	a.Inc()
	b.Add(2)
	if a.Value() != 3 {
		t.Errorf("value = %d", a.Value())
	}
}

func TestCounter_Concurrent(t *testing.T) {
	r := NewRegistry("medledger")
	c := r.Counter("x_total", "")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Inc()
			}
		}()
	}
	wg.Wait()
	if c.Value() != 5000 {
		t.Errorf("value = %d", c.Value())
	}
}

func TestExpose_Format(t *testing.T) {
	r := NewRegistry("medledger")
	r.Counter("ingest_total", "Total ingestion attempts.").Add(4)
	out := r.Expose()

	for _, want := range []string{
		"# HELP ingest_total Total ingestion attempts.",
		"# TYPE ingest_total counter",
		`ingest_total{service="medledger"} 4`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("exposition missing %q:\n%s", want, out)
		}
	}
}

func TestMiddleware_CountsRequests(t *testing.T) {
	r := NewRegistry("medledger")
	e := echo.New()

	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	mw := r.Middleware()

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := mw(handler)(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := r.Counter("http_requests_total", "").Value(); got != 3 {
		t.Errorf("requests = %d", got)
	}
	if got := r.Counter("http_request_errors_total", "").Value(); got != 0 {
		t.Errorf("errors = %d", got)
	}
}
