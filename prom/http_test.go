package prom

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstrumentHandler(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// The same name twice mustn't panic on registration.
	a := InstrumentHandler("TestHandler", ok)
	b := InstrumentHandler("TestHandler", ok)

	for _, h := range []http.Handler{a, b} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	}

	got := testutil.ToFloat64(requests.WithLabelValues("TestHandler", "200", "get"))
	if got != 2 {
		t.Errorf("requests_total = %v, want 2", got)
	}
}
