package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yungbote/graphadmin-backend/internal/domain"
)

func TestObserveUploadOutcomes(t *testing.T) {
	m := NewMetrics()
	m.ObserveUpload("universe", &domain.UploadReport{
		NodeCount: 3,
		Warnings:  []domain.FieldWarning{{Code: domain.WarningCoercionFailed}, {Code: domain.WarningCoercionFailed}},
	}, nil)
	m.ObserveUpload("universe", nil, domain.ValidationError("op", "bad"))
	m.ObserveUpload("universe", nil, errors.New("plain"))

	if got := testutil.ToFloat64(m.uploads.WithLabelValues("universe", "ok")); got != 1 {
		t.Fatalf("ok uploads: want=1 got=%v", got)
	}
	if got := testutil.ToFloat64(m.uploads.WithLabelValues("universe", "validation")); got != 1 {
		t.Fatalf("validation uploads: want=1 got=%v", got)
	}
	if got := testutil.ToFloat64(m.uploads.WithLabelValues("universe", "internal")); got != 1 {
		t.Fatalf("internal uploads: want=1 got=%v", got)
	}
	if got := testutil.ToFloat64(m.uploadEntities.WithLabelValues("universe")); got != 3 {
		t.Fatalf("entities: want=3 got=%v", got)
	}
	if got := testutil.ToFloat64(m.uploadWarnings.WithLabelValues("coercion_failed")); got != 2 {
		t.Fatalf("warnings: want=2 got=%v", got)
	}
}

func TestMetricsHandlerExposesAPISeries(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("GET", "/api/schema", "200", 15*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `graphadmin_api_requests_total{method="GET",route="/api/schema",status="200"} 1`) {
		t.Fatalf("body missing api series:\n%s", rec.Body.String())
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.APIInflightInc()
	m.APIInflightDec()
	m.ObserveUpload("x", nil, nil)
}

func TestParseRatio(t *testing.T) {
	cases := map[string]float64{"0.5": 0.5, "-1": 0, "3": 1}
	for in, want := range cases {
		got, err := parseRatio(in)
		if err != nil || got != want {
			t.Fatalf("parseRatio(%s): want=%v got=%v err=%v", in, want, got, err)
		}
	}
	if _, err := parseRatio("x"); err == nil {
		t.Fatalf("parseRatio(x): want error")
	}
}
