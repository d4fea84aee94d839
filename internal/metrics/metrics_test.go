package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/vovakirdan/tui-platformer/internal/sim"
)

func family(t *testing.T, m *Metrics, name string) *dto.MetricFamily {
	t.Helper()
	fams, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}
	for _, f := range fams {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func counterWithLabel(f *dto.MetricFamily, label, value string) float64 {
	if f == nil {
		return 0
	}
	for _, m := range f.GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetName() == label && l.GetValue() == value {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestRecordTick(t *testing.T) {
	m := New()
	m.RecordTick(time.Millisecond, []sim.Event{
		{Kind: sim.EventCollectItem},
		{Kind: sim.EventCollectItem},
		{Kind: sim.EventGameOver, Cause: sim.CauseFell},
	})

	if got := family(t, m, "platformer_ticks_total").GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Errorf("ticks = %v, expected 1", got)
	}
	if got := counterWithLabel(family(t, m, "platformer_events_total"), "kind", "collectItem"); got != 2 {
		t.Errorf("collectItem events = %v, expected 2", got)
	}
	if got := counterWithLabel(family(t, m, "platformer_game_overs_total"), "cause", "fell"); got != 1 {
		t.Errorf("fell game overs = %v, expected 1", got)
	}
}

func TestSessionGauge(t *testing.T) {
	m := New()
	m.SessionStarted()
	m.SessionStarted()
	m.SessionEnded()

	if got := family(t, m, "platformer_sessions_active").GetMetric()[0].GetGauge().GetValue(); got != 1 {
		t.Errorf("active sessions = %v, expected 1", got)
	}
	if got := family(t, m, "platformer_sessions_total").GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Errorf("total sessions = %v, expected 2", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RecordRequest("GET", "/health", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	if !strings.Contains(string(body), `http_requests_total{endpoint="/health",method="GET",status="200"} 1`) {
		t.Errorf("exposition missing request counter:\n%s", body)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.SessionStarted()
	m.SessionEnded()
	m.RecordTick(time.Millisecond, []sim.Event{{Kind: sim.EventShoot}})
	m.RunSaved()
	m.SetSpectators(3)
	m.RecordRequest("GET", "/", 200, 0)
	m.RecordRejected("rate_limit")
}
