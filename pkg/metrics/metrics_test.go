package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewRegistersDistinctMetrics(t *testing.T) {
	r := New()
	r.PacketsIn.Add(3)
	r.PacketsOut.Inc()
	r.LoadedChunks.Set(12)
	r.TrackedEntites.Set(4)
	r.PathNodeExpansions.Observe(256)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	r.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	for _, want := range []string{
		"vibebot_packets_in_total 3",
		"vibebot_packets_out_total 1",
		"vibebot_loaded_chunks 12",
		"vibebot_tracked_entities 4",
		"vibebot_pathfind_node_expansions",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected exposition output to contain %q, got:\n%s", want, body)
		}
	}
}

func TestTwoRegistriesDoNotCollide(t *testing.T) {
	a := New()
	b := New()
	a.PacketsIn.Inc()
	b.PacketsIn.Add(5)

	recA := httptest.NewRecorder()
	a.Handler().ServeHTTP(recA, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(recA.Body.String(), "vibebot_packets_in_total 1") {
		t.Errorf("registry a unaffected by registry b, got:\n%s", recA.Body.String())
	}
}
