package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestFetchTotalBySource(t *testing.T) {
	before := testutil.ToFloat64(FetchTotal.WithLabelValues("cache"))
	FetchTotal.WithLabelValues("cache").Inc()
	if got := testutil.ToFloat64(FetchTotal.WithLabelValues("cache")); got != before+1 {
		t.Fatalf("expected %v, got %v", before+1, got)
	}
}

func TestBreakerStateGauge(t *testing.T) {
	BreakerState.Set(2)
	if got := testutil.ToFloat64(BreakerState); got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
	BreakerState.Set(0)
}
