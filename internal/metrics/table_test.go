package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveResults(t *testing.T) {
	normalized := testutil.ToFloat64(RowsNormalizedTotal)
	dropped := testutil.ToFloat64(RowsDroppedTotal)

	ObserveResults(10, 3)

	if got := testutil.ToFloat64(RowsNormalizedTotal) - normalized; got != 7 {
		t.Errorf("normalized delta = %f, want 7", got)
	}
	if got := testutil.ToFloat64(RowsDroppedTotal) - dropped; got != 3 {
		t.Errorf("dropped delta = %f, want 3", got)
	}
}

func TestRegisterTableMetrics_Idempotent(t *testing.T) {
	RegisterTableMetrics()
	RegisterTableMetrics()
}
