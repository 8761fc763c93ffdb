package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterPipelineMetrics_Idempotent(t *testing.T) {
	RegisterPipelineMetrics()
	RegisterPipelineMetrics()
	if !pipelineMetricsRegistered {
		t.Fatal("expected metrics to be registered")
	}
}

func TestPipelineCounters(t *testing.T) {
	before := testutil.ToFloat64(AskRequestsTotal.WithLabelValues("product", "answered"))
	AskRequestsTotal.WithLabelValues("product", "answered").Inc()
	after := testutil.ToFloat64(AskRequestsTotal.WithLabelValues("product", "answered"))
	if after != before+1 {
		t.Errorf("expected counter to grow by 1, got %f -> %f", before, after)
	}

	ResponseCacheTotal.WithLabelValues("local", "hit").Inc()
	if testutil.CollectAndCount(ResponseCacheTotal) == 0 {
		t.Error("expected response cache series")
	}
}
