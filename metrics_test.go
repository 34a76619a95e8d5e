package moor

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RecordConnectAttemptAndFailure(t *testing.T) {
	m := NewMetrics("test-client")
	m.recordConnectAttempt()
	m.recordConnectAttempt()
	m.recordConnectFailure()

	if got := testutil.ToFloat64(m.connectAttempts); got != 2 {
		t.Fatalf("expected 2 connect attempts, got %v", got)
	}
	if got := testutil.ToFloat64(m.connectFailures); got != 1 {
		t.Fatalf("expected 1 connect failure, got %v", got)
	}
}

func TestMetrics_ConnectionStateGauge(t *testing.T) {
	m := NewMetrics("test-client")
	m.setConnectionState(true)
	if got := testutil.ToFloat64(m.connectionState); got != 1 {
		t.Fatalf("expected gauge 1 when open, got %v", got)
	}
	m.setConnectionState(false)
	if got := testutil.ToFloat64(m.connectionState); got != 0 {
		t.Fatalf("expected gauge 0 when closed, got %v", got)
	}
}

func TestMetrics_NilReceiverMethodsAreNoOps(t *testing.T) {
	var m *Metrics
	m.recordConnectAttempt()
	m.recordConnectFailure()
	m.recordReconnect()
	m.setConnectionState(true)
	m.setRecoverableCount(3)
}

func TestMetrics_RecoverableCountGauge(t *testing.T) {
	m := NewMetrics("test-client")
	m.setRecoverableCount(4)
	if got := testutil.ToFloat64(m.recoverableCount); got != 4 {
		t.Fatalf("expected gauge 4, got %v", got)
	}
}
