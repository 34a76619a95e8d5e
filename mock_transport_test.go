package moor

import (
	"context"
	"testing"

	"go.uber.org/mock/gomock"
)

// These tests drive the generated-style MockTransport/MockTransportConnection/
// MockSenderLink doubles instead of the hand-rolled fake* types used
// elsewhere in this package, exercising the same retry-until-success path
// that TestSupervisor_RetriesUntilConnectSucceeds exercises against
// fakeSupervisorTransport.

func TestSupervisor_RetriesUntilConnectSucceedsWithMockTransport(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := NewMockTransport(ctrl)

	conn := NewMockTransportConnection(ctrl)
	var connClosed <-chan ConnectionClosedEvent = make(chan ConnectionClosedEvent)
	conn.EXPECT().Closed().Return(connClosed).AnyTimes()

	link := NewMockSenderLink(ctrl)
	var linkClosed <-chan error = make(chan error)
	link.EXPECT().Closed().Return(linkClosed).AnyTimes()
	conn.EXPECT().OpenSenderLink(gomock.Any(), "orders", "", gomock.Any(), gomock.Any()).Return(link, nil)

	dialErr := newError(KindConnectFailed, "dial refused", nil)
	gomock.InOrder(
		transport.EXPECT().OpenConnection(gomock.Any(), gomock.Any()).Return(nil, dialErr),
		transport.EXPECT().OpenConnection(gomock.Any(), gomock.Any()).Return(nil, dialErr),
		transport.EXPECT().OpenConnection(gomock.Any(), gomock.Any()).Return(conn, nil),
	)

	reg := NewRegistry()
	p := NewAutoRecoveringProducer(reg, ProducerConfig{Address: "orders"})
	sup := NewSupervisor(newTestEndpoints(t), newTestPolicy(t), transport, reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(ctx)
	defer sup.Stop()

	waitForState(t, p, StateAttached)

	link.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(DispositionAccepted, nil)
	msg, _ := NewMessage("hello")
	if _, err := p.SendAsync(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error sending after mock-driven recovery: %v", err)
	}
}

// TestSupervisor_FastPathSkipsReconnectWithMockTransport drives the
// already-open fast path (RequestConnect while connected) against the mock,
// asserting OpenConnection is called exactly once even though a second
// RequestConnectAndAwait follows the initial connect.
func TestSupervisor_FastPathSkipsReconnectWithMockTransport(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := NewMockTransport(ctrl)

	conn := NewMockTransportConnection(ctrl)
	var connClosed <-chan ConnectionClosedEvent = make(chan ConnectionClosedEvent)
	conn.EXPECT().Closed().Return(connClosed).AnyTimes()
	conn.EXPECT().IsOpened().Return(true).AnyTimes()

	transport.EXPECT().OpenConnection(gomock.Any(), gomock.Any()).Return(conn, nil).Times(1)

	reg := NewRegistry()
	sup := NewSupervisor(newTestEndpoints(t), newTestPolicy(t), transport, reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(ctx)
	defer sup.Stop()

	if err := sup.RequestConnectAndAwait(context.Background()); err != nil {
		t.Fatalf("unexpected error waiting for initial connect: %v", err)
	}
	if err := sup.RequestConnectAndAwait(context.Background()); err != nil {
		t.Fatalf("unexpected error on fast-path reconnect request: %v", err)
	}
}
