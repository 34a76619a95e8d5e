package moor

import (
	"context"
	"testing"
	"time"
)

type fakeReceiverLink struct {
	deliveries chan Delivery
	closed     chan error
	accepted   []uint64
	rejected   []uint64
	credit     int
}

func newFakeReceiverLink() *fakeReceiverLink {
	return &fakeReceiverLink{deliveries: make(chan Delivery, 16), closed: make(chan error, 1)}
}

func (f *fakeReceiverLink) Deliveries() <-chan Delivery { return f.deliveries }
func (f *fakeReceiverLink) Accept(tag uint64) error {
	f.accepted = append(f.accepted, tag)
	return nil
}
func (f *fakeReceiverLink) Reject(tag uint64, cause error) error {
	f.rejected = append(f.rejected, tag)
	return nil
}
func (f *fakeReceiverLink) AddCredit(n int) error { f.credit += n; return nil }
func (f *fakeReceiverLink) Closed() <-chan error  { return f.closed }
func (f *fakeReceiverLink) Close(cause error) error {
	close(f.deliveries)
	select {
	case f.closed <- cause:
	default:
	}
	close(f.closed)
	return nil
}

type fakeReceiverTransportConnection struct {
	link ReceiverLink
}

func (f *fakeReceiverTransportConnection) OpenSenderLink(ctx context.Context, address, queue string, caps LinkCapabilities, linkName string) (SenderLink, error) {
	return nil, nil
}
func (f *fakeReceiverTransportConnection) OpenReceiverLink(ctx context.Context, address, queue string, caps LinkCapabilities, linkName string, credit int) (ReceiverLink, error) {
	return f.link, nil
}
func (f *fakeReceiverTransportConnection) Closed() <-chan ConnectionClosedEvent {
	return make(chan ConnectionClosedEvent)
}
func (f *fakeReceiverTransportConnection) IsOpened() bool { return true }
func (f *fakeReceiverTransportConnection) Close() error   { return nil }

func newFakeReceiverConnection(link ReceiverLink) *Connection {
	return newConnection(&fakeReceiverTransportConnection{link: link})
}

func TestConsumer_ReceiveAsyncFIFO(t *testing.T) {
	reg := NewRegistry()
	c := NewAutoRecoveringConsumer(reg, ConsumerConfig{Address: "orders", PrefetchCount: 10})
	link := newFakeReceiverLink()
	conn := newFakeReceiverConnection(link)
	if err := c.RecoverAsync(context.Background(), conn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Resume()

	m1, _ := NewMessage("first")
	m2, _ := NewMessage("second")
	link.deliveries <- Delivery{Tag: 1, Message: m1}
	link.deliveries <- Delivery{Tag: 2, Message: m2}

	ctx := context.Background()
	got1, err := c.ReceiveAsync(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got2, err := c.ReceiveAsync(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if GetBody[string](got1) != "first" || GetBody[string](got2) != "second" {
		t.Fatalf("expected FIFO order, got %v then %v", got1, got2)
	}
}

func TestConsumer_AcceptSettlesAndRefillsCredit(t *testing.T) {
	reg := NewRegistry()
	c := NewAutoRecoveringConsumer(reg, ConsumerConfig{Address: "orders", PrefetchCount: 10})
	link := newFakeReceiverLink()
	conn := newFakeReceiverConnection(link)
	if err := c.RecoverAsync(context.Background(), conn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Resume()

	m1, _ := NewMessage("first")
	link.deliveries <- Delivery{Tag: 5, Message: m1}
	got, err := c.ReceiveAsync(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.AcceptAsync(got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(link.accepted) != 1 || link.accepted[0] != 5 {
		t.Fatalf("expected tag 5 accepted, got %v", link.accepted)
	}
	if link.credit != 1 {
		t.Fatalf("expected credit refilled by 1, got %d", link.credit)
	}
}

func TestConsumer_BufferSurvivesSuspendResume(t *testing.T) {
	reg := NewRegistry()
	c := NewAutoRecoveringConsumer(reg, ConsumerConfig{Address: "orders", PrefetchCount: 10})
	link := newFakeReceiverLink()
	conn := newFakeReceiverConnection(link)
	if err := c.RecoverAsync(context.Background(), conn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Resume()

	m1, _ := NewMessage("buffered")
	link.deliveries <- Delivery{Tag: 1, Message: m1}
	time.Sleep(10 * time.Millisecond) // let drainLink pump it into the buffer

	c.Suspend()
	c.Resume()

	got, err := c.ReceiveAsync(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if GetBody[string](got) != "buffered" {
		t.Fatalf("expected buffered message to survive suspend/resume, got %v", got)
	}
}

func TestConsumer_RecoverGrantsCreditMinusBuffered(t *testing.T) {
	reg := NewRegistry()
	c := NewAutoRecoveringConsumer(reg, ConsumerConfig{Address: "orders", PrefetchCount: 5})
	c.buffer = []pendingDelivery{{}, {}}

	var gotCredit int
	link := newFakeReceiverLink()
	conn := newConnection(&creditCapturingTransportConnection{link: link, capture: &gotCredit})
	if err := c.RecoverAsync(context.Background(), conn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotCredit != 3 {
		t.Fatalf("expected credit 5-2=3, got %d", gotCredit)
	}
}

type creditCapturingTransportConnection struct {
	link    ReceiverLink
	capture *int
}

func (f *creditCapturingTransportConnection) OpenSenderLink(ctx context.Context, address, queue string, caps LinkCapabilities, linkName string) (SenderLink, error) {
	return nil, nil
}
func (f *creditCapturingTransportConnection) OpenReceiverLink(ctx context.Context, address, queue string, caps LinkCapabilities, linkName string, credit int) (ReceiverLink, error) {
	*f.capture = credit
	return f.link, nil
}
func (f *creditCapturingTransportConnection) Closed() <-chan ConnectionClosedEvent {
	return make(chan ConnectionClosedEvent)
}
func (f *creditCapturingTransportConnection) IsOpened() bool { return true }
func (f *creditCapturingTransportConnection) Close() error   { return nil }

func TestConsumer_LinkDetachWhileConnectionOpenSuspendsAndRequestsReconnect(t *testing.T) {
	reg := NewRegistry()
	notified := make(chan struct{}, 1)
	reg.SetReconnectNotifier(func() {
		select {
		case notified <- struct{}{}:
		default:
		}
	})

	c := NewAutoRecoveringConsumer(reg, ConsumerConfig{Address: "orders", PrefetchCount: 10})
	link := newFakeReceiverLink()
	conn := newFakeReceiverConnection(link)
	if err := c.RecoverAsync(context.Background(), conn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Resume()

	link.Close(nil)

	select {
	case <-notified:
	case <-time.After(time.Second):
		t.Fatal("expected registry reconnect notifier to fire after link detach")
	}

	waitForState(t, c, StateSuspended)
}

func TestConsumer_SettlesBothMessagesWhenReconnectReusesDeliveryTag(t *testing.T) {
	reg := NewRegistry()
	c := NewAutoRecoveringConsumer(reg, ConsumerConfig{Address: "orders", PrefetchCount: 10})

	firstLink := newFakeReceiverLink()
	if err := c.RecoverAsync(context.Background(), newFakeReceiverConnection(firstLink)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Resume()

	m1, _ := NewMessage("from first link")
	firstLink.deliveries <- Delivery{Tag: 1, Message: m1}
	got1, err := c.ReceiveAsync(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Simulate a reconnect onto a new link instance before the first
	// message settles: its delivery tag sequence restarts at 1.
	secondLink := newFakeReceiverLink()
	if err := c.RecoverAsync(context.Background(), newFakeReceiverConnection(secondLink)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Resume()

	m2, _ := NewMessage("from second link")
	secondLink.deliveries <- Delivery{Tag: 1, Message: m2}
	got2, err := c.ReceiveAsync(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := c.AcceptAsync(got1); err != nil {
		t.Fatalf("unexpected error settling first-link message: %v", err)
	}
	if err := c.AcceptAsync(got2); err != nil {
		t.Fatalf("unexpected error settling second-link message: %v", err)
	}

	if len(firstLink.accepted) != 1 || firstLink.accepted[0] != 1 {
		t.Fatalf("expected first link to accept tag 1, got %v", firstLink.accepted)
	}
	if len(secondLink.accepted) != 1 || secondLink.accepted[0] != 1 {
		t.Fatalf("expected second link to accept tag 1, got %v", secondLink.accepted)
	}
}

func TestConsumer_CloseDiscardsBufferAndDeregisters(t *testing.T) {
	reg := NewRegistry()
	c := NewAutoRecoveringConsumer(reg, ConsumerConfig{Address: "orders", PrefetchCount: 10})
	link := newFakeReceiverLink()
	conn := newFakeReceiverConnection(link)
	if err := c.RecoverAsync(context.Background(), conn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Resume()

	if err := c.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.Len() != 0 {
		t.Fatalf("expected consumer to be deregistered after close")
	}

	_, err := c.ReceiveAsync(context.Background())
	if err == nil {
		t.Fatal("expected error receiving from a closed consumer")
	}
}
