package moor

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeSenderLink struct {
	sendFn func(ctx context.Context, tag uint64, message *Message) (Disposition, error)
	closed chan error
}

func newFakeSenderLink() *fakeSenderLink {
	return &fakeSenderLink{closed: make(chan error, 1)}
}

func (f *fakeSenderLink) Send(ctx context.Context, tag uint64, message *Message) (Disposition, error) {
	if f.sendFn != nil {
		return f.sendFn(ctx, tag, message)
	}
	return DispositionAccepted, nil
}
func (f *fakeSenderLink) Closed() <-chan error { return f.closed }
func (f *fakeSenderLink) Close(cause error) error {
	select {
	case f.closed <- cause:
	default:
	}
	close(f.closed)
	return nil
}

type fakeTransportConnection struct {
	senderLink   SenderLink
	receiverLink ReceiverLink
	closed       chan ConnectionClosedEvent
}

func (f *fakeTransportConnection) OpenSenderLink(ctx context.Context, address, queue string, caps LinkCapabilities, linkName string) (SenderLink, error) {
	return f.senderLink, nil
}
func (f *fakeTransportConnection) OpenReceiverLink(ctx context.Context, address, queue string, caps LinkCapabilities, linkName string, credit int) (ReceiverLink, error) {
	return f.receiverLink, nil
}
func (f *fakeTransportConnection) Closed() <-chan ConnectionClosedEvent { return f.closed }
func (f *fakeTransportConnection) IsOpened() bool                      { return true }
func (f *fakeTransportConnection) Close() error                        { return nil }

func newFakeConnection(link SenderLink) *Connection {
	return newConnection(&fakeTransportConnection{senderLink: link, closed: make(chan ConnectionClosedEvent, 1)})
}

func TestProducer_SendWhileInitializingFailsWhenContextExpires(t *testing.T) {
	reg := NewRegistry()
	p := NewAutoRecoveringProducer(reg, ProducerConfig{Address: "orders"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	msg, _ := NewMessage("hello")
	_, err := p.SendAsync(ctx, msg)
	if err == nil {
		t.Fatal("expected error: producer never attached")
	}
}

func TestProducer_SendSucceedsWhenAttached(t *testing.T) {
	reg := NewRegistry()
	p := NewAutoRecoveringProducer(reg, ProducerConfig{Address: "orders"})
	link := newFakeSenderLink()
	conn := newFakeConnection(link)

	if err := p.RecoverAsync(context.Background(), conn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.Resume()

	msg, _ := NewMessage("hello")
	disp, err := p.SendAsync(context.Background(), msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if disp != DispositionAccepted {
		t.Errorf("expected DispositionAccepted, got %v", disp)
	}
}

func TestProducer_DeliveryTagsMonotonicPerLinkInstance(t *testing.T) {
	reg := NewRegistry()
	p := NewAutoRecoveringProducer(reg, ProducerConfig{Address: "orders"})
	var seenTags []uint64
	link := newFakeSenderLink()
	link.sendFn = func(ctx context.Context, tag uint64, message *Message) (Disposition, error) {
		seenTags = append(seenTags, tag)
		return DispositionAccepted, nil
	}
	conn := newFakeConnection(link)
	if err := p.RecoverAsync(context.Background(), conn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.Resume()

	msg, _ := NewMessage("hello")
	for i := 0; i < 3; i++ {
		if _, err := p.SendAsync(context.Background(), msg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	for i := 1; i < len(seenTags); i++ {
		if seenTags[i] <= seenTags[i-1] {
			t.Fatalf("delivery tags not strictly increasing: %v", seenTags)
		}
	}
}

func TestProducer_ParksDuringSuspendedThenSendsOnResume(t *testing.T) {
	reg := NewRegistry()
	p := NewAutoRecoveringProducer(reg, ProducerConfig{Address: "orders", SendMode: ModeAwaitCredit})
	link := newFakeSenderLink()
	conn := newFakeConnection(link)
	if err := p.RecoverAsync(context.Background(), conn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.Resume()
	p.Suspend()

	result := make(chan error, 1)
	msg, _ := NewMessage("hello")
	go func() {
		_, err := p.SendAsync(context.Background(), msg)
		result <- err
	}()

	select {
	case <-result:
		t.Fatal("send completed while suspended")
	case <-time.After(20 * time.Millisecond):
	}

	p.Resume()
	select {
	case err := <-result:
		if err != nil {
			t.Fatalf("unexpected error after resume: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("send never completed after resume")
	}
}

func TestProducer_FireAndForgetFailsFastWhenSuspended(t *testing.T) {
	reg := NewRegistry()
	p := NewAutoRecoveringProducer(reg, ProducerConfig{Address: "orders", SendMode: ModeFireAndForget})
	link := newFakeSenderLink()
	conn := newFakeConnection(link)
	if err := p.RecoverAsync(context.Background(), conn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.Resume()
	p.Suspend()

	msg, _ := NewMessage("hello")
	_, err := p.SendAsync(context.Background(), msg)
	if err == nil {
		t.Fatal("expected fail-fast error while suspended")
	}
	if !errors.Is(err, ErrLinkDetached) {
		t.Errorf("expected ErrLinkDetached, got %v", err)
	}
}

func TestProducer_CloseCancelsParkedSend(t *testing.T) {
	reg := NewRegistry()
	p := NewAutoRecoveringProducer(reg, ProducerConfig{Address: "orders"})
	link := newFakeSenderLink()
	conn := newFakeConnection(link)
	if err := p.RecoverAsync(context.Background(), conn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.Suspend()

	result := make(chan error, 1)
	msg, _ := NewMessage("hello")
	go func() {
		_, err := p.SendAsync(context.Background(), msg)
		result <- err
	}()

	time.Sleep(20 * time.Millisecond)
	if err := p.Close(); err != nil {
		t.Fatalf("unexpected error closing: %v", err)
	}

	select {
	case err := <-result:
		if !errors.Is(err, ErrCancelled) {
			t.Errorf("expected ErrCancelled after close, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("parked send never unblocked after close")
	}
	if reg.Len() != 0 {
		t.Errorf("expected producer to be deregistered after close")
	}
}

func TestProducer_LinkDetachWhileConnectionOpenSuspendsAndRequestsReconnect(t *testing.T) {
	reg := NewRegistry()
	notified := make(chan struct{}, 1)
	reg.SetReconnectNotifier(func() {
		select {
		case notified <- struct{}{}:
		default:
		}
	})

	p := NewAutoRecoveringProducer(reg, ProducerConfig{Address: "orders"})
	link := newFakeSenderLink()
	conn := newFakeConnection(link)
	if err := p.RecoverAsync(context.Background(), conn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.Resume()

	link.Close(errors.New("PRECONDITION_FAILED"))

	select {
	case <-notified:
	case <-time.After(time.Second):
		t.Fatal("expected registry reconnect notifier to fire after link detach")
	}

	waitForState(t, p, StateSuspended)
}

func TestProducer_SendAppliesPerProducerDefaults(t *testing.T) {
	reg := NewRegistry()
	ttlMillis := uint32(5000)
	priority := uint8(7)
	p := NewAutoRecoveringProducer(reg, ProducerConfig{Address: "orders", DefaultTTL: &ttlMillis, DefaultPriority: &priority})

	var seen *Message
	link := newFakeSenderLink()
	link.sendFn = func(ctx context.Context, tag uint64, message *Message) (Disposition, error) {
		seen = message
		return DispositionAccepted, nil
	}
	conn := newFakeConnection(link)
	if err := p.RecoverAsync(context.Background(), conn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.Resume()

	msg, _ := NewMessage("hello")
	if _, err := p.SendAsync(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if seen.TTL == nil || *seen.TTL != time.Duration(ttlMillis)*time.Millisecond {
		t.Errorf("expected default TTL applied, got %v", seen.TTL)
	}
	if seen.Priority == nil || *seen.Priority != priority {
		t.Errorf("expected default priority applied, got %v", seen.Priority)
	}
	if msg.TTL != nil || msg.Priority != nil {
		t.Error("original message must not be mutated by applyDefaults")
	}
}

func TestProducer_SendCancelledByContext(t *testing.T) {
	reg := NewRegistry()
	p := NewAutoRecoveringProducer(reg, ProducerConfig{Address: "orders"})
	ctx, cancel := context.WithCancel(context.Background())

	result := make(chan error, 1)
	msg, _ := NewMessage("hello")
	go func() {
		_, err := p.SendAsync(ctx, msg)
		result <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-result:
		if !errors.Is(err, ErrCancelled) {
			t.Errorf("expected ErrCancelled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("send never observed cancellation")
	}
}
