package moor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// SendMode governs how SendAsync behaves while the producer's link is
// Suspended or Recovering: ModeAwaitCredit parks the call until Resume,
// ModeFireAndForget fails fast with a retryable error so the application
// can apply its own backpressure.
type SendMode int

const (
	ModeAwaitCredit SendMode = iota
	ModeFireAndForget
)

// ProducerConfig is the per-producer configuration surface: target address,
// routing-type capability, optional FQQN queue component, optional message
// priority/TTL defaults, and send-mode during recovery.
type ProducerConfig struct {
	Address         string
	Queue           string
	RoutingType     RoutingType
	SendMode        SendMode
	DefaultTTL      *uint32
	DefaultPriority *uint8
}

// applyDefaults returns message unchanged if it already sets TTL and
// priority, or a shallow copy with config's per-producer defaults filled in
// for whichever of the two it leaves unset. The original is never mutated —
// callers may reuse a *Message across producers with different defaults.
func (c ProducerConfig) applyDefaults(message *Message) *Message {
	if message.TTL != nil && message.Priority != nil {
		return message
	}
	if c.DefaultTTL == nil && c.DefaultPriority == nil {
		return message
	}
	out := *message
	if out.TTL == nil && c.DefaultTTL != nil {
		ttl := time.Duration(*c.DefaultTTL) * time.Millisecond
		out.TTL = &ttl
	}
	if out.Priority == nil && c.DefaultPriority != nil {
		priority := *c.DefaultPriority
		out.Priority = &priority
	}
	return &out
}

func (c ProducerConfig) capabilities() LinkCapabilities {
	if c.RoutingType == RoutingTypeMulticast {
		return LinkCapabilities{Multicast: true}
	}
	return LinkCapabilities{Anycast: true}
}

// AutoRecoveringProducer is a long-lived send handle whose underlying
// sender link is transparently re-attached by the supervisor across broker
// or network failures.
type AutoRecoveringProducer struct {
	mu    sync.Mutex
	cond  *sync.Cond
	state RecoverableState

	config ProducerConfig
	link   SenderLink
	tag    uint64

	registry *Registry
}

// NewAutoRecoveringProducer creates a producer in the Initializing state and
// registers it with reg so the supervisor picks it up on the next reconnect
// cycle.
func NewAutoRecoveringProducer(reg *Registry, config ProducerConfig) *AutoRecoveringProducer {
	p := &AutoRecoveringProducer{state: StateInitializing, config: config, registry: reg}
	p.cond = sync.NewCond(&p.mu)
	reg.Add(p)
	return p
}

// SendAsync forwards message to the current sender link, parking (or
// failing fast, per SendMode) while the link is Suspended or Recovering.
func (p *AutoRecoveringProducer) SendAsync(ctx context.Context, message *Message) (disposition Disposition, err error) {
	ctx, span := startSpan(ctx, "moor.producer.send", attribute.String("moor.address", p.config.Address))
	defer func() { endSpan(span, err) }()

	link, tag, err := p.awaitLink(ctx)
	if err != nil {
		return DispositionReleased, err
	}

	disposition, sendErr := link.Send(ctx, tag, p.config.applyDefaults(message))
	if sendErr != nil {
		var moorErr *Error
		if errors.As(sendErr, &moorErr) && moorErr.Kind == KindCancelled {
			return disposition, moorErr
		}
		// Unsettled delivery at link failure: surface a retryable error
		// and let recovery proceed independently. No implicit resend —
		// the producer cannot guarantee idempotence here.
		return disposition, newError(KindLinkDetached, "delivery unsettled at link failure", sendErr)
	}
	return disposition, nil
}

// awaitLink returns the current link and the next delivery tag once the
// producer is Attached, respecting SendMode while Suspended/Recovering.
func (p *AutoRecoveringProducer) awaitLink(ctx context.Context) (SenderLink, uint64, error) {
	stop := context.AfterFunc(ctx, func() {
		p.mu.Lock()
		p.cond.Broadcast()
		p.mu.Unlock()
	})
	defer stop()

	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		switch p.state {
		case StateAttached:
			p.tag++
			return p.link, p.tag, nil
		case StateClosed:
			return nil, 0, newError(KindCancelled, "producer closed", nil)
		case StateSuspended, StateRecovering:
			if p.config.SendMode == ModeFireAndForget {
				return nil, 0, newError(KindLinkDetached, "producer suspended, fire-and-forget send mode", nil)
			}
		}
		if ctx.Err() != nil {
			return nil, 0, newError(KindCancelled, "send cancelled while parked", ctx.Err())
		}
		p.cond.Wait()
	}
}

// Suspend parks future sends. Called only by the supervisor.
func (p *AutoRecoveringProducer) Suspend() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateClosed {
		return
	}
	p.state = StateSuspended
	p.cond.Broadcast()
}

// RecoverAsync opens a fresh sender link against conn with a new random
// link name, resetting the delivery-tag sequence for the new link instance.
func (p *AutoRecoveringProducer) RecoverAsync(ctx context.Context, conn *Connection) error {
	link, err := conn.openSenderLink(ctx, p.config.Address, p.config.Queue, p.config.capabilities(), uuid.NewString())
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.link = link
	p.tag = 0
	p.state = StateRecovering
	p.mu.Unlock()
	go p.watchLinkClosed(link)
	return nil
}

// watchLinkClosed suspends the producer and asks the registry's owner to
// reconnect when link detaches while the connection it belongs to is still
// open (e.g. PRECONDITION_FAILED, queue deletion). A stale firing — link
// already superseded by a later RecoverAsync, or the producer already
// closed — is a no-op.
func (p *AutoRecoveringProducer) watchLinkClosed(link SenderLink) {
	if _, ok := <-link.Closed(); !ok {
		return
	}
	p.mu.Lock()
	stale := p.link != link || p.state == StateClosed
	if !stale {
		p.state = StateSuspended
		p.cond.Broadcast()
	}
	p.mu.Unlock()
	if !stale {
		p.registry.RequestReconnect()
	}
}

// Resume unparks sends onto the newly recovered link.
func (p *AutoRecoveringProducer) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateClosed {
		return
	}
	p.state = StateAttached
	p.cond.Broadcast()
}

// Close tears the producer down permanently, unparks any waiters with a
// cancellation error, and deregisters from the registry.
func (p *AutoRecoveringProducer) Close() error {
	p.mu.Lock()
	link := p.link
	p.state = StateClosed
	p.link = nil
	p.cond.Broadcast()
	p.mu.Unlock()

	p.registry.Remove(p)
	if link != nil {
		return link.Close(nil)
	}
	return nil
}

// State reports the current lifecycle position.
func (p *AutoRecoveringProducer) State() RecoverableState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}
