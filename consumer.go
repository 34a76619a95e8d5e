package moor

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// CreditRefillMode governs how AcceptAsync/RejectAsync replenish receiver
// credit: RefillPerMessage grants one credit per settlement, RefillManual
// grants none. AutoRecoveringConsumer exposes no method for adding credit
// itself.
type CreditRefillMode int

const (
	RefillPerMessage CreditRefillMode = iota
	RefillManual
)

// ConsumerConfig is the per-consumer configuration surface: source address,
// optional FQQN queue component, routing-type capability, prefetch size,
// and credit-refill mode.
type ConsumerConfig struct {
	Address          string
	Queue            string
	RoutingType      RoutingType
	PrefetchCount    int
	CreditRefillMode CreditRefillMode
}

func (c ConsumerConfig) capabilities() LinkCapabilities {
	if c.RoutingType == RoutingTypeMulticast {
		return LinkCapabilities{Multicast: true}
	}
	return LinkCapabilities{Anycast: true}
}

// pendingDelivery pairs a buffered message with the link instance it
// arrived on, so Accept/Reject settle against the correct amqp091 channel
// even if recovery has since swapped in a new link.
type pendingDelivery struct {
	delivery Delivery
	link     ReceiverLink
}

// AutoRecoveringConsumer is a long-lived receive handle whose underlying
// receiver link is transparently re-attached by the supervisor across
// broker or network failures. Its prefetch buffer survives recovery: no
// in-flight message is discarded by a reconnect.
type AutoRecoveringConsumer struct {
	mu    sync.Mutex
	cond  *sync.Cond
	state RecoverableState

	config ConsumerConfig
	link   ReceiverLink
	buffer []pendingDelivery

	// pending is keyed by the *Message pointer, not the wire delivery tag:
	// amqp091 delivery tags restart at 1 on every new channel, so two link
	// generations across a reconnect can both have an outstanding tag 1.
	pending map[*Message]pendingDelivery

	registry *Registry
}

// NewAutoRecoveringConsumer creates a consumer in the Initializing state and
// registers it with reg so the supervisor picks it up on the next reconnect
// cycle.
func NewAutoRecoveringConsumer(reg *Registry, config ConsumerConfig) *AutoRecoveringConsumer {
	c := &AutoRecoveringConsumer{
		state:    StateInitializing,
		config:   config,
		registry: reg,
		pending:  make(map[*Message]pendingDelivery),
	}
	c.cond = sync.NewCond(&c.mu)
	reg.Add(c)
	return c
}

// ReceiveAsync returns the next buffered delivery in FIFO order, parking
// until one is available, the consumer closes, or ctx is cancelled.
func (c *AutoRecoveringConsumer) ReceiveAsync(ctx context.Context) (message *Message, err error) {
	ctx, span := startSpan(ctx, "moor.consumer.receive", attribute.String("moor.address", c.config.Address))
	defer func() { endSpan(span, err) }()

	stop := context.AfterFunc(ctx, func() {
		c.mu.Lock()
		c.cond.Broadcast()
		c.mu.Unlock()
	})
	defer stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		if len(c.buffer) > 0 {
			pd := c.buffer[0]
			c.buffer = c.buffer[1:]
			c.pending[pd.delivery.Message] = pd
			return pd.delivery.Message, nil
		}
		if c.state == StateClosed {
			return nil, newError(KindCancelled, "consumer closed", nil)
		}
		if ctx.Err() != nil {
			return nil, newError(KindCancelled, "receive cancelled while parked", ctx.Err())
		}
		c.cond.Wait()
	}
}

// AcceptAsync settles message as accepted on the link it arrived on. A
// settlement against an already-closed link silently succeeds locally: the
// broker will redeliver on the next attach, which is the documented
// post-close behavior for unsettled deliveries.
func (c *AutoRecoveringConsumer) AcceptAsync(message *Message) error {
	return c.settle(message, true, nil)
}

// RejectAsync settles message as rejected, with the same post-close
// semantics as AcceptAsync.
func (c *AutoRecoveringConsumer) RejectAsync(message *Message, cause error) error {
	return c.settle(message, false, cause)
}

func (c *AutoRecoveringConsumer) settle(message *Message, accept bool, cause error) error {
	pd, found := c.takePending(message)
	if !found {
		return newConfigError("message", "message was not delivered by this consumer or already settled")
	}

	var err error
	if accept {
		err = pd.link.Accept(pd.delivery.Tag)
	} else {
		err = pd.link.Reject(pd.delivery.Tag, cause)
	}
	if err != nil {
		var moorErr *Error
		if errors.As(err, &moorErr) && moorErr.Kind == KindLinkDetached {
			// Link already gone; settlement is moot, broker will
			// redeliver on the next attach.
			return nil
		}
		return err
	}

	if c.config.CreditRefillMode == RefillPerMessage {
		c.mu.Lock()
		link := c.link
		c.mu.Unlock()
		if link == pd.link {
			_ = link.AddCredit(1)
		}
	}
	return nil
}

func (c *AutoRecoveringConsumer) takePending(message *Message) (pendingDelivery, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pd, found := c.pending[message]
	if !found {
		return pendingDelivery{}, false
	}
	delete(c.pending, message)
	return pd, true
}

// Suspend parks ReceiveAsync callers and stops accepting new buffered
// deliveries from the (about to be replaced) link; the buffer itself is
// untouched.
func (c *AutoRecoveringConsumer) Suspend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return
	}
	c.state = StateSuspended
	c.cond.Broadcast()
}

// RecoverAsync opens a fresh receiver link against conn with a new random
// link name, granting credit = prefetch size minus the count of
// buffered-but-unreceived messages, per the credit-management contract.
func (c *AutoRecoveringConsumer) RecoverAsync(ctx context.Context, conn *Connection) error {
	c.mu.Lock()
	buffered := len(c.buffer)
	c.mu.Unlock()

	credit := c.config.PrefetchCount - buffered
	if credit < 0 {
		credit = 0
	}

	link, err := conn.openReceiverLink(ctx, c.config.Address, c.config.Queue, c.config.capabilities(), uuid.NewString(), credit)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.link = link
	c.state = StateRecovering
	c.mu.Unlock()

	go c.drainLink(link)
	go c.watchLinkClosed(link)
	return nil
}

// watchLinkClosed suspends the consumer and asks the registry's owner to
// reconnect when link detaches while the connection it belongs to is still
// open (consumer cancel, queue deletion, PRECONDITION_FAILED). A stale
// firing — link already superseded by a later RecoverAsync, or the
// consumer already closed — is a no-op.
func (c *AutoRecoveringConsumer) watchLinkClosed(link ReceiverLink) {
	if _, ok := <-link.Closed(); !ok {
		return
	}
	c.mu.Lock()
	stale := c.link != link || c.state == StateClosed
	if !stale {
		c.state = StateSuspended
		c.cond.Broadcast()
	}
	c.mu.Unlock()
	if !stale {
		c.registry.RequestReconnect()
	}
}

// drainLink pumps a receiver link's Deliveries channel into the consumer's
// prefetch buffer until the link closes.
func (c *AutoRecoveringConsumer) drainLink(link ReceiverLink) {
	for d := range link.Deliveries() {
		c.mu.Lock()
		if c.link == link {
			c.buffer = append(c.buffer, pendingDelivery{delivery: d, link: link})
			c.cond.Broadcast()
		}
		c.mu.Unlock()
	}
}

// Resume unparks ReceiveAsync onto the newly recovered link's buffered
// deliveries.
func (c *AutoRecoveringConsumer) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return
	}
	c.state = StateAttached
	c.cond.Broadcast()
}

// Close tears the consumer down permanently, discarding any still-buffered
// deliveries, unparks any waiters with a cancellation error, and
// deregisters from the registry.
func (c *AutoRecoveringConsumer) Close() error {
	c.mu.Lock()
	link := c.link
	c.state = StateClosed
	c.link = nil
	c.buffer = nil
	c.cond.Broadcast()
	c.mu.Unlock()

	c.registry.Remove(c)
	if link != nil {
		return link.Close(nil)
	}
	return nil
}

// State reports the current lifecycle position.
func (c *AutoRecoveringConsumer) State() RecoverableState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
