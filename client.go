package moor

import (
	"context"
	"sync"
)

// Client is the top-level entry point: it owns the Supervisor's reconnect
// loop and the Registry producers and consumers attach to, and is the
// normal way applications wire this package together.
type Client struct {
	registry   *Registry
	supervisor *Supervisor

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewClient builds a Client that will connect to endpoints under policy via
// transport once Start is called.
func NewClient(endpoints EndpointList, policy RecoveryPolicy, transport Transport, opts ...SupervisorOption) *Client {
	registry := NewRegistry()
	return &Client{
		registry:   registry,
		supervisor: NewSupervisor(endpoints, policy, transport, registry, opts...),
	}
}

// Start launches the supervisor loop in the background and blocks until the
// first connect cycle completes: connected, retry count exhausted, or ctx
// cancelled. Start must be called before NewProducer/NewConsumer links can
// attach.
func (c *Client) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	go func() {
		defer close(done)
		c.supervisor.Run(runCtx)
	}()

	return c.supervisor.RequestConnectAndAwait(ctx)
}

// Shutdown cancels the supervisor loop and blocks until it exits. It does
// not close producers or consumers registered with this client — callers
// own that lifecycle and should Close each one first if they need a clean
// AMQP-level detach.
func (c *Client) Shutdown() {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// NewProducer creates a producer configured per config and registers it for
// automatic recovery across reconnects. If the client is already connected,
// this also wakes the supervisor so it attaches the new producer to the
// current connection — callers don't need to wait for a fresh reconnect
// cycle for a handle created after Start.
func (c *Client) NewProducer(config ProducerConfig) *AutoRecoveringProducer {
	p := NewAutoRecoveringProducer(c.registry, config)
	c.supervisor.RequestConnect()
	return p
}

// NewConsumer creates a consumer configured per config and registers it for
// automatic recovery across reconnects. If the client is already connected,
// this also wakes the supervisor so it attaches the new consumer to the
// current connection — callers don't need to wait for a fresh reconnect
// cycle for a handle created after Start.
func (c *Client) NewConsumer(config ConsumerConfig) *AutoRecoveringConsumer {
	cons := NewAutoRecoveringConsumer(c.registry, config)
	c.supervisor.RequestConnect()
	return cons
}

// DeclareQueue creates config's backing address (if AutoCreateAddress
// allows it) and the queue itself, against the client's current
// connection. It returns a configuration error if the client has not
// connected yet.
func (c *Client) DeclareQueue(ctx context.Context, config QueueConfig) error {
	conn := c.supervisor.currentConnection()
	if conn == nil || !conn.IsOpened() {
		return fmtErrorf(KindConfiguration, "client has no open connection")
	}
	return conn.CreateQueue(ctx, config)
}

// DeclareAddress creates an address with the given routing-type
// capability against the client's current connection.
func (c *Client) DeclareAddress(ctx context.Context, name string, routingType RoutingType) error {
	conn := c.supervisor.currentConnection()
	if conn == nil || !conn.IsOpened() {
		return fmtErrorf(KindConfiguration, "client has no open connection")
	}
	return conn.CreateAddress(ctx, name, routingType)
}
