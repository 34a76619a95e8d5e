package moor

import "context"

// QueueConfig is the recognized configuration surface for a broker-side
// queue creation request.
type QueueConfig struct {
	Name               string
	Address            string
	RoutingType        RoutingType
	Durable            bool
	Exclusive          bool
	GroupRebalance     bool
	GroupBuckets       int
	MaxConsumers       int
	AutoCreateAddress  bool
	PurgeOnNoConsumers bool
}

// TopologyTransport is the broker-side management RPC surface: create
// address, create queue, list address/queue names. It is an external
// collaborator — its wire shape is consumed here, not defined; a concrete
// Transport exposes it optionally by implementing this interface.
type TopologyTransport interface {
	CreateAddress(ctx context.Context, name string, routingType RoutingType) error
	CreateQueue(ctx context.Context, config QueueConfig) error
	GetAddressNames(ctx context.Context) ([]string, error)
	GetQueueNames(ctx context.Context) ([]string, error)
}

// Topology returns c's management RPC surface, if the underlying transport
// supports it.
func (c *Connection) Topology() (TopologyTransport, bool) {
	t, ok := c.transport.(TopologyTransport)
	return t, ok
}

// CreateAddress creates address with the given routing-type capability.
// Topology conflicts (address already exists with a different routing
// type) surface synchronously and are never retried, per this package's
// error-propagation rules.
func (c *Connection) CreateAddress(ctx context.Context, name string, routingType RoutingType) error {
	t, ok := c.Topology()
	if !ok {
		return fmtErrorf(KindConfiguration, "transport does not support topology management")
	}
	return t.CreateAddress(ctx, name, routingType)
}

// CreateQueue creates a queue per config. When config.AutoCreateAddress is
// false and config.Address does not already exist, this fails with
// TopologyConflict.
func (c *Connection) CreateQueue(ctx context.Context, config QueueConfig) error {
	t, ok := c.Topology()
	if !ok {
		return fmtErrorf(KindConfiguration, "transport does not support topology management")
	}
	return t.CreateQueue(ctx, config)
}

// GetAddressNames lists addresses known to this connection's topology view.
func (c *Connection) GetAddressNames(ctx context.Context) ([]string, error) {
	t, ok := c.Topology()
	if !ok {
		return nil, fmtErrorf(KindConfiguration, "transport does not support topology management")
	}
	return t.GetAddressNames(ctx)
}

// GetQueueNames lists queues known to this connection's topology view.
func (c *Connection) GetQueueNames(ctx context.Context) ([]string, error) {
	t, ok := c.Topology()
	if !ok {
		return nil, fmtErrorf(KindConfiguration, "transport does not support topology management")
	}
	return t.GetQueueNames(ctx)
}
