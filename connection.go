package moor

import "context"

// Connection wraps the current transport session. Recoverables receive a
// new Connection through RecoverAsync and never consult the supervisor's
// own field directly; only the supervisor ever writes this value.
type Connection struct {
	transport TransportConnection
}

func newConnection(transport TransportConnection) *Connection {
	return &Connection{transport: transport}
}

// IsOpened reflects the underlying transport's own open state.
func (c *Connection) IsOpened() bool {
	if c == nil || c.transport == nil {
		return false
	}
	return c.transport.IsOpened()
}

// Closed exposes the underlying transport's close event for the supervisor
// to subscribe to once per reconnect cycle.
func (c *Connection) Closed() <-chan ConnectionClosedEvent {
	return c.transport.Closed()
}

// Close tears the underlying session down from the local side.
func (c *Connection) Close() error {
	if c == nil || c.transport == nil {
		return nil
	}
	return c.transport.Close()
}

func (c *Connection) openSenderLink(ctx context.Context, address, queue string, caps LinkCapabilities, linkName string) (SenderLink, error) {
	return c.transport.OpenSenderLink(ctx, address, queue, caps, linkName)
}

func (c *Connection) openReceiverLink(ctx context.Context, address, queue string, caps LinkCapabilities, linkName string, credit int) (ReceiverLink, error) {
	return c.transport.OpenReceiverLink(ctx, address, queue, caps, linkName, credit)
}
