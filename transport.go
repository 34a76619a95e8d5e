package moor

import "context"

// LinkCapabilities advertises the Artemis routing-type capability a link
// offers in its source or target: anycast (queue), multicast (topic), or
// both.
type LinkCapabilities struct {
	Anycast   bool
	Multicast bool
}

// Disposition is the terminal outcome of a sent message as settled by the
// broker.
type Disposition int

const (
	DispositionAccepted Disposition = iota
	DispositionRejected
	DispositionReleased
)

// Delivery is a single inbound message sent on a receiver link's Deliveries
// channel, carrying enough identity for Accept/Reject to settle it.
type Delivery struct {
	Tag     uint64
	Message *Message
}

// Transport hides the underlying AMQP library behind the minimal interface
// the core depends on: open a session over an endpoint, open sender/receiver
// links, observe close events. A concrete adapter backs this with a real
// wire client; tests back it with a fake.
type Transport interface {
	// OpenConnection dials endpoint and returns a Connection observing
	// Closed events. It blocks until the session handshake completes or
	// ctx is cancelled.
	OpenConnection(ctx context.Context, endpoint Endpoint) (TransportConnection, error)
}

// TransportConnection is a single open session over one endpoint.
type TransportConnection interface {
	// OpenSenderLink opens a link targeting address (or address::queue
	// when queue is non-empty) advertising capabilities, with a fresh
	// link name.
	OpenSenderLink(ctx context.Context, address, queue string, capabilities LinkCapabilities, linkName string) (SenderLink, error)
	// OpenReceiverLink opens a link sourced from address (or
	// address::queue) advertising capabilities, granting initial credit.
	OpenReceiverLink(ctx context.Context, address, queue string, capabilities LinkCapabilities, linkName string, credit int) (ReceiverLink, error)
	// Closed fires at most once, when the session closes for any reason.
	Closed() <-chan ConnectionClosedEvent
	// IsOpened reports whether this session is still live.
	IsOpened() bool
	// Close tears the session down from the local side.
	Close() error
}

// ConnectionClosedEvent describes why a session closed.
type ConnectionClosedEvent struct {
	ClosedByPeer bool
	Err          error
}

// SenderLink is a uni-directional link bound to a target address.
type SenderLink interface {
	// Send transmits message and resolves with its settlement, or an
	// error if the link closes before settlement arrives.
	Send(ctx context.Context, tag uint64, message *Message) (Disposition, error)
	// Closed fires at most once, when this link closes, whether the remote
	// closes it or Close is called.
	Closed() <-chan error
	// Close tears the link down from the local side.
	Close(cause error) error
}

// ReceiverLink is a uni-directional link bound to a source address.
type ReceiverLink interface {
	// Deliveries is the stream of inbound messages the broker pushes on
	// this link as credit allows.
	Deliveries() <-chan Delivery
	// Accept settles a delivery as accepted.
	Accept(tag uint64) error
	// Reject settles a delivery as rejected, optionally with cause.
	Reject(tag uint64, cause error) error
	// AddCredit grants n additional messages of flow.
	AddCredit(n int) error
	// Closed fires at most once, when this link closes, whether the remote
	// closes it or Close is called.
	Closed() <-chan error
	// Close tears the link down from the local side.
	Close(cause error) error
}
