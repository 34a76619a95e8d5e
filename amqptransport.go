package moor

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// FQQN renders the AMQP 1.0 fully-qualified-queue-name address::queue form
// used throughout link addressing. An empty queue yields the bare address.
func FQQN(address, queue string) string {
	if queue == "" {
		return address
	}
	return address + "::" + queue
}

// amqpTransport is the concrete Transport backed by
// github.com/rabbitmq/amqp091-go. The core's seam is expressed in AMQP 1.0
// vocabulary (session, sender/receiver link, FQQN); no pure-Go AMQP 1.0
// client exists to back it directly, so this adapter translates that
// vocabulary onto amqp091-go's connection/channel/exchange/queue model: a
// multicast address becomes a fanout exchange; an anycast link that names a
// queue publishes to the address's exchange with its FQQN as the routing key
// (the binding CreateQueue makes), and one that names no queue publishes to
// the default exchange with the bare address as the routing key.
type amqpTransport struct {
	amqpConfig  amqp.Config
	containerID string
}

// TransportOption configures an amqpTransport at construction time.
type TransportOption func(*amqpTransport)

// WithAMQPConfig overrides the dial-time amqp091 Config (TLS, heartbeat,
// vhost, locale).
func WithAMQPConfig(cfg amqp.Config) TransportOption {
	return func(t *amqpTransport) { t.amqpConfig = cfg }
}

// WithContainerID sets the connection Properties["container_id"] Artemis
// uses to correlate a client identity across reconnects.
func WithContainerID(id string) TransportOption {
	return func(t *amqpTransport) { t.containerID = id }
}

// NewAMQPTransport returns a Transport backed by amqp091-go.
func NewAMQPTransport(opts ...TransportOption) Transport {
	t := &amqpTransport{amqpConfig: amqp.Config{}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *amqpTransport) OpenConnection(ctx context.Context, endpoint Endpoint) (TransportConnection, error) {
	cfg := t.amqpConfig
	if cfg.Properties == nil {
		cfg.Properties = amqp.Table{}
	}
	containerID := t.containerID
	if endpoint.ContainerID != "" {
		containerID = endpoint.ContainerID
	}
	if containerID == "" {
		containerID = uuid.NewString()
	}
	cfg.Properties["container_id"] = containerID

	uri := amqp.URI{
		Scheme:   schemeOrDefault(endpoint.Scheme),
		Host:     endpoint.Host,
		Port:     endpoint.Port,
		Username: endpoint.User,
		Password: endpoint.Password,
		Vhost:    "/",
	}

	type dialResult struct {
		conn *amqp.Connection
		err  error
	}
	resultCh := make(chan dialResult, 1)
	go func() {
		conn, err := amqp.DialConfig(uri.String(), cfg)
		resultCh <- dialResult{conn, err}
	}()

	select {
	case <-ctx.Done():
		return nil, translateError(ctx.Err())
	case r := <-resultCh:
		if r.err != nil {
			return nil, translateError(r.err)
		}
		return newAMQPConnection(r.conn), nil
	}
}

func schemeOrDefault(scheme string) string {
	if scheme == "" {
		return "amqp"
	}
	return scheme
}

// amqpConnection wraps a single amqp091 *Connection, standing in for an
// AMQP 1.0 session: amqp091-go has no session abstraction distinct from the
// connection itself, so each sender/receiver link gets its own channel,
// amqp091's nearest analogue to a per-link multiplexed context.
type amqpConnection struct {
	conn   *amqp.Connection
	closed chan ConnectionClosedEvent
	once   sync.Once

	topoMu    sync.Mutex
	addresses map[string]RoutingType
	queues    map[string]QueueConfig
}

func newAMQPConnection(conn *amqp.Connection) *amqpConnection {
	c := &amqpConnection{
		conn:      conn,
		closed:    make(chan ConnectionClosedEvent, 1),
		addresses: make(map[string]RoutingType),
		queues:    make(map[string]QueueConfig),
	}
	notify := conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		err := <-notify
		c.once.Do(func() {
			c.closed <- ConnectionClosedEvent{ClosedByPeer: err != nil, Err: errOrNil(err)}
			close(c.closed)
		})
	}()
	return c
}

func errOrNil(err *amqp.Error) error {
	if err == nil {
		return nil
	}
	return err
}

func (c *amqpConnection) Closed() <-chan ConnectionClosedEvent { return c.closed }

func (c *amqpConnection) IsOpened() bool { return !c.conn.IsClosed() }

func (c *amqpConnection) Close() error { return c.conn.Close() }

func (c *amqpConnection) OpenSenderLink(ctx context.Context, address, queue string, capabilities LinkCapabilities, linkName string) (SenderLink, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, translateError(err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		return nil, translateError(err)
	}

	exchange := ""
	routingKey := FQQN(address, queue)
	if capabilities.Multicast {
		exchange = address
		if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
			_ = ch.Close()
			return nil, translateError(err)
		}
		routingKey = ""
	} else if queue != "" {
		// CreateQueue binds the queue to the address's exchange under its
		// FQQN, so publish there rather than to the default exchange.
		exchange = address
	}

	confirms := ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	closed := make(chan error, 1)
	notifyClose := ch.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		err := <-notifyClose
		closed <- errOrNil(err)
		close(closed)
	}()

	return &amqpSenderLink{
		channel:    ch,
		exchange:   exchange,
		routingKey: routingKey,
		linkName:   linkName,
		confirms:   confirms,
		closed:     closed,
	}, nil
}

func (c *amqpConnection) OpenReceiverLink(ctx context.Context, address, queue string, capabilities LinkCapabilities, linkName string, credit int) (ReceiverLink, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, translateError(err)
	}
	if err := ch.Qos(credit, 0, false); err != nil {
		_ = ch.Close()
		return nil, translateError(err)
	}

	queueName := queue
	if capabilities.Multicast {
		if err := ch.ExchangeDeclare(address, "fanout", true, false, false, false, nil); err != nil {
			_ = ch.Close()
			return nil, translateError(err)
		}
		q, err := ch.QueueDeclare("", false, true, true, false, nil)
		if err != nil {
			_ = ch.Close()
			return nil, translateError(err)
		}
		if err := ch.QueueBind(q.Name, "", address, false, nil); err != nil {
			_ = ch.Close()
			return nil, translateError(err)
		}
		queueName = q.Name
	} else if queueName == "" {
		queueName = address
	}

	rawDeliveries, err := ch.Consume(queueName, linkName, false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, translateError(err)
	}

	deliveries := make(chan Delivery, credit)
	go func() {
		for d := range rawDeliveries {
			kindHeader, _ := d.Headers[bodyKindHeader].(string)
			msg, err := decodeMessageBody(kindHeader, d.Body)
			if err != nil {
				msg, _ = NewMessage(d.Body)
			}
			deliveries <- Delivery{Tag: d.DeliveryTag, Message: msg}
		}
		close(deliveries)
	}()

	closed := make(chan error, 1)
	notifyClose := ch.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		err := <-notifyClose
		closed <- errOrNil(err)
		close(closed)
	}()

	return &amqpReceiverLink{
		channel:    ch,
		deliveries: deliveries,
		closed:     closed,
	}, nil
}

// amqpSenderLink is a SenderLink backed by one confirm-mode amqp091
// channel, awaiting the channel's own NotifyPublish confirmation per send.
type amqpSenderLink struct {
	channel    *amqp.Channel
	exchange   string
	routingKey string
	linkName   string
	confirms   chan amqp.Confirmation
	closed     chan error
}

func (l *amqpSenderLink) Send(ctx context.Context, tag uint64, message *Message) (Disposition, error) {
	body, kindHeader, err := encodeMessageBody(message)
	if err != nil {
		return DispositionRejected, fmtErrorf(KindConfiguration, "encode message body: %v", err)
	}

	publishing := amqp.Publishing{
		Body:    body,
		Headers: amqp.Table{bodyKindHeader: kindHeader},
	}
	if message.Priority != nil {
		publishing.Priority = *message.Priority
	}
	if message.TTL != nil {
		publishing.Expiration = fmt.Sprintf("%d", message.TTL.Milliseconds())
	}
	for k, v := range message.Properties {
		publishing.Headers[k] = v
	}

	if err := l.channel.PublishWithContext(ctx, l.exchange, l.routingKey, false, false, publishing); err != nil {
		return DispositionRejected, translateError(err)
	}

	select {
	case <-ctx.Done():
		return DispositionReleased, translateError(ctx.Err())
	case confirm, ok := <-l.confirms:
		if !ok {
			return DispositionReleased, newError(KindLinkDetached, "sender link closed before settlement", nil)
		}
		if confirm.Ack {
			return DispositionAccepted, nil
		}
		return DispositionRejected, newError(KindLinkDetached, "broker nacked delivery", nil)
	case err := <-l.closed:
		return DispositionReleased, newError(KindLinkDetached, "sender link closed before settlement", err)
	}
}

func (l *amqpSenderLink) Closed() <-chan error { return l.closed }

func (l *amqpSenderLink) Close(cause error) error {
	return l.channel.Close()
}

// amqpReceiverLink is a ReceiverLink backed by one amqp091 channel in
// manual-ack mode.
type amqpReceiverLink struct {
	channel    *amqp.Channel
	deliveries chan Delivery
	closed     chan error
}

func (l *amqpReceiverLink) Deliveries() <-chan Delivery { return l.deliveries }

func (l *amqpReceiverLink) Accept(tag uint64) error {
	return translateNilable(l.channel.Ack(tag, false))
}

func (l *amqpReceiverLink) Reject(tag uint64, cause error) error {
	return translateNilable(l.channel.Reject(tag, true))
}

func (l *amqpReceiverLink) AddCredit(n int) error {
	return translateNilable(l.channel.Qos(n, 0, false))
}

func (l *amqpReceiverLink) Closed() <-chan error { return l.closed }

func (l *amqpReceiverLink) Close(cause error) error {
	return l.channel.Close()
}

func translateNilable(err error) error {
	if err == nil {
		return nil
	}
	return translateError(err)
}

// CreateAddress declares an exchange standing in for an Artemis address:
// a fanout exchange for multicast, a direct exchange for anycast. A
// re-declare with a routing type that conflicts with one this connection
// already created fails with KindTopologyConflict before any broker
// round-trip; a conflict with an exchange the broker already holds surfaces
// through amqp091's own PRECONDITION_FAILED channel error, translated to
// KindTopologyConflict by translateAMQPError.
func (c *amqpConnection) CreateAddress(ctx context.Context, name string, routingType RoutingType) error {
	c.topoMu.Lock()
	if existing, ok := c.addresses[name]; ok && existing != routingType {
		c.topoMu.Unlock()
		return newError(KindTopologyConflict, fmt.Sprintf("address %q already exists with a different routing type", name), nil)
	}
	c.topoMu.Unlock()

	ch, err := c.conn.Channel()
	if err != nil {
		return translateError(err)
	}
	defer ch.Close()

	kind := "direct"
	if routingType == RoutingTypeMulticast {
		kind = "fanout"
	}
	if err := ch.ExchangeDeclare(name, kind, true, false, false, false, nil); err != nil {
		return translateError(err)
	}

	c.topoMu.Lock()
	c.addresses[name] = routingType
	c.topoMu.Unlock()
	return nil
}

// queueArgs maps the Artemis-flavored config fields that amqp091 queues
// have no native equivalent for onto custom x-args. The broker stores and
// reports these as queue metadata without enforcing them itself:
// x-single-active-consumer is RabbitMQ's nearest analogue to group-based
// consumer rebalancing (both designate one active consumer at a time), but
// group bucket count and a hard consumer cap have no broker-side behavior
// to attach to, so they ride along as inert annotations.
func queueArgs(config QueueConfig) amqp.Table {
	args := amqp.Table{}
	if config.GroupRebalance {
		args["x-single-active-consumer"] = true
		args["x-group-buckets"] = int32(config.GroupBuckets)
	}
	if config.MaxConsumers > 0 {
		args["x-max-consumers"] = int32(config.MaxConsumers)
	}
	if len(args) == 0 {
		return nil
	}
	return args
}

// CreateQueue declares a queue per config. When AutoCreateAddress is false,
// the address must already be known to this connection, otherwise the call
// fails with KindTopologyConflict before any broker round-trip.
func (c *amqpConnection) CreateQueue(ctx context.Context, config QueueConfig) error {
	c.topoMu.Lock()
	_, addressExists := c.addresses[config.Address]
	c.topoMu.Unlock()

	if !config.AutoCreateAddress && config.Address != "" && !addressExists {
		return newError(KindTopologyConflict, fmt.Sprintf("address %q does not exist", config.Address), nil)
	}
	if config.AutoCreateAddress && config.Address != "" && !addressExists {
		if err := c.CreateAddress(ctx, config.Address, config.RoutingType); err != nil {
			return err
		}
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return translateError(err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(config.Name, config.Durable, config.PurgeOnNoConsumers, config.Exclusive, false, queueArgs(config))
	if err != nil {
		return translateError(err)
	}
	if config.Address != "" {
		if err := ch.QueueBind(q.Name, FQQN(config.Address, config.Name), config.Address, false, nil); err != nil {
			return translateError(err)
		}
	}

	c.topoMu.Lock()
	c.queues[config.Name] = config
	c.topoMu.Unlock()
	return nil
}

// GetAddressNames lists addresses this connection has created or observed.
// Broker-wide topology introspection is outside AMQP itself (it belongs to
// a management plugin, the external collaborator this interface stands in
// for), so this reports the local view built up via CreateAddress/
// CreateQueue rather than a true broker-wide listing.
func (c *amqpConnection) GetAddressNames(ctx context.Context) ([]string, error) {
	c.topoMu.Lock()
	defer c.topoMu.Unlock()
	names := make([]string, 0, len(c.addresses))
	for name := range c.addresses {
		names = append(names, name)
	}
	return names, nil
}

// GetQueueNames lists queues this connection has created or observed, with
// the same local-view caveat as GetAddressNames.
func (c *amqpConnection) GetQueueNames(ctx context.Context) ([]string, error) {
	c.topoMu.Lock()
	defer c.topoMu.Unlock()
	names := make([]string, 0, len(c.queues))
	for name := range c.queues {
		names = append(names, name)
	}
	return names, nil
}
