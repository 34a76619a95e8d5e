package moor

// Functional options for building ProducerConfig, ConsumerConfig, and
// QueueConfig values, in the same per-field With* shape as the rest of this
// package's construction surface.

// ProducerOption configures a ProducerConfig built by NewProducerConfig.
type ProducerOption func(*ProducerConfig)

// WithProducerQueue sets the FQQN queue component of a producer's target
// address.
func WithProducerQueue(queue string) ProducerOption {
	return func(c *ProducerConfig) { c.Queue = queue }
}

// WithProducerRoutingType sets the routing-type capability a producer's
// link advertises.
func WithProducerRoutingType(routingType RoutingType) ProducerOption {
	return func(c *ProducerConfig) { c.RoutingType = routingType }
}

// WithSendMode sets how SendAsync behaves while the producer's link is
// Suspended or Recovering.
func WithSendMode(mode SendMode) ProducerOption {
	return func(c *ProducerConfig) { c.SendMode = mode }
}

// WithDefaultTTL sets the default message time-to-live, in milliseconds,
// applied to sent messages that don't set their own.
func WithDefaultTTL(ttlMillis uint32) ProducerOption {
	return func(c *ProducerConfig) { c.DefaultTTL = &ttlMillis }
}

// WithDefaultPriority sets the default message priority applied to sent
// messages that don't set their own.
func WithDefaultPriority(priority uint8) ProducerOption {
	return func(c *ProducerConfig) { c.DefaultPriority = &priority }
}

// NewProducerConfig builds a ProducerConfig targeting address, with
// RoutingTypeAnycast and ModeAwaitCredit as defaults.
func NewProducerConfig(address string, opts ...ProducerOption) ProducerConfig {
	c := ProducerConfig{Address: address, RoutingType: RoutingTypeAnycast, SendMode: ModeAwaitCredit}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// ConsumerOption configures a ConsumerConfig built by NewConsumerConfig.
type ConsumerOption func(*ConsumerConfig)

// WithConsumerQueue sets the FQQN queue component of a consumer's source
// address.
func WithConsumerQueue(queue string) ConsumerOption {
	return func(c *ConsumerConfig) { c.Queue = queue }
}

// WithConsumerRoutingType sets the routing-type capability a consumer's
// link advertises.
func WithConsumerRoutingType(routingType RoutingType) ConsumerOption {
	return func(c *ConsumerConfig) { c.RoutingType = routingType }
}

// WithPrefetchCount sets how many unsettled deliveries a consumer's link
// may hold at once.
func WithPrefetchCount(n int) ConsumerOption {
	return func(c *ConsumerConfig) { c.PrefetchCount = n }
}

// WithCreditRefillMode sets whether AcceptAsync/RejectAsync grant one
// credit back per settled message (RefillPerMessage) or none (RefillManual).
func WithCreditRefillMode(mode CreditRefillMode) ConsumerOption {
	return func(c *ConsumerConfig) { c.CreditRefillMode = mode }
}

// NewConsumerConfig builds a ConsumerConfig sourced from address, with
// RoutingTypeAnycast, a prefetch of 100, and RefillPerMessage as defaults.
func NewConsumerConfig(address string, opts ...ConsumerOption) ConsumerConfig {
	c := ConsumerConfig{Address: address, RoutingType: RoutingTypeAnycast, PrefetchCount: 100, CreditRefillMode: RefillPerMessage}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// QueueConfigOption configures a QueueConfig built by NewQueueConfig.
type QueueConfigOption func(*QueueConfig)

// WithQueueRoutingType sets the routing-type capability of the queue.
func WithQueueRoutingType(routingType RoutingType) QueueConfigOption {
	return func(c *QueueConfig) { c.RoutingType = routingType }
}

// WithQueueDurable sets whether the queue survives broker restarts.
func WithQueueDurable(durable bool) QueueConfigOption {
	return func(c *QueueConfig) { c.Durable = durable }
}

// WithQueueExclusive sets whether the queue is exclusive to the connection
// that declares it.
func WithQueueExclusive(exclusive bool) QueueConfigOption {
	return func(c *QueueConfig) { c.Exclusive = exclusive }
}

// WithGroupRebalance sets GroupRebalance and GroupBuckets. The amqp091
// transport declares such a queue with x-single-active-consumer and passes
// the bucket count as an x-group-buckets argument; no per-group rebalancing
// across buckets takes place.
func WithGroupRebalance(buckets int) QueueConfigOption {
	return func(c *QueueConfig) { c.GroupRebalance = true; c.GroupBuckets = buckets }
}

// WithMaxConsumers sets MaxConsumers; zero leaves it unset. The amqp091
// transport passes a non-zero value as an x-max-consumers queue argument
// and does not itself limit how many consumers attach.
func WithMaxConsumers(max int) QueueConfigOption {
	return func(c *QueueConfig) { c.MaxConsumers = max }
}

// WithAutoCreateAddress allows CreateQueue to create the backing address
// implicitly when it doesn't already exist.
func WithAutoCreateAddress(auto bool) QueueConfigOption {
	return func(c *QueueConfig) { c.AutoCreateAddress = auto }
}

// WithPurgeOnNoConsumers marks the queue for deletion once its last
// consumer detaches.
func WithPurgeOnNoConsumers(purge bool) QueueConfigOption {
	return func(c *QueueConfig) { c.PurgeOnNoConsumers = purge }
}

// NewQueueConfig builds a QueueConfig named name against address, with
// RoutingTypeAnycast and Durable as defaults.
func NewQueueConfig(name, address string, opts ...QueueConfigOption) QueueConfig {
	c := QueueConfig{Name: name, Address: address, RoutingType: RoutingTypeAnycast, Durable: true}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
