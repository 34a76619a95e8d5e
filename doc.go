// Package moor is an auto-recovering client for AMQP-style message brokers.
//
// A Supervisor owns the single reconnect loop: it dials an EndpointList under
// a RecoveryPolicy, then re-attaches every Producer and Consumer registered
// in a Registry before handing control back to the application. Producers
// and consumers never dial the broker themselves — they park or fail fast
// while their link is Suspended or Recovering, and resume automatically once
// the supervisor re-establishes the connection.
//
// The wire client is abstracted behind Transport so the reconnect and
// recovery logic stays independent of any one broker driver.
package moor
