package moor

import (
	"context"
	"testing"
	"time"
)

func TestClient_StartConnectsAndProducerSends(t *testing.T) {
	transport := &fakeSupervisorTransport{}
	client := NewClient(newTestEndpoints(t), newTestPolicy(t), transport)

	if err := client.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error starting client: %v", err)
	}
	defer client.Shutdown()

	producer := client.NewProducer(NewProducerConfig("orders"))
	waitForState(t, producer, StateAttached)

	msg, _ := NewMessage("hello")
	if _, err := producer.SendAsync(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error sending: %v", err)
	}
}

func TestClient_ConsumerCreatedAfterStartAttachesToOpenConnection(t *testing.T) {
	transport := &fakeSupervisorTransport{}
	client := NewClient(newTestEndpoints(t), newTestPolicy(t), transport)

	if err := client.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error starting client: %v", err)
	}
	defer client.Shutdown()

	consumer := client.NewConsumer(NewConsumerConfig("orders"))
	waitForState(t, consumer, StateAttached)
}

func TestClient_DeclareQueueBeforeConnectReturnsConfigurationError(t *testing.T) {
	transport := &fakeSupervisorTransport{}
	client := NewClient(newTestEndpoints(t), newTestPolicy(t), transport)

	err := client.DeclareQueue(context.Background(), NewQueueConfig("orders.q1", "orders"))
	if err == nil {
		t.Fatal("expected an error declaring a queue before Start")
	}
}

func TestClient_ShutdownStopsSupervisorLoop(t *testing.T) {
	transport := &fakeSupervisorTransport{}
	client := NewClient(newTestEndpoints(t), newTestPolicy(t), transport)

	if err := client.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error starting client: %v", err)
	}

	done := make(chan struct{})
	go func() {
		client.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Shutdown never returned")
	}
}
