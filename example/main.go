// Command example wires a moor Client to a local broker, declares a queue,
// and runs a producer and a consumer against it until interrupted.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/brigantine/moor"
)

const sendInterval = 500 * time.Millisecond

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	endpoint := moor.Endpoint{Scheme: "amqp", Host: "localhost", Port: 5672, User: "guest", Password: "guest"}
	endpoints, err := moor.NewEndpointList(endpoint)
	if err != nil {
		log.Fatalf("bad endpoint list: %v", err)
	}

	policy, err := moor.NewExponentialPolicy(500*time.Millisecond, 30*time.Second, 2.0, moor.Unbounded, true)
	if err != nil {
		log.Fatalf("bad recovery policy: %v", err)
	}

	transport := moor.NewAMQPTransport(moor.WithContainerID("moor-example"))
	client := moor.NewClient(endpoints, policy, transport)

	if err := client.Start(ctx); err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer client.Shutdown()

	queueConfig := moor.NewQueueConfig("orders.fulfillment", "orders",
		moor.WithAutoCreateAddress(true))
	if err := client.DeclareQueue(ctx, queueConfig); err != nil {
		log.Fatalf("failed to declare queue: %v", err)
	}

	consumer := client.NewConsumer(moor.NewConsumerConfig("orders",
		moor.WithConsumerQueue("orders.fulfillment"),
		moor.WithPrefetchCount(50)))
	go runConsumer(ctx, consumer)

	producer := client.NewProducer(moor.NewProducerConfig("orders",
		moor.WithProducerQueue("orders.fulfillment")))
	runProducer(ctx, producer)
}

func runProducer(ctx context.Context, producer *moor.AutoRecoveringProducer) {
	ticker := time.NewTicker(sendInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			msg, err := moor.NewMessage("order placed")
			if err != nil {
				log.Printf("failed to build message: %v", err)
				continue
			}
			if _, err := producer.SendAsync(ctx, msg); err != nil {
				log.Printf("send failed: %v", err)
			}
		}
	}
}

func runConsumer(ctx context.Context, consumer *moor.AutoRecoveringConsumer) {
	for {
		msg, err := consumer.ReceiveAsync(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("receive failed: %v", err)
			continue
		}
		log.Printf("received: %v", moor.GetBody[string](msg))
		if err := consumer.AcceptAsync(msg); err != nil {
			log.Printf("accept failed: %v", err)
		}
	}
}
