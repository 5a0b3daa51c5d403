package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartOrderConsumer connects to RabbitMQ, declares the order.placed
// queue and consumes it forever, appending one human-readable line per
// order to logs/orders.log.  It runs a reconnect loop with capped
// backoff and never returns under normal operation; run it in its own
// goroutine.  Malformed messages are rejected without requeue so they
// cannot wedge the queue.
func StartOrderConsumer() {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("orders-consumer: dial failed: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn); err != nil {
			log.Printf("orders-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(orderQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(orderQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body); err != nil {
			log.Printf("orders-consumer: handle message failed: %v", err)
			_ = d.Reject(false)
			continue
		}
		_ = d.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}

func handleMessage(body []byte) error {
	var ev OrderPlacedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	if err := os.MkdirAll("logs", 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join("logs", "orders.log"),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	line := fmt.Sprintf("%s order=%d user=%d lines=%d total=%.2f\n",
		time.Now().UTC().Format(time.RFC3339), ev.OrderID, ev.UserID, ev.LineCount, ev.Total)
	_, err = f.WriteString(line)
	return err
}
