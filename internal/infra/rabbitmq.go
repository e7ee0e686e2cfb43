// README: RabbitMQ connection setup and exchange declaration.
package infra

import (
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

// RideExchange is the topic exchange ride lifecycle events are published to.
const RideExchange = "ride_topic"

func NewRabbitMQ(url string) (*amqp091.Connection, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	if err := declareExchanges(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func declareExchanges(conn *amqp091.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		RideExchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", RideExchange, err)
	}
	return nil
}
