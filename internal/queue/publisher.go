package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Genocadio/citizen-engagement-backend/internal/config"
	"github.com/Genocadio/citizen-engagement-backend/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	conn    *amqp.Connection
	channel *amqp.Channel
)

// TicketEvent is the payload handed to the external notification dispatcher.
type TicketEvent struct {
	Event        string    `json:"event"` // "ticket.created", "ticket.status_changed", "ticket.response_added"
	TicketID     string    `json:"ticketId"`
	TicketNumber string    `json:"ticketNumber"`
	Category     string    `json:"category"`
	Status       string    `json:"status"`
	ActorID      string    `json:"actorId,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// Init connects to RabbitMQ. Event publication is best-effort: when AMQP is
// not configured or unreachable the service runs without it.
func Init() {
	uri := config.AppConfig.AmqpURL
	if uri == "" {
		logger.Info().Msg("AMQP_URL not set, ticket event publication disabled")
		return
	}

	c, err := amqp.Dial(uri)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to connect to RabbitMQ, ticket event publication disabled")
		return
	}

	ch, err := c.Channel()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to open RabbitMQ channel")
		c.Close()
		return
	}

	if _, err := ch.QueueDeclare(config.AppConfig.TicketEventsQueue, true, false, false, false, nil); err != nil {
		logger.Warn().Err(err).Msg("Failed to declare ticket events queue")
		ch.Close()
		c.Close()
		return
	}

	conn = c
	channel = ch
	logger.Info().Str("queue", config.AppConfig.TicketEventsQueue).Msg("Connected to RabbitMQ")
}

// Close releases the AMQP connection on shutdown.
func Close() {
	if channel != nil {
		channel.Close()
	}
	if conn != nil {
		conn.Close()
	}
}

// PublishTicketEvent pushes an event onto the durable queue. Errors are
// logged, never surfaced to the request path.
func PublishTicketEvent(ev TicketEvent) {
	if channel == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	body, err := json.Marshal(ev)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal ticket event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = channel.PublishWithContext(ctx,
		"",
		config.AppConfig.TicketEventsQueue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		})
	if err != nil {
		logger.Warn().Err(err).Str("event", ev.Event).Msg("Failed to publish ticket event")
	}
}
