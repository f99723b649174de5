package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/insurance-lead-desk/internal/model"
	"github.com/iliyamo/insurance-lead-desk/internal/queue"
)

// LeadPublisher publishes lead events to RabbitMQ.  Publishing is
// best-effort: failures are logged and never reach the API caller.
type LeadPublisher struct {
	URL     string
	Log     *slog.Logger
	Timeout time.Duration
}

func NewLeadPublisher(url string, log *slog.Logger) *LeadPublisher {
	return &LeadPublisher{URL: url, Log: log, Timeout: 5 * time.Second}
}

// LeadCreated publishes the event in the background.
func (p *LeadPublisher) LeadCreated(lead model.CreatedLead) {
	ev := queue.NewLeadCreatedEvent(lead)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
		defer cancel()
		if err := p.Publish(ctx, ev); err != nil {
			p.Log.Warn("lead event not published",
				slog.String("lead_id", ev.LeadID),
				slog.String("error", err.Error()))
		}
	}()
}

// Publish sends one event to the lead.created queue as a persistent message.
func (p *LeadPublisher) Publish(ctx context.Context, ev queue.LeadCreatedEvent) error {
	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(p.Timeout)})
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queue.LeadCreatedQueue, // name
		true,                   // durable
		false,                  // autoDelete
		false,                  // exclusive
		false,                  // noWait
		nil,                    // args
	); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx,
		"",                     // default exchange
		queue.LeadCreatedQueue, // routing key = queue name
		false,                  // mandatory
		false,                  // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}
