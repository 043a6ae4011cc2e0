// Package queue_publisher publishes domain events to RabbitMQ.  Errors
// are logged and returned so callers can ignore failures without
// interrupting the main request flow.
package queue_publisher

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    log "github.com/sirupsen/logrus"

    "github.com/velezhnev/tourbook/internal/model"
    "github.com/velezhnev/tourbook/internal/queue"
)

const createdQueueName = "booking.created"

// Publisher emits booking events over AMQP.  A fresh connection is
// dialed per publish; events are rare enough that connection reuse is
// not worth the reconnect bookkeeping.
type Publisher struct {
    URL string
}

// NewPublisher returns a Publisher targeting the given broker URL.
func NewPublisher(url string) *Publisher { return &Publisher{URL: url} }

// PublishBookingCreated publishes a BookingCreatedEvent to the
// booking.created queue.  The queue is declared durable and messages are
// marked persistent so they survive broker restarts.  The function never
// panics; any error is logged and returned so the caller can choose to
// ignore it.
func (p *Publisher) PublishBookingCreated(ctx context.Context, b *model.Booking) error {
    conn, err := amqp.Dial(p.URL)
    if err != nil {
        log.Warnf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Warnf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(createdQueueName, true, false, false, false, nil); err != nil {
        log.Warnf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    event := queue.BookingCreatedEvent{
        BookingGUID:   b.GUID,
        ServiceGUID:   b.ServiceGUID,
        UserGUID:      b.UserGUID,
        NumberPersons: b.Headcount(),
        Status:        string(b.Status),
        CreatedBy:     b.UserCreated,
        CreatedAt:     b.CreatedAt.UTC().Format(time.RFC3339),
    }
    body, err := json.Marshal(event)
    if err != nil {
        log.Warnf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", createdQueueName, false, false, pub); err != nil {
        log.Warnf("rabbitmq: publish failed: %v", err)
        return err
    }
    return nil
}
