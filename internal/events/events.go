package events

//go:generate go run go.uber.org/mock/mockgen -source=./events.go -destination=./mocks/events_mock.go -package=mocks

import (
	"context"
	"time"

	"sala/config"
	"sala/infras/kafka"

	"github.com/rs/zerolog/log"
)

const (
	TypeReservationCreated   = "reservation.created"
	TypeReservationAccepted  = "reservation.accepted"
	TypeReservationDenied    = "reservation.denied"
	TypeReservationCancelled = "reservation.cancelled"
)

// ReservationEvent is the payload published to the reservation topic on
// every lifecycle transition.
type ReservationEvent struct {
	Type          string    `json:"type"`
	ReservationID string    `json:"reservationId"`
	SchedID       string    `json:"schedId"`
	RoomID        string    `json:"roomId"`
	UserID        string    `json:"userId"`
	Date          string    `json:"date"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Publisher emits reservation lifecycle events. Publishing is best
// effort and must never fail the originating request.
type Publisher interface {
	PublishReservationEvent(ctx context.Context, event ReservationEvent)
}

type publisherImpl struct {
	config   *config.Config
	producer kafka.Producer
}

func NewPublisher(config *config.Config, producer kafka.Producer) Publisher {
	return &publisherImpl{
		config:   config,
		producer: producer,
	}
}

func (p *publisherImpl) PublishReservationEvent(ctx context.Context, event ReservationEvent) {
	if !p.config.External.Kafka.Enable {
		return
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	// Detached from the request lifecycle so a slow broker cannot delay
	// the response.
	go func(ctx context.Context) {
		message := kafka.Message{
			Key:   event.ReservationID,
			Value: event,
		}

		err := p.producer.SendMessages(ctx, p.config.External.Kafka.Topic, message)
		if err != nil {
			log.Error().
				Err(err).
				Str("type", event.Type).
				Str("reservationId", event.ReservationID).
				Msg("Failed to publish reservation event")
		}
	}(context.WithoutCancel(ctx))
}
