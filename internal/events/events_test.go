package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"sala/config"
	"sala/infras/kafka"
	kafkaMocks "sala/infras/kafka/mocks"
	"sala/internal/events"
)

type publisherFixture struct {
	producer *kafkaMocks.MockProducer
	config   *config.Config
}

func newPublisherFixture(t *testing.T) *publisherFixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.External.Kafka.Enable = true
	cfg.External.Kafka.Topic = "sala.reservations"

	return &publisherFixture{
		producer: kafkaMocks.NewMockProducer(ctrl),
		config:   cfg,
	}
}

func TestPublisher_PublishReservationEvent(t *testing.T) {
	t.Run("sends the event to the configured topic", func(t *testing.T) {
		f := newPublisherFixture(t)

		sent := make(chan kafka.Message, 1)

		f.producer.EXPECT().
			SendMessages(gomock.Any(), "sala.reservations", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, messages ...kafka.Message) error {
				require.Len(t, messages, 1)
				sent <- messages[0]

				return nil
			})

		publisher := events.NewPublisher(f.config, f.producer)
		publisher.PublishReservationEvent(context.Background(), events.ReservationEvent{
			Type:          events.TypeReservationCreated,
			ReservationID: "res-1",
			SchedID:       "sched-1",
			RoomID:        "room-1",
			UserID:        "user-1",
			Date:          "2026-03-10",
			Status:        "waiting",
		})

		select {
		case message := <-sent:
			assert.Equal(t, "res-1", message.Key)

			event, ok := message.Value.(events.ReservationEvent)
			require.True(t, ok)
			assert.Equal(t, events.TypeReservationCreated, event.Type)
			assert.False(t, event.OccurredAt.IsZero())
		case <-time.After(2 * time.Second):
			t.Fatal("event was not published")
		}
	})

	t.Run("does nothing when kafka is disabled", func(t *testing.T) {
		f := newPublisherFixture(t)
		f.config.External.Kafka.Enable = false

		publisher := events.NewPublisher(f.config, f.producer)
		publisher.PublishReservationEvent(context.Background(), events.ReservationEvent{
			Type:          events.TypeReservationCancelled,
			ReservationID: "res-2",
		})
	})

	t.Run("swallows producer errors", func(t *testing.T) {
		f := newPublisherFixture(t)

		attempted := make(chan struct{}, 1)

		f.producer.EXPECT().
			SendMessages(gomock.Any(), "sala.reservations", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, _ ...kafka.Message) error {
				attempted <- struct{}{}

				return errors.New("broker unavailable")
			})

		publisher := events.NewPublisher(f.config, f.producer)
		publisher.PublishReservationEvent(context.Background(), events.ReservationEvent{
			Type:          events.TypeReservationDenied,
			ReservationID: "res-3",
		})

		select {
		case <-attempted:
		case <-time.After(2 * time.Second):
			t.Fatal("producer was never invoked")
		}
	})
}
