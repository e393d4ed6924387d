package events

import (
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/Astemirdum/booking-service/booking/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=publisher.go -destination=mocks/mock.go -package=mocks

// Publisher emits reservation lifecycle events. Publishing is
// best-effort: a reservation is never failed because the broker is
// down, callers only log the error.
type Publisher interface {
	Publish(event model.ReservationEvent) error
}

type kafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *zap.Logger
}

func NewPublisher(producer sarama.SyncProducer, topic string, log *zap.Logger) *kafkaPublisher {
	return &kafkaPublisher{
		producer: producer,
		topic:    topic,
		log:      log.Named("events"),
	}
}

func (p *kafkaPublisher) Publish(event model.ReservationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.ReservationUid),
		Value: sarama.StringEncoder(data),
	}
	if _, _, err = p.producer.SendMessage(msg); err != nil {
		return err
	}
	return nil
}

// nopPublisher is used when no brokers are configured.
type nopPublisher struct{}

func NewNopPublisher() nopPublisher { return nopPublisher{} }

func (nopPublisher) Publish(model.ReservationEvent) error { return nil }
