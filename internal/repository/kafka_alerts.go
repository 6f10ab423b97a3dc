package repository

import (
	"context"

	"VixNav/internal/domain/models"
	"VixNav/internal/domain/repository"
)

// Publisher is the subset of pkg/kafka.Producer used for alerts.
type Publisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
}

// KafkaAlertSink publishes alerts as JSON keyed by fund ticker.
type KafkaAlertSink struct {
	producer Publisher
	topic    string
}

var _ repository.AlertSink = (*KafkaAlertSink)(nil)

func NewKafkaAlertSink(producer Publisher, topic string) *KafkaAlertSink {
	return &KafkaAlertSink{producer: producer, topic: topic}
}

func (s *KafkaAlertSink) Name() string { return "kafka" }

type alertMessage struct {
	*models.Alert
	Report string `json:"report"`
}

func (s *KafkaAlertSink) Send(ctx context.Context, a *models.Alert) error {
	return s.producer.Publish(ctx, s.topic, []byte(a.Fund), alertMessage{Alert: a, Report: a.Report()})
}
