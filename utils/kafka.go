package utils

import (
	"context"
	"log"

	"github.com/arvindh25/college-event-backend/config"
	"github.com/segmentio/kafka-go"
)

var attendanceWriter *kafka.Writer

// InitKafka sets up the writer for the attendance topic. The attendance
// marker publishes here post-commit; the notification consumer fans the
// messages out to in-app and push channels.
func InitKafka(cfg *config.Config) {
	attendanceWriter = &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaAttendanceTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	log.Println("✅ Kafka writer initialized for topic:", cfg.KafkaAttendanceTopic)
}

// PublishAttendanceEvent writes one message to the attendance topic.
// No-op when Kafka was never initialized (local dev without a broker).
func PublishAttendanceEvent(ctx context.Context, key string, payload []byte) error {
	if attendanceWriter == nil {
		return nil
	}
	return attendanceWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
}

// NewAttendanceReader builds a consumer-group reader for the attendance topic.
func NewAttendanceReader(cfg *config.Config, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaAttendanceTopic,
		GroupID: groupID,
	})
}
