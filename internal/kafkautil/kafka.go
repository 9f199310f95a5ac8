// Package kafkautil streams the point rollup of a report to Kafka.
package kafkautil

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"

	"github.com/getsentry/perfmetrics/report"
)

// Writer is the subset of *kafka.Writer used to publish messages.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// PointMessage is the payload of one message, a point rollup row tagged with
// the session it belongs to.
type PointMessage struct {
	SessionID string `json:"session_id"`
	Timestamp int64  `json:"timestamp"`
	report.PointRow
}

// NewWriter returns an asynchronous writer for topic.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Async:        true,
		Balancer:     kafka.CRC32Balancer{},
		BatchSize:    100,
		Compression:  kafka.Lz4,
		ReadTimeout:  3 * time.Second,
		Topic:        topic,
		WriteTimeout: 3 * time.Second,
	}
}

// GenerateKafkaMessageBatch returns one message per point with samples, keyed
// by session so a session's rows share a partition.
func GenerateKafkaMessageBatch(r *report.Report) ([]kafka.Message, error) {
	messages := make([]kafka.Message, 0, len(r.Points))
	key := []byte(r.SessionID)
	for _, p := range r.Points {
		if p.Samples == 0 {
			continue
		}
		b, err := json.Marshal(PointMessage{
			SessionID: r.SessionID,
			Timestamp: r.EndedAt.Unix(),
			PointRow:  p,
		})
		if err != nil {
			return nil, err
		}
		messages = append(messages, kafka.Message{
			Key:   key,
			Value: b,
		})
	}
	return messages, nil
}

// Publish writes the point rollup of r to w.
func Publish(ctx context.Context, w Writer, r *report.Report) error {
	messages, err := GenerateKafkaMessageBatch(r)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}
	return w.WriteMessages(ctx, messages...)
}
