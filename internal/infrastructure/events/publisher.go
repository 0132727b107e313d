package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	apptrade "github.com/barterhub/barterhub/internal/application/trade"
)

// KafkaPublisher writes offer lifecycle events to a Kafka topic. When
// constructed without brokers it is disabled and drops events silently.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

// NewKafkaPublisher creates a publisher. An empty broker list disables
// publishing.
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) *KafkaPublisher {
	p := &KafkaPublisher{
		logger: logger.With().Str("component", "kafka_publisher").Logger(),
	}
	if len(brokers) == 0 {
		return p
	}
	p.writer = &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return p
}

// PublishOfferEvent emits one event. Failures are logged, never returned;
// the transaction the event describes has already committed.
func (p *KafkaPublisher) PublishOfferEvent(ctx context.Context, ev apptrade.OfferEvent) {
	if p.writer == nil {
		return
	}
	value, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error().Err(err).Str("offer_id", ev.OfferID.String()).Msg("marshal offer event")
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.OfferID.String()),
		Value: value,
		Time:  time.Now(),
	}); err != nil {
		p.logger.Error().Err(err).Str("offer_id", ev.OfferID.String()).Msg("publish offer event")
	}
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
