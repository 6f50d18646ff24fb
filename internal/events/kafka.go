// Package events publishes checkout events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var ErrDisabled = errors.New("kafka disabled")

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(csv string) []string {
	brokers := []string{}
	for _, b := range strings.Split(csv, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// Publisher writes JSON messages to one topic. With no brokers configured
// it accepts and drops every message.
type Publisher struct {
	writer *kafka.Writer
	topic  string
	logger *zap.Logger
}

func NewPublisher(brokersCSV, topic string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Publisher{topic: topic, logger: logger}
	brokers := ParseBrokers(brokersCSV)
	if len(brokers) == 0 || topic == "" {
		return p
	}
	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
	return p
}

func (p *Publisher) Enabled() bool {
	return p != nil && p.writer != nil
}

// Publish marshals payload and writes it keyed by key.
func (p *Publisher) Publish(ctx context.Context, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if !p.Enabled() {
		p.logger.Debug("kafka disabled, dropping event", zap.String("key", key))
		return nil
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: data, Time: time.Now().UTC()})
}

func (p *Publisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.writer.Close()
}
