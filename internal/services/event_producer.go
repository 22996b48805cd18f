package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"wconnect-service/internal/models"

	"github.com/IBM/sarama"
)

// EventProducer publishes domain events for downstream consumers (the
// notification pipeline). Production failures never fail the originating
// durable write; the message service logs and moves on.
type EventProducer interface {
	MessageCreated(ctx context.Context, msg *models.MessageResponse) error
	Close() error
}

type messageCreatedEvent struct {
	Type      string                  `json:"type"`
	Message   *models.MessageResponse `json:"message"`
	Timestamp int64                   `json:"timestamp"`
}

type kafkaEventProducer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaEventProducer connects a synchronous producer. Messages are keyed
// by conversation id so one conversation's events stay on one partition.
func NewKafkaEventProducer(brokers []string, topic string) (EventProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Version = sarama.V2_0_0_0
	config.ClientID = "wconnect-service"

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return &kafkaEventProducer{producer: producer, topic: topic}, nil
}

func (p *kafkaEventProducer) MessageCreated(ctx context.Context, msg *models.MessageResponse) error {
	event := messageCreatedEvent{
		Type:      "message.created",
		Message:   msg,
		Timestamp: time.Now().Unix(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(uint64(msg.ConversationID), 10)),
		Value: sarama.ByteEncoder(payload),
	})
	return err
}

func (p *kafkaEventProducer) Close() error {
	return p.producer.Close()
}

type nopEventProducer struct{}

// NewNopEventProducer is used when no Kafka brokers are configured.
func NewNopEventProducer() EventProducer {
	return nopEventProducer{}
}

func (nopEventProducer) MessageCreated(context.Context, *models.MessageResponse) error { return nil }
func (nopEventProducer) Close() error                                                  { return nil }
