package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaPublisher ships audit events to a Kafka topic as JSON records keyed by
// facility id, so all events for one facility land in one partition in order.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
}

// kafkaEvent is the wire shape; field names are part of the public contract
// with downstream consumers.
type kafkaEvent struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
	GuardID    string    `json:"guard_id,omitempty"`
	VisitorID  string    `json:"visitor_id,omitempty"`
	FacilityID string    `json:"facility_id,omitempty"`
	EventID    string    `json:"event_id,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Device     string    `json:"device,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
}

// NewKafkaPublisher connects to the brokers and ensures the topic exists.
func NewKafkaPublisher(ctx context.Context, brokers []string, topic string) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}
	return &KafkaPublisher{client: client, topic: topic}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopic(ctx, 1, -1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %q: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %q: %w", topic, resp.Err)
	}
	return nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(kafkaEvent{
		ID:         event.ID.String(),
		Action:     string(event.Action),
		OccurredAt: event.OccurredAt,
		GuardID:    stringOrEmpty(event.GuardID),
		VisitorID:  stringOrEmpty(event.VisitorID),
		FacilityID: stringOrEmpty(event.FacilityID),
		EventID:    stringOrEmpty(event.AccessEventID),
		Reason:     event.Reason,
		Device:     event.Device,
		RequestID:  event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(stringOrEmpty(event.FacilityID)),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}

func stringOrEmpty[T interface {
	IsNil() bool
	String() string
}](v T) string {
	if v.IsNil() {
		return ""
	}
	return v.String()
}
