package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "civreg/pkg/platform/audit"
)

// DefaultTopic is the Kafka topic audit events are published to.
const DefaultTopic = "civreg.audit.events"

// kafkaPayload is the JSON structure published to the broker.
type kafkaPayload struct {
	Category   string `json:"category"`
	OccurredAt string `json:"occurred_at"`
	ActorID    string `json:"actor_id,omitempty"`
	ActorRole  string `json:"actor_role,omitempty"`
	Action     string `json:"action"`
	Subject    string `json:"subject,omitempty"`
	SubjectID  string `json:"subject_id,omitempty"`
	Decision   string `json:"decision,omitempty"`
	Reason     string `json:"reason,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	ClientIP   string `json:"client_ip,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
}

// Kafka publishes audit events to a Kafka (or Redpanda) topic.
type Kafka struct {
	client *kgo.Client
	topic  string
}

// NewKafka connects to the given seed brokers and ensures the audit topic
// exists. Pass an empty topic to use DefaultTopic.
func NewKafka(ctx context.Context, brokers []string, topic string) (*Kafka, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	// Idempotent: topic-exists errors are ignored.
	if _, err := admin.CreateTopic(ctx, 3, 1, nil, topic); err != nil && !isTopicExists(err) {
		client.Close()
		return nil, fmt.Errorf("ensure audit topic: %w", err)
	}

	return &Kafka{client: client, topic: topic}, nil
}

func isTopicExists(err error) bool {
	// kadm surfaces broker error codes in the error string; TOPIC_ALREADY_EXISTS
	// is the only acceptable failure during startup.
	return err != nil && strings.Contains(err.Error(), "TOPIC_ALREADY_EXISTS")
}

// Emit publishes the event synchronously, keyed by actor so per-actor
// ordering is preserved within a partition.
func (k *Kafka) Emit(ctx context.Context, event audit.Event) error {
	payload := kafkaPayload{
		Category:   string(event.Category),
		OccurredAt: event.Timestamp.Format(time.RFC3339Nano),
		ActorRole:  event.ActorRole,
		Action:     event.Action,
		Subject:    event.Subject,
		SubjectID:  event.SubjectID,
		Decision:   event.Decision,
		Reason:     event.Reason,
		RequestID:  event.RequestID,
		ClientIP:   event.ClientIP,
		UserAgent:  event.UserAgent,
	}
	if !event.ActorID.IsNil() {
		payload.ActorID = event.ActorID.String()
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(payload.ActorID),
		Value: value,
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes outstanding records and releases the client.
func (k *Kafka) Close() {
	k.client.Close()
}
