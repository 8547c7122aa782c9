package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/coachstats/internal/bodystats/adaptation"
	"github.com/2beens/coachstats/internal/telemetry/metrics"
	"github.com/2beens/coachstats/internal/telemetry/tracing"
)

const (
	EventTypeWorkoutRegeneration = "workout.regeneration.requested"
	DefaultWorkoutTopic          = "coachstats.workout-regeneration"
)

// WorkoutRegenerationEvent asks the workout generation service to rebuild the
// program of a subject.
type WorkoutRegenerationEvent struct {
	EventID             string              `json:"eventId"`
	EventType           string              `json:"eventType"`
	SubjectID           string              `json:"subjectId"`
	RecommendationID    string              `json:"recommendationId"`
	Priority            adaptation.Priority `json:"priority"`
	Reason              string              `json:"reason"`
	Summary             string              `json:"summary"`
	Recommendations     []string            `json:"recommendations"`
	MuscleGroupsToFocus []string            `json:"muscleGroupsToFocus"`
	GeneratedAt         time.Time           `json:"generatedAt"`
}

func NewWorkoutRegenerationEvent(rec *adaptation.Recommendation) WorkoutRegenerationEvent {
	return WorkoutRegenerationEvent{
		EventID:             uuid.NewString(),
		EventType:           EventTypeWorkoutRegeneration,
		SubjectID:           rec.SubjectID,
		RecommendationID:    rec.ID,
		Priority:            rec.AdaptationPriority,
		Reason:              rec.AdaptationReason,
		Summary:             rec.Summary,
		Recommendations:     rec.Recommendations,
		MuscleGroupsToFocus: rec.MuscleGroupsToFocus,
		GeneratedAt:         rec.GeneratedAt,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error
}

// Publisher hands recommendations that require a program change to the
// workout generation service.
type Publisher struct {
	producer       messageWriter
	topic          string
	metricsManager *metrics.Manager
}

func NewPublisher(producer messageWriter, topic string, metricsManager *metrics.Manager) *Publisher {
	if topic == "" {
		topic = DefaultWorkoutTopic
	}
	return &Publisher{
		producer:       producer,
		topic:          topic,
		metricsManager: metricsManager,
	}
}

// Publish writes a single regeneration event keyed by the subject id, so
// the events of one subject stay ordered.
func (p *Publisher) Publish(ctx context.Context, rec *adaptation.Recommendation) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "publisher.analysis.publish")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
		status := "ok"
		if err != nil {
			status = "failed"
		}
		p.metricsManager.CounterRecommendationsPublished.WithLabelValues(status).Inc()
	}()
	span.SetAttributes(attribute.String("subject", rec.SubjectID))
	span.SetAttributes(attribute.String("topic", p.topic))

	event := NewWorkoutRegenerationEvent(rec)
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal regeneration event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(rec.SubjectID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(EventTypeWorkoutRegeneration)},
			{Key: "event-id", Value: []byte(event.EventID)},
		},
		Time: rec.GeneratedAt,
	}
	if err := p.producer.WriteMessages(ctx, p.topic, msg); err != nil {
		return fmt.Errorf("write to [%s]: %w", p.topic, err)
	}

	log.Debugf("regeneration event [%s] published for [%s]", event.EventID, rec.SubjectID)
	return nil
}

// KafkaProducer lazily manages one writer per topic.
type KafkaProducer struct {
	brokers []string
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

func NewKafkaProducer(brokers []string) *KafkaProducer {
	return &KafkaProducer{
		brokers: brokers,
		writers: make(map[string]*kafka.Writer),
	}
}

func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	return p.writerForTopic(topic).WriteMessages(ctx, msgs...)
}

func (p *KafkaProducer) writerForTopic(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, ok := p.writers[topic]; ok {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		Async:        false,
	}
	p.writers[topic] = writer
	return writer
}

func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, topic)
	}
	return firstErr
}

// DiscardWriter drops every message. Used when publishing is disabled.
type DiscardWriter struct{}

func (DiscardWriter) WriteMessages(_ context.Context, topic string, msgs ...kafka.Message) error {
	log.Debugf("publishing disabled, dropping %d message(s) for [%s]", len(msgs), topic)
	return nil
}
