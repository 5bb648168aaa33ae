// Package review queues validated submissions that need a human reviewer.
//
// A submission whose validation result carries any warning must be
// acknowledged before it is accepted. Publishers put those submissions on a
// queue; clean submissions are not published.
package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/segmentio/kafka-go"

	"github.com/rshade/esgledger/internal/logging"
	"github.com/rshade/esgledger/internal/quality"
)

// ErrNoBrokers indicates a Kafka publisher configured without brokers.
var ErrNoBrokers = errors.New("at least one kafka broker is required")

// Submission is a validated activity value awaiting acceptance.
type Submission struct {
	ID            string          `json:"id"`
	SourceID      string          `json:"source_id"`
	Period        string          `json:"period"`
	ActivityValue float64         `json:"activity_value"`
	Unit          string          `json:"unit"`
	Result        *quality.Result `json:"result"`
	QualityScore  int             `json:"quality_score"`
	SubmittedAt   time.Time       `json:"submitted_at"`
}

// NewSubmission builds a submission for a validated value.
func NewSubmission(sourceID, period string, value float64, unit string, res *quality.Result, now time.Time) *Submission {
	return &Submission{
		ID:            ulid.Make().String(),
		SourceID:      sourceID,
		Period:        period,
		ActivityValue: value,
		Unit:          unit,
		Result:        res,
		QualityScore:  quality.Score(res),
		SubmittedAt:   now.UTC(),
	}
}

// NeedsReview reports whether the submission carries any warning.
func (s *Submission) NeedsReview() bool {
	return s != nil && s.Result != nil && len(s.Result.Warnings) > 0
}

// Publisher queues submissions for review. Publish reports whether the
// submission was queued.
type Publisher interface {
	Publish(ctx context.Context, sub *Submission) (bool, error)
	Close() error
}

// NopPublisher drops every submission.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, *Submission) (bool, error) { return false, nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }

// messageWriter is the subset of *kafka.Writer used by KafkaPublisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes submissions to a Kafka topic keyed by source id, so
// one source's submissions stay ordered on a single partition.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaPublisher returns a synchronous publisher for topic.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		topic: topic,
	}, nil
}

// Publish implements Publisher. Submissions without warnings are skipped.
func (p *KafkaPublisher) Publish(ctx context.Context, sub *Submission) (bool, error) {
	if !sub.NeedsReview() {
		return false, nil
	}

	value, err := json.Marshal(sub)
	if err != nil {
		return false, fmt.Errorf("failed to marshal submission: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(sub.SourceID),
		Value: value,
		Time:  sub.SubmittedAt,
	}
	if err = p.writer.WriteMessages(ctx, msg); err != nil {
		return false, fmt.Errorf("failed to write message: %w", err)
	}

	log := logging.FromContext(ctx)
	log.Info().
		Str("component", "review").
		Str("operation", "publish").
		Str("topic", p.topic).
		Str("source_id", sub.SourceID).
		Str("period", sub.Period).
		Int("warnings", len(sub.Result.Warnings)).
		Msg("submission queued for review")
	return true, nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
