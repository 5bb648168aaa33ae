package review

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/esgledger/internal/quality"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func warned() *quality.Result {
	return &quality.Result{
		IsValid:  true,
		Severity: quality.SeverityWarning,
		Warnings: []quality.Warning{{
			Type:     quality.WarningAnomalyHigh,
			Message:  "Value is 40.0% higher than the historical average of 100.00 kWh",
			Severity: quality.SeverityWarning,
		}},
	}
}

func TestNewSubmission(t *testing.T) {
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	sub := NewSubmission("meter-1", "January", 140, "kWh", warned(), now)

	assert.Len(t, sub.ID, 26)
	assert.Equal(t, 85, sub.QualityScore)
	assert.Equal(t, time.UTC, sub.SubmittedAt.Location())
	assert.True(t, sub.NeedsReview())

	clean := NewSubmission("meter-1", "January", 100, "kWh", &quality.Result{IsValid: true}, now)
	assert.False(t, clean.NeedsReview())
	assert.Equal(t, 100, clean.QualityScore)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		result     *quality.Result
		wantQueued bool
	}{
		{"warnings are queued", warned(), true},
		{"clean result skipped", &quality.Result{IsValid: true, Severity: quality.SeverityInfo}, false},
		{"nil result skipped", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &fakeWriter{}
			p := &KafkaPublisher{writer: w, topic: "esg.review"}

			queued, err := p.Publish(ctx, NewSubmission("meter-1", "January", 140, "kWh", tt.result, now))
			require.NoError(t, err)
			assert.Equal(t, tt.wantQueued, queued)

			if !tt.wantQueued {
				assert.Empty(t, w.msgs)
				return
			}
			require.Len(t, w.msgs, 1)
			assert.Equal(t, "meter-1", string(w.msgs[0].Key))

			var got Submission
			require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
			assert.Equal(t, "January", got.Period)
			assert.Equal(t, quality.WarningAnomalyHigh, got.Result.Warnings[0].Type)
		})
	}
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := &KafkaPublisher{writer: w}

	queued, err := p.Publish(context.Background(), NewSubmission("m", "p", 1, "kWh", warned(), time.Now()))
	require.Error(t, err)
	assert.False(t, queued)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewKafkaPublisher(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "esg.review")
	require.ErrorIs(t, err, ErrNoBrokers)

	p, err := NewKafkaPublisher([]string{"localhost:9092"}, "esg.review")
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	queued, err := p.Publish(context.Background(), NewSubmission("m", "p", 1, "kWh", warned(), time.Now()))
	require.NoError(t, err)
	assert.False(t, queued)
	assert.NoError(t, p.Close())
}
