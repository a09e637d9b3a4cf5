package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseEvent(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("IST", 19800))

	event := NewBaseEvent("lending.decision.made", "loan-123", "Loan", at)

	assert.NotEmpty(t, event.EventID())
	assert.Equal(t, "lending.decision.made", event.EventType())
	assert.Equal(t, "loan-123", event.AggregateID())
	assert.Equal(t, "Loan", event.AggregateType())
	assert.True(t, event.OccurredAt().Equal(at))
	assert.Equal(t, time.UTC, event.OccurredAt().Location())
}

func TestNewBaseEvent_UniqueIDs(t *testing.T) {
	now := time.Now()
	a := NewBaseEvent("E", "agg", "Aggregate", now)
	b := NewBaseEvent("E", "agg", "Aggregate", now)

	assert.NotEqual(t, a.EventID(), b.EventID())
}

func TestBaseEventImplementsDomainEvent(t *testing.T) {
	var _ DomainEvent = BaseEvent{}
}

func TestBaseEvent_JSONEnvelope(t *testing.T) {
	type embedding struct {
		BaseEvent
		Score float64 `json:"score"`
	}
	e := embedding{
		BaseEvent: NewBaseEvent("lending.decision.made", "loan-1", "Loan", time.Now()),
		Score:     0.72,
	}

	data, err := json.Marshal(e)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, "lending.decision.made", parsed["event_type"])
	assert.Equal(t, "loan-1", parsed["aggregate_id"])
	assert.Equal(t, "Loan", parsed["aggregate_type"])
	assert.Equal(t, 0.72, parsed["score"])
	assert.NotEmpty(t, parsed["event_id"])
}
