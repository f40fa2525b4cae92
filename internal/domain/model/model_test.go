package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want RawNumber
	}{
		{in: `2048`, want: "2048"},
		{in: `9.99`, want: "9.99"},
		{in: `" 15 "`, want: "15"},
		{in: `"abc"`, want: "abc"},
		{in: `null`, want: ""},
	}
	for _, tt := range tests {
		var got struct {
			N RawNumber `json:"n"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"n":`+tt.in+`}`), &got), tt.in)
		assert.Equal(t, tt.want, got.N, tt.in)
	}
}

func TestRawNumber_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		A RawNumber `json:"a"`
		B RawNumber `json:"b"`
	}{A: "12", B: ""})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"12","b":null}`, string(out))
}

func TestNewSyncSummary(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	results := []SyncResult{
		{SourceID: "a", Outcome: OutcomeCreated, DestinationID: 1},
		{SourceID: "b", Outcome: OutcomeUpdated, DestinationID: 2},
		{SourceID: "c", Outcome: OutcomeFailed, Error: "boom"},
		{SourceID: "d", Outcome: OutcomeCreated, DestinationID: 3},
	}

	summary := NewSyncSummary(uuid.New(), start, start.Add(90*time.Second), results)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 90*time.Second, summary.Duration())
	assert.Equal(t, summary.Total, summary.Created+summary.Updated+summary.Failed)

	empty := NewSyncSummary(uuid.New(), start, start, nil)
	out, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"results":[]`)
}

func TestSyncResult_JSONOmitsEmptyFields(t *testing.T) {
	out, err := json.Marshal(SyncResult{SourceID: "x", Outcome: OutcomeFailed, Error: "nope"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"source_id":"x","outcome":"failed","error":"nope"}`, string(out))
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("shopify create product: %w", &ValidationError{
		StatusCode: 422,
		Payload:    json.RawMessage(`{"errors":{"title":["can't be blank"]}}`),
	})

	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrDestinationUnavailable)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, 422, validationErr.StatusCode)
	assert.Contains(t, err.Error(), "status 422")
	assert.Contains(t, err.Error(), "can't be blank")
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(fmt.Errorf("x: %w", ErrConfiguration)))
	assert.True(t, IsFatal(fmt.Errorf("x: %w", ErrUpstreamAuth)))
	assert.True(t, IsFatal(fmt.Errorf("x: %w", ErrUpstreamUnavailable)))
	assert.False(t, IsFatal(fmt.Errorf("x: %w", ErrDestinationUnavailable)))
	assert.False(t, IsFatal(&ValidationError{StatusCode: 400}))
	assert.False(t, IsFatal(nil))
}
