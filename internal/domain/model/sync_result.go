package model

import (
	"time"

	"github.com/google/uuid"
)

type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeFailed  Outcome = "failed"
)

type SyncResult struct {
	SourceID      string  `json:"source_id"`
	Outcome       Outcome `json:"outcome"`
	DestinationID int64   `json:"destination_id,omitempty"`
	Error         string  `json:"error,omitempty"`
}

type SyncSummary struct {
	RunID      uuid.UUID    `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Total      int          `json:"total"`
	Created    int          `json:"created"`
	Updated    int          `json:"updated"`
	Failed     int          `json:"failed"`
	Results    []SyncResult `json:"results"`
}

// NewSyncSummary builds a summary from results that are already in source order.
func NewSyncSummary(runID uuid.UUID, startedAt, finishedAt time.Time, results []SyncResult) SyncSummary {
	if results == nil {
		results = []SyncResult{}
	}
	summary := SyncSummary{
		RunID:      runID,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Total:      len(results),
		Results:    results,
	}
	for _, r := range results {
		switch r.Outcome {
		case OutcomeCreated:
			summary.Created++
		case OutcomeUpdated:
			summary.Updated++
		case OutcomeFailed:
			summary.Failed++
		}
	}
	return summary
}

func (s SyncSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
