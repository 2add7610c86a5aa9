// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"fmt"
)

// ScoreTimes maps a raw submission score to the elapsed time, in nanoseconds
// since contest start, at which it was achieved. Scores are unique per user.
type ScoreTimes map[int]int64

// SubmissionSet maps a user name to that user's submissions. It is built
// once per run at the ingest boundary and read-only afterwards.
type SubmissionSet map[string]ScoreTimes

// Users returns the user names in the set, in unspecified order.
func (s SubmissionSet) Users() []string {
	users := make([]string, 0, len(s))
	for name := range s {
		users = append(users, name)
	}
	return users
}

// BestResult is a user's highest-scoring submission. Score is the display
// score (raw score divided by 100). A user with no submissions gets the
// sentinel Score of -1 and Elapsed of "not attempted".
type BestResult struct {
	Score     float64
	RawScore  int
	ElapsedNs int64
	Elapsed   string
}

// StandingsRow is one row of the ranked standings table.
type StandingsRow struct {
	Rank int `json:"rank"`
	// RankDelta is "New", "-", "N ↑" (moved up) or "N ↓" (moved down).
	RankDelta string  `json:"rank_delta"`
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	// ScoreDelta is the score change versus the previously observed
	// standings; 0 for users with no history.
	ScoreDelta float64 `json:"score_delta"`
	// BehindLeader is the leader's score minus this row's score.
	BehindLeader float64 `json:"behind_leader"`
	// Elapsed is the best submission's elapsed time, formatted DD-HH:MM.
	Elapsed string `json:"time"`
}

// SnapshotEntry is the minimal per-user state persisted across runs.
// Its JSON form is the array [name, rank, score] for compatibility with
// the persisted standings format.
type SnapshotEntry struct {
	Name  string
	Rank  int
	Score float64
}

// MarshalJSON encodes the entry as [name, rank, score].
func (e SnapshotEntry) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal([]any{e.Name, e.Rank, e.Score})
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot entry: %w", err)
	}
	return b, nil
}

// UnmarshalJSON decodes an entry from [name, rank, score].
func (e *SnapshotEntry) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal snapshot entry: %w", err)
	}
	return e.fromAny(raw)
}

func (e *SnapshotEntry) fromAny(raw []any) error {
	if len(raw) != 3 {
		return fmt.Errorf("unmarshal snapshot entry: expected 3 elements, got %d", len(raw))
	}
	name, ok := raw[0].(string)
	if !ok {
		return fmt.Errorf("unmarshal snapshot entry: name is not a string")
	}
	rank, ok := raw[1].(float64)
	if !ok {
		return fmt.Errorf("unmarshal snapshot entry: rank is not a number")
	}
	score, ok := raw[2].(float64)
	if !ok {
		return fmt.Errorf("unmarshal snapshot entry: score is not a number")
	}
	e.Name = name
	e.Rank = int(rank)
	e.Score = score
	return nil
}
