// Package standings derives the ranked standings table from a submission set.
package standings

import (
	"fmt"
	"sort"

	"github.com/heatboard/heatboard/internal/domain/model"
)

// Display scores are raw scores divided by this factor.
const scoreScale = 100

// Sentinel elapsed string for users without submissions.
const notAttempted = "not attempted"

// Best returns the submission with the maximum raw score. An empty input
// yields the sentinel result (Score -1, Elapsed "not attempted").
func Best(times model.ScoreTimes) model.BestResult {
	best := model.BestResult{Score: -1, RawScore: -1, Elapsed: notAttempted}
	for score, elapsedNs := range times {
		if score > best.RawScore {
			best = model.BestResult{
				Score:     float64(score) / scoreScale,
				RawScore:  score,
				ElapsedNs: elapsedNs,
				Elapsed:   FormatElapsed(elapsedNs),
			}
		}
	}
	return best
}

// Build turns a submission set into a ranked standings table. Rows are
// sorted by score descending (name ascending on ties, for determinism),
// ranks are dense competition ranks, and every non-leader row carries its
// gap to the leader. Rank deltas start out as "New" until ApplyPrevious
// resolves them against the prior snapshot.
func Build(set model.SubmissionSet) []model.StandingsRow {
	rows := make([]model.StandingsRow, 0, len(set))
	for name, times := range set {
		best := Best(times)
		rows = append(rows, model.StandingsRow{
			Rank:      0,
			RankDelta: "New",
			Name:      name,
			Score:     best.Score,
			Elapsed:   best.Elapsed,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Name < rows[j].Name
	})

	for i := range rows {
		rows[i].Rank = i + 1
		if i == 0 {
			continue
		}
		if rows[i].Score == rows[i-1].Score {
			rows[i].Rank = rows[i-1].Rank
		}
		rows[i].BehindLeader = rows[0].Score - rows[i].Score
	}
	return rows
}

// ApplyPrevious resolves rank and score deltas against the previously
// observed standings. Users absent from prev keep "New" and a zero score
// delta; absence is the expected first appearance, not a fault.
func ApplyPrevious(rows []model.StandingsRow, prev []model.SnapshotEntry) {
	index := make(map[string]model.SnapshotEntry, len(prev))
	for _, e := range prev {
		index[e.Name] = e
	}

	for i := range rows {
		before, ok := index[rows[i].Name]
		if !ok {
			continue
		}
		rows[i].RankDelta = formatRankDelta(rows[i].Rank - before.Rank)
		rows[i].ScoreDelta = rows[i].Score - before.Score
	}
}

// ToSnapshot extracts the (name, rank, score) triples persisted for the
// next run's delta computation.
func ToSnapshot(rows []model.StandingsRow) []model.SnapshotEntry {
	entries := make([]model.SnapshotEntry, len(rows))
	for i, r := range rows {
		entries[i] = model.SnapshotEntry{Name: r.Name, Rank: r.Rank, Score: r.Score}
	}
	return entries
}

func formatRankDelta(diff int) string {
	switch {
	case diff == 0:
		return "-"
	case diff < 0:
		return fmt.Sprintf("%d ↑", -diff)
	default:
		return fmt.Sprintf("%d ↓", diff)
	}
}
