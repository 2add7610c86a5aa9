// Package series builds time-binned score and rank matrices from a
// submission set, for charting per-user trajectories over elapsed hours.
package series

import (
	"sort"

	"github.com/heatboard/heatboard/internal/domain/model"
)

const (
	nanosPerMinute = 60_000_000_000
	minutesPerHour = 60
	scoreScale     = 100
)

// Result holds the derived chart inputs. Both matrices are indexed
// [row][col] where row i corresponds to Bins[i] and col j to Users[j].
type Result struct {
	// Bins is the sorted set of elapsed-hour bins observed across all
	// users' submissions. It is the shared x-axis for both matrices.
	Bins []int

	// Users is the chart legend order: users sorted by their maximum raw
	// score, descending. Users with no submissions sort last.
	Users []string

	// Scores holds each user's best display score achieved by each bin.
	// Columns are monotonically non-decreasing down the rows.
	Scores [][]float64

	// Ranks holds each user's competition rank at each bin, derived
	// independently per row from Scores.
	Ranks [][]int
}

// DistributionBar pairs a final score with its 1-based rank position.
type DistributionBar struct {
	Rank  int     `json:"rank"`
	Score float64 `json:"score"`
}

// Bin converts an elapsed time to its discrete elapsed-hour bucket.
func Bin(elapsedNs int64) int {
	min := elapsedNs / nanosPerMinute
	return int((min + minutesPerHour - 1) / minutesPerHour)
}

// Build derives the score and rank matrices for the given set.
func Build(set model.SubmissionSet) *Result {
	users := legendOrder(set)
	bins := collectBins(set)

	binIndex := make(map[int]int, len(bins))
	for i, b := range bins {
		binIndex[b] = i
	}

	scores := make([][]float64, len(bins))
	for i := range scores {
		scores[i] = make([]float64, len(users))
	}

	for col, name := range users {
		for score, elapsedNs := range set[name] {
			row := binIndex[Bin(elapsedNs)]
			display := float64(score) / scoreScale
			if display > scores[row][col] {
				scores[row][col] = display
			}
		}
		// Fill forward: a user's plotted score never decreases.
		for row := 1; row < len(scores); row++ {
			if scores[row-1][col] > scores[row][col] {
				scores[row][col] = scores[row-1][col]
			}
		}
	}

	ranks := make([][]int, len(bins))
	for row := range ranks {
		ranks[row] = rankRow(scores[row])
	}

	return &Result{Bins: bins, Users: users, Scores: scores, Ranks: ranks}
}

// Distribution returns the final bin's scores in descending order, paired
// with their 1-based rank positions. Empty when no bins were observed.
func (r *Result) Distribution() []DistributionBar {
	if len(r.Scores) == 0 {
		return nil
	}
	last := r.Scores[len(r.Scores)-1]
	sorted := make([]float64, len(last))
	copy(sorted, last)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	bars := make([]DistributionBar, len(sorted))
	for i, s := range sorted {
		bars[i] = DistributionBar{Rank: i + 1, Score: s}
	}
	return bars
}

// legendOrder sorts users by maximum raw score descending, name ascending
// on ties. The reference leaves tie order arbitrary.
func legendOrder(set model.SubmissionSet) []string {
	type userBest struct {
		name string
		best int
	}
	order := make([]userBest, 0, len(set))
	for _, name := range set.Users() {
		best := 0
		for score := range set[name] {
			if score > best {
				best = score
			}
		}
		order = append(order, userBest{name: name, best: best})
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].best != order[j].best {
			return order[i].best > order[j].best
		}
		return order[i].name < order[j].name
	})

	users := make([]string, len(order))
	for i, u := range order {
		users[i] = u.name
	}
	return users
}

func collectBins(set model.SubmissionSet) []int {
	seen := make(map[int]bool)
	for _, times := range set {
		for _, elapsedNs := range times {
			seen[Bin(elapsedNs)] = true
		}
	}
	bins := make([]int, 0, len(seen))
	for b := range seen {
		bins = append(bins, b)
	}
	sort.Ints(bins)
	return bins
}

// rankRow assigns competition ranks to one row: tied scores share a rank
// and the next distinct score's rank is one plus the count of strictly
// greater scores.
func rankRow(scores []float64) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	ranks := make([]int, len(scores))
	for pos, col := range idx {
		ranks[col] = pos + 1
		if pos > 0 && scores[idx[pos-1]] == scores[col] {
			ranks[col] = ranks[idx[pos-1]]
		}
	}
	return ranks
}
