package ranking

import (
	"math/rand"
	"sort"

	"github.com/Klaiveft/What2Watch/internal/model"
)

// Tiebreaker picks an index in [0, n).
type Tiebreaker func(n int) int

// RandomTiebreaker draws a fresh index on every call.
//
// TODO: the product owner still has to choose a stable policy (lowest movie
// id or first proposed); until then a tie at the top is settled by chance and
// the first committed outcome is final.
func RandomTiebreaker(n int) int {
	return rand.Intn(n)
}

// Tally counts votes per movie. Every movie gets an entry, in movieIDs order,
// even when nobody voted on it.
func Tally(movieIDs []int64, votes []model.Vote) []model.Tally {
	index := make(map[int64]int, len(movieIDs))
	tallies := make([]model.Tally, len(movieIDs))
	for i, id := range movieIDs {
		index[id] = i
		tallies[i].MovieID = id
	}

	for _, v := range votes {
		i, ok := index[v.MovieID]
		if !ok {
			continue
		}
		tallies[i].TotalVotes++
		if v.Value {
			tallies[i].YesCount++
		}
	}

	for i := range tallies {
		if tallies[i].TotalVotes > 0 {
			tallies[i].YesRatio = float64(tallies[i].YesCount) / float64(tallies[i].TotalVotes)
		}
	}
	return tallies
}

// Before orders by yes count, then yes ratio, both descending.
func Before(a, b model.Tally) bool {
	if a.YesCount != b.YesCount {
		return a.YesCount > b.YesCount
	}
	return a.YesRatio > b.YesRatio
}

// Tied reports whether neither a nor b ranks before the other.
func Tied(a, b model.Tally) bool {
	return !Before(a, b) && !Before(b, a)
}

// Rank sorts a copy of tallies. Equal entries keep their input order, so the
// result is deterministic.
func Rank(tallies []model.Tally) []model.Tally {
	ranked := make([]model.Tally, len(tallies))
	copy(ranked, tallies)
	sort.SliceStable(ranked, func(i, j int) bool {
		return Before(ranked[i], ranked[j])
	})
	return ranked
}

// LeadingTies returns how many entries of ranked share the first rank.
func LeadingTies(ranked []model.Tally) int {
	if len(ranked) == 0 {
		return 0
	}
	n := 1
	for n < len(ranked) && Tied(ranked[0], ranked[n]) {
		n++
	}
	return n
}

// Winner ranks tallies and settles a tie at the top with tb.
// It returns nil when there is nothing to rank.
func Winner(tallies []model.Tally, tb Tiebreaker) *int64 {
	ranked := Rank(tallies)
	n := LeadingTies(ranked)
	if n == 0 {
		return nil
	}

	pick := 0
	if n > 1 {
		pick = tb(n)
		if pick < 0 || pick >= n {
			pick = 0
		}
	}
	id := ranked[pick].MovieID
	return &id
}

// PromoteWinner moves winnerID to the front of its tie group so a read-side
// ranking agrees with the committed outcome.
func PromoteWinner(ranked []model.Tally, winnerID int64) []model.Tally {
	for i, t := range ranked {
		if t.MovieID != winnerID {
			continue
		}
		j := i
		for j > 0 && Tied(ranked[j-1], t) {
			ranked[j] = ranked[j-1]
			j--
		}
		ranked[j] = t
		break
	}
	return ranked
}
