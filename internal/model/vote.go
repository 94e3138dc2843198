package model

import "github.com/google/uuid"

type Vote struct {
	ID       int64
	RoomCode string
	UserID   uuid.UUID
	MovieID  int64
	Value    bool
}

type Tally struct {
	MovieID    int64
	YesCount   int
	TotalVotes int
	YesRatio   float64
}

type Progress struct {
	Expected int
	Cast     int
}

func (p Progress) Percent() int {
	if p.Expected <= 0 {
		return 0
	}
	pct := p.Cast * 100 / p.Expected
	if pct > 100 {
		return 100
	}
	return pct
}

// Completion is the outcome of one completion check.
type Completion struct {
	Complete      bool
	Progress      Progress
	WinnerMovieID *int64
}

// Ballot lists the movies a participant still has to vote on.
type Ballot struct {
	Pending  []Movie
	Progress Progress
}

func (b Ballot) Done() bool {
	return len(b.Pending) == 0
}

type MovieResult struct {
	Movie     Movie
	Tally     Tally
	PosterURL string
}

type Results struct {
	RoomCode      string
	WinnerMovieID *int64
	Participants  int
	Movies        []MovieResult
}

// Winner returns the committed winner. It is always first in Movies.
func (r Results) Winner() (MovieResult, bool) {
	if r.WinnerMovieID == nil || len(r.Movies) == 0 {
		return MovieResult{}, false
	}
	return r.Movies[0], true
}
