package model

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusProposing Status = "proposing"
	StatusVoting    Status = "voting"
	StatusDone      Status = "done"
)

func (s Status) Valid() bool {
	switch s {
	case StatusProposing, StatusVoting, StatusDone:
		return true
	}
	return false
}

// Next returns the only status a room may move to from s.
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusProposing:
		return StatusVoting, true
	case StatusVoting:
		return StatusDone, true
	}
	return "", false
}

// CanAdvance reports whether from -> to is a legal lifecycle step.
// Statuses never move backwards and never skip a phase.
func CanAdvance(from, to Status) bool {
	next, ok := from.Next()
	return ok && next == to
}

const (
	RoomCodeLen           = 6
	MaxDisplayNameLen     = 20
	MaxProposalsPerUser   = 3
	MinParticipantsToVote = 2
	MinMoviesToVote       = 2
)

type Room struct {
	Code          string
	Status        Status
	HostUserID    uuid.UUID
	WinnerMovieID *int64
	CreatedAt     time.Time
}

func (r Room) IsHost(userID uuid.UUID) bool {
	return r.HostUserID == userID
}

type Participant struct {
	ID          int64
	RoomCode    string
	UserID      uuid.UUID
	DisplayName string
}

// Lobby is the authoritative snapshot a client renders the room from.
type Lobby struct {
	Room         Room
	Participants []Participant
}

func (l Lobby) Participant(userID uuid.UUID) (Participant, bool) {
	for _, p := range l.Participants {
		if p.UserID == userID {
			return p, true
		}
	}
	return Participant{}, false
}
