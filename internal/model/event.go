package model

type Table string

const (
	TableRooms        Table = "rooms"
	TableParticipants Table = "participants"
	TableMovies       Table = "movies"
	TableProposals    Table = "proposals"
	TableVotes        Table = "votes"
)

// Event says that a row of Table changed in a room. It never carries the row
// itself; receivers re-read the store.
type Event struct {
	Table    Table  `json:"table"`
	RoomCode string `json:"room_code"`
	Op       string `json:"op"`
}

const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
	// OpResync tells receivers that events may have been lost.
	OpResync = "RESYNC"
)
