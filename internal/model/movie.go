package model

import (
	"strconv"

	"github.com/google/uuid"
)

// SearchResult is one hit of the metadata search.
type SearchResult struct {
	TMDBID      int64
	Title       string
	PosterPath  string
	ReleaseDate string
	Overview    string
}

// MovieDetails is the full metadata record used to create a Movie row.
type MovieDetails struct {
	TMDBID      int64
	Title       string
	PosterPath  string
	ReleaseDate string
	Overview    string
	Runtime     int
	Genres      []string
}

// ReleaseYear parses the leading year of ReleaseDate ("2014-11-05").
func (d MovieDetails) ReleaseYear() *int {
	if len(d.ReleaseDate) < 4 {
		return nil
	}
	y, err := strconv.Atoi(d.ReleaseDate[:4])
	if err != nil {
		return nil
	}
	return &y
}

func (d MovieDetails) ToMovie(roomCode string) Movie {
	return Movie{
		RoomCode:    roomCode,
		TMDBID:      d.TMDBID,
		Title:       d.Title,
		PosterPath:  d.PosterPath,
		ReleaseYear: d.ReleaseYear(),
		Runtime:     d.Runtime,
		Overview:    d.Overview,
		Genres:      d.Genres,
	}
}

// Movie is a candidate inside one room. Unique per (RoomCode, TMDBID).
type Movie struct {
	ID          int64
	RoomCode    string
	TMDBID      int64
	Title       string
	PosterPath  string
	ReleaseYear *int
	Runtime     int
	Overview    string
	Genres      []string
}

type Proposal struct {
	ID       int64
	RoomCode string
	UserID   uuid.UUID
	MovieID  int64
}

// ProposedMovie is a movie in the candidate pool with everyone who championed it.
type ProposedMovie struct {
	Movie      Movie
	ProposedBy []string
}
