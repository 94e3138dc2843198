package infra_postgres_movie

import (
	"github.com/Klaiveft/What2Watch/internal/model"
	"github.com/lib/pq"
)

type MovieDB struct {
	ID          int64          `db:"id"`
	RoomCode    string         `db:"room_code"`
	TMDBID      int64          `db:"tmdb_id"`
	Title       string         `db:"title"`
	PosterPath  string         `db:"poster_path"`
	ReleaseYear *int           `db:"release_year"`
	Runtime     int            `db:"runtime"`
	Overview    string         `db:"overview"`
	Genres      pq.StringArray `db:"genres"`
}

func (m *MovieDB) ToDomain() model.Movie {
	return model.Movie{
		ID:          m.ID,
		RoomCode:    m.RoomCode,
		TMDBID:      m.TMDBID,
		Title:       m.Title,
		PosterPath:  m.PosterPath,
		ReleaseYear: m.ReleaseYear,
		Runtime:     m.Runtime,
		Overview:    m.Overview,
		Genres:      []string(m.Genres),
	}
}

func FromDomain(m model.Movie) MovieDB {
	genres := m.Genres
	if genres == nil {
		genres = []string{}
	}
	return MovieDB{
		ID:          m.ID,
		RoomCode:    m.RoomCode,
		TMDBID:      m.TMDBID,
		Title:       m.Title,
		PosterPath:  m.PosterPath,
		ReleaseYear: m.ReleaseYear,
		Runtime:     m.Runtime,
		Overview:    m.Overview,
		Genres:      pq.StringArray(genres),
	}
}

func ToDomainAll(rows []MovieDB) []model.Movie {
	movies := make([]model.Movie, len(rows))
	for i := range rows {
		movies[i] = rows[i].ToDomain()
	}
	return movies
}
