package http_common

import (
	"github.com/Klaiveft/What2Watch/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	UserTokenHeader = "X-user-token"

	userIDKey = "user_id"
	roomKey   = "room"
)

// ErrorResponse is the body of every failed request. Redirect tells the
// client which screen to open instead, when there is one.
type ErrorResponse struct {
	Message  string `json:"message" example:"internal error"`
	Redirect string `json:"redirect,omitempty" example:"/join?code=AB12CD"`
}

func SetUserID(ctx *gin.Context, userID uuid.UUID) {
	ctx.Set(userIDKey, userID)
}

// UserID is set by the auth middleware.
func UserID(ctx *gin.Context) uuid.UUID {
	v, ok := ctx.Get(userIDKey)
	if !ok {
		return uuid.Nil
	}
	id, _ := v.(uuid.UUID)
	return id
}

func SetRoom(ctx *gin.Context, room model.Room) {
	ctx.Set(roomKey, room)
}

// Room is set by the membership middleware. The code in it is normalized.
func Room(ctx *gin.Context) model.Room {
	v, _ := ctx.Get(roomKey)
	room, _ := v.(model.Room)
	return room
}

func JoinPath(code string) string {
	return "/join?code=" + code
}

// ScreenPath is the client screen a room in status s is shown on.
func ScreenPath(code string, s model.Status) string {
	switch s {
	case model.StatusVoting:
		return "/room/" + code + "/vote"
	case model.StatusDone:
		return "/room/" + code + "/results"
	default:
		return "/room/" + code + "/lobby"
	}
}

type ProgressDTO struct {
	Expected int `json:"expected" example:"6"`
	Cast     int `json:"cast" example:"4"`
	Percent  int `json:"percent" example:"66"`
}

func ToProgressDTO(p model.Progress) ProgressDTO {
	return ProgressDTO{Expected: p.Expected, Cast: p.Cast, Percent: p.Percent()}
}

type MovieDTO struct {
	ID          int64    `json:"id" example:"17"`
	TMDBID      int64    `json:"tmdb_id" example:"603"`
	Title       string   `json:"title" example:"The Matrix"`
	PosterPath  string   `json:"poster_path,omitempty" example:"/f89U3ADr1oiB1s9GkdPOEpXUk5H.jpg"`
	ReleaseYear *int     `json:"release_year,omitempty" example:"1999"`
	Runtime     int      `json:"runtime,omitempty" example:"136"`
	Overview    string   `json:"overview,omitempty"`
	Genres      []string `json:"genres"`
}

func ToMovieDTO(m model.Movie) MovieDTO {
	genres := m.Genres
	if genres == nil {
		genres = []string{}
	}
	return MovieDTO{
		ID:          m.ID,
		TMDBID:      m.TMDBID,
		Title:       m.Title,
		PosterPath:  m.PosterPath,
		ReleaseYear: m.ReleaseYear,
		Runtime:     m.Runtime,
		Overview:    m.Overview,
		Genres:      genres,
	}
}
