package infra_memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Klaiveft/What2Watch/internal/model"
	usecase_proposal "github.com/Klaiveft/What2Watch/internal/usecase/proposal"
	usecase_room "github.com/Klaiveft/What2Watch/internal/usecase/room"
	usecase_vote "github.com/Klaiveft/What2Watch/internal/usecase/vote"
	"github.com/google/uuid"
)

type Publisher interface {
	Publish(e model.Event)
}

type userMovie struct {
	userID  uuid.UUID
	movieID int64
}

type roomState struct {
	room         model.Room
	participants []model.Participant
	movies       []model.Movie
	proposals    []model.Proposal
	votes        []model.Vote

	proposed map[userMovie]bool
	voted    map[userMovie]bool
}

func (r *roomState) participant(userID uuid.UUID) (int, bool) {
	for i, p := range r.participants {
		if p.UserID == userID {
			return i, true
		}
	}
	return 0, false
}

func (r *roomState) movie(movieID int64) (model.Movie, bool) {
	for _, m := range r.movies {
		if m.ID == movieID {
			return m, true
		}
	}
	return model.Movie{}, false
}

// Store keeps every room in process memory. It implements the room, proposal,
// vote and resolver repositories with the same admission rules as the SQL
// drivers; one mutex makes every write atomic.
type Store struct {
	mu     sync.RWMutex
	rooms  map[string]*roomState
	nextID int64
	pub    Publisher
	now    func() time.Time
}

func New(pub Publisher) *Store {
	return &Store{
		rooms: make(map[string]*roomState),
		pub:   pub,
		now:   time.Now,
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// emit must be called without holding mu.
func (s *Store) emit(table model.Table, code, op string) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(model.Event{Table: table, RoomCode: code, Op: op})
}

func (s *Store) state(code string) (*roomState, bool) {
	r, ok := s.rooms[code]
	return r, ok
}

// room repository

func (s *Store) Create(_ context.Context, room model.Room, host model.Participant) error {
	s.mu.Lock()
	if _, exists := s.rooms[room.Code]; exists {
		s.mu.Unlock()
		return usecase_room.ErrCodeConflict
	}
	room.CreatedAt = s.now()
	host.ID = s.id()
	s.rooms[room.Code] = &roomState{
		room:         room,
		participants: []model.Participant{host},
		proposed:     make(map[userMovie]bool),
		voted:        make(map[userMovie]bool),
	}
	s.mu.Unlock()

	s.emit(model.TableRooms, room.Code, model.OpInsert)
	s.emit(model.TableParticipants, room.Code, model.OpInsert)
	return nil
}

func (s *Store) ByCode(_ context.Context, code string) (model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.state(code)
	if !ok {
		return model.Room{}, usecase_room.ErrResourceNotFound
	}
	return r.room, nil
}

func (s *Store) Participants(_ context.Context, code string) ([]model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.state(code)
	if !ok {
		return []model.Participant{}, nil
	}
	return append([]model.Participant(nil), r.participants...), nil
}

func (s *Store) IsParticipant(_ context.Context, code string, userID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.state(code)
	if !ok {
		return false, nil
	}
	_, found := r.participant(userID)
	return found, nil
}

func (s *Store) UpsertParticipant(_ context.Context, p model.Participant) (model.Participant, bool, error) {
	s.mu.Lock()
	r, ok := s.state(p.RoomCode)
	if !ok {
		s.mu.Unlock()
		return model.Participant{}, false, usecase_room.ErrResourceNotFound
	}
	if r.room.Status != model.StatusProposing {
		s.mu.Unlock()
		return model.Participant{}, false, usecase_room.ErrJoinClosed
	}

	created := false
	if i, found := r.participant(p.UserID); found {
		r.participants[i].DisplayName = p.DisplayName
		p = r.participants[i]
	} else {
		p.ID = s.id()
		r.participants = append(r.participants, p)
		created = true
	}
	s.mu.Unlock()

	op := model.OpUpdate
	if created {
		op = model.OpInsert
	}
	s.emit(model.TableParticipants, p.RoomCode, op)
	return p, created, nil
}

func (s *Store) ParticipantsCount(_ context.Context, code string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.state(code); ok {
		return len(r.participants), nil
	}
	return 0, nil
}

func (s *Store) MoviesCount(_ context.Context, code string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.state(code); ok {
		return len(r.movies), nil
	}
	return 0, nil
}

func (s *Store) Advance(_ context.Context, code string, from, to model.Status) error {
	if !model.CanAdvance(from, to) {
		return fmt.Errorf("illegal transition %s -> %s", from, to)
	}

	s.mu.Lock()
	r, ok := s.state(code)
	if !ok || r.room.Status != from {
		s.mu.Unlock()
		return usecase_room.ErrWrongPhase
	}
	r.room.Status = to
	s.mu.Unlock()

	s.emit(model.TableRooms, code, model.OpUpdate)
	return nil
}

// proposal repository

func (s *Store) RoomStatus(_ context.Context, code string) (model.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.state(code)
	if !ok {
		return "", usecase_proposal.ErrResourceNotFound
	}
	return r.room.Status, nil
}

func (s *Store) CountProposals(_ context.Context, code string, userID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.state(code)
	if !ok {
		return 0, nil
	}
	n := 0
	for _, p := range r.proposals {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *Store) FindMovie(_ context.Context, code string, tmdbID int64) (model.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.state(code); ok {
		for _, m := range r.movies {
			if m.TMDBID == tmdbID {
				return m, nil
			}
		}
	}
	return model.Movie{}, usecase_proposal.ErrResourceNotFound
}

func (s *Store) InsertMovie(_ context.Context, m model.Movie) (model.Movie, error) {
	s.mu.Lock()
	r, ok := s.state(m.RoomCode)
	if !ok || r.room.Status != model.StatusProposing {
		s.mu.Unlock()
		return model.Movie{}, usecase_proposal.ErrWrongPhase
	}
	for _, existing := range r.movies {
		if existing.TMDBID == m.TMDBID {
			s.mu.Unlock()
			return model.Movie{}, usecase_proposal.ErrMovieExists
		}
	}
	m.ID = s.id()
	r.movies = append(r.movies, m)
	s.mu.Unlock()

	s.emit(model.TableMovies, m.RoomCode, model.OpInsert)
	return m, nil
}

func (s *Store) DeleteOrphanMovie(_ context.Context, code string, movieID int64) error {
	s.mu.Lock()
	r, ok := s.state(code)
	if !ok || r.room.Status != model.StatusProposing {
		s.mu.Unlock()
		return nil
	}
	for _, p := range r.proposals {
		if p.MovieID == movieID {
			s.mu.Unlock()
			return nil
		}
	}
	deleted := false
	for i, m := range r.movies {
		if m.ID == movieID {
			r.movies = append(r.movies[:i], r.movies[i+1:]...)
			deleted = true
			break
		}
	}
	s.mu.Unlock()

	if deleted {
		s.emit(model.TableMovies, code, model.OpDelete)
	}
	return nil
}

func (s *Store) InsertProposal(_ context.Context, p model.Proposal, limit int) (model.Proposal, error) {
	s.mu.Lock()
	r, ok := s.state(p.RoomCode)
	if !ok {
		s.mu.Unlock()
		return model.Proposal{}, usecase_proposal.ErrResourceNotFound
	}
	if r.room.Status != model.StatusProposing {
		s.mu.Unlock()
		return model.Proposal{}, usecase_proposal.ErrWrongPhase
	}
	if _, found := r.participant(p.UserID); !found {
		s.mu.Unlock()
		return model.Proposal{}, usecase_proposal.ErrNotParticipant
	}
	if _, found := r.movie(p.MovieID); !found {
		s.mu.Unlock()
		return model.Proposal{}, usecase_proposal.ErrResourceNotFound
	}

	count := 0
	for _, existing := range r.proposals {
		if existing.UserID == p.UserID {
			count++
		}
	}
	if count >= limit {
		s.mu.Unlock()
		return model.Proposal{}, usecase_proposal.ErrProposalCapReached
	}

	key := userMovie{p.UserID, p.MovieID}
	if r.proposed[key] {
		s.mu.Unlock()
		return model.Proposal{}, usecase_proposal.ErrAlreadyProposed
	}
	r.proposed[key] = true
	p.ID = s.id()
	r.proposals = append(r.proposals, p)
	s.mu.Unlock()

	s.emit(model.TableProposals, p.RoomCode, model.OpInsert)
	return p, nil
}

func (s *Store) ProposedMovies(_ context.Context, code string) ([]model.ProposedMovie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.state(code)
	if !ok {
		return []model.ProposedMovie{}, nil
	}

	names := make(map[uuid.UUID]string, len(r.participants))
	for _, p := range r.participants {
		names[p.UserID] = p.DisplayName
	}

	index := make(map[int64]int)
	out := []model.ProposedMovie{}
	for _, p := range r.proposals {
		i, seen := index[p.MovieID]
		if !seen {
			m, _ := r.movie(p.MovieID)
			i = len(out)
			index[p.MovieID] = i
			out = append(out, model.ProposedMovie{Movie: m})
		}
		out[i].ProposedBy = append(out[i].ProposedBy, names[p.UserID])
	}
	return out, nil
}

// vote repository and resolver

func (s *Store) Room(_ context.Context, code string) (model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.state(code)
	if !ok {
		return model.Room{}, usecase_vote.ErrResourceNotFound
	}
	return r.room, nil
}

func (s *Store) InsertVote(_ context.Context, v model.Vote) error {
	s.mu.Lock()
	r, ok := s.state(v.RoomCode)
	if !ok || r.room.Status != model.StatusVoting {
		s.mu.Unlock()
		return usecase_vote.ErrVotingClosed
	}
	if _, found := r.participant(v.UserID); !found {
		s.mu.Unlock()
		return usecase_vote.ErrVotingClosed
	}
	if _, found := r.movie(v.MovieID); !found {
		s.mu.Unlock()
		return usecase_vote.ErrVotingClosed
	}

	key := userMovie{v.UserID, v.MovieID}
	if r.voted[key] {
		s.mu.Unlock()
		return usecase_vote.ErrAlreadyVoted
	}
	r.voted[key] = true
	v.ID = s.id()
	r.votes = append(r.votes, v)
	s.mu.Unlock()

	s.emit(model.TableVotes, v.RoomCode, model.OpInsert)
	return nil
}

func (s *Store) VotesCount(_ context.Context, code string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.state(code); ok {
		return len(r.votes), nil
	}
	return 0, nil
}

func (s *Store) Movies(_ context.Context, code string) ([]model.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.state(code)
	if !ok {
		return []model.Movie{}, nil
	}
	return append([]model.Movie(nil), r.movies...), nil
}

func (s *Store) VotedMovieIDs(_ context.Context, code string, userID uuid.UUID) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := []int64{}
	if r, ok := s.state(code); ok {
		for _, v := range r.votes {
			if v.UserID == userID {
				ids = append(ids, v.MovieID)
			}
		}
	}
	return ids, nil
}

func (s *Store) Votes(_ context.Context, code string) ([]model.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.state(code)
	if !ok {
		return []model.Vote{}, nil
	}
	return append([]model.Vote(nil), r.votes...), nil
}

func (s *Store) CommitWinner(_ context.Context, code string, winner *int64) (bool, error) {
	s.mu.Lock()
	r, ok := s.state(code)
	if !ok || r.room.Status != model.StatusVoting {
		s.mu.Unlock()
		return false, nil
	}
	r.room.Status = model.StatusDone
	if winner != nil {
		w := *winner
		r.room.WinnerMovieID = &w
	}
	s.mu.Unlock()

	s.emit(model.TableRooms, code, model.OpUpdate)
	return true, nil
}

func (s *Store) VotingRooms(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	codes := []string{}
	for code, r := range s.rooms {
		if r.room.Status == model.StatusVoting {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes, nil
}
