package client_session

import (
	"context"
	"sync"

	http_common "github.com/Klaiveft/What2Watch/internal/delivery/http/common"
	http_voting "github.com/Klaiveft/What2Watch/internal/delivery/http/voting"
)

//go:generate mockery --name=Voter --output=./mocks/voter --filename=voter.go
type Voter interface {
	Vote(ctx context.Context, code string, movieID int64, value bool) (http_voting.VoteResponseDTO, error)
}

// Deck walks a ballot one movie at a time. A decision advances the deck
// at once and the vote is sent in the background; a failed send is reported
// and the movie is not shown again.
type Deck struct {
	voter Voter
	code  string

	onError    func(http_common.MovieDTO, error)
	onComplete func(http_voting.CompletionDTO)

	mu     sync.Mutex
	movies []http_common.MovieDTO
	pos    int
	wg     sync.WaitGroup
}

type DeckOption func(*Deck)

func WithVoteError(f func(http_common.MovieDTO, error)) DeckOption {
	return func(d *Deck) {
		d.onError = f
	}
}

// WithComplete is called when a vote reports the room as complete.
func WithComplete(f func(http_voting.CompletionDTO)) DeckOption {
	return func(d *Deck) {
		d.onComplete = f
	}
}

func NewDeck(voter Voter, code string, movies []http_common.MovieDTO, opts ...DeckOption) *Deck {
	d := &Deck{
		voter:      voter,
		code:       code,
		movies:     movies,
		onError:    func(http_common.MovieDTO, error) {},
		onComplete: func(http_voting.CompletionDTO) {},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Deck) Current() (http_common.MovieDTO, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pos >= len(d.movies) {
		return http_common.MovieDTO{}, false
	}
	return d.movies[d.pos], true
}

func (d *Deck) Remaining() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.movies) - d.pos
}

// Decide votes on the current movie and moves on. It returns false when the
// deck was already empty.
func (d *Deck) Decide(ctx context.Context, value bool) bool {
	d.mu.Lock()
	if d.pos >= len(d.movies) {
		d.mu.Unlock()
		return false
	}
	movie := d.movies[d.pos]
	d.pos++
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()

		resp, err := d.voter.Vote(ctx, d.code, movie.ID, value)
		if err != nil {
			d.onError(movie, err)
			return
		}
		if resp.Completion != nil && resp.Completion.Complete {
			d.onComplete(*resp.Completion)
		}
	}()
	return true
}

// Wait blocks until every sent vote got an answer.
func (d *Deck) Wait() {
	d.wg.Wait()
}
