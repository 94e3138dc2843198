package service_anonymous_auth

// Anonymous identity: a fresh token maps to a fresh user id, nothing else.

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Token = string

var (
	ErrInternal     = errors.New("internal error")
	ErrUnknownToken = errors.New("unknown or expired token")
)

//go:generate mockery --name=SessionCache --output=./mocks/cache --filename=cache.go
type SessionCache interface {
	Set(key string, value string, ttl time.Duration) error
	// Get returns "" for unknown keys.
	Get(key string) (string, error)
	Touch(key string, ttl time.Duration) error
}

type Service struct {
	sessionCache SessionCache
	ttl          time.Duration
}

func New(
	sessionCache SessionCache,
	ttl *time.Duration,
) *Service {
	if ttl == nil {
		ttl = func() *time.Duration {
			defaultTokenTTL := time.Hour * 72
			return &defaultTokenTTL
		}()
	}

	return &Service{
		sessionCache: sessionCache,
		ttl:          *ttl,
	}
}

// Issue creates a new anonymous user and a token that identifies it.
func (s *Service) Issue() (Token, uuid.UUID, error) {
	userID := uuid.New()
	t := s.genToken()
	if err := s.sessionCache.Set(t, userID.String(), s.ttl); err != nil {
		return "", uuid.Nil, errors.Join(ErrInternal, err)
	}
	return t, userID, nil
}

// Resolve maps a token back to its user and slides the expiry forward.
func (s *Service) Resolve(t Token) (uuid.UUID, error) {
	if t == "" {
		return uuid.Nil, ErrUnknownToken
	}

	v, err := s.sessionCache.Get(t)
	if err != nil {
		return uuid.Nil, errors.Join(ErrInternal, err)
	}
	if v == "" {
		return uuid.Nil, ErrUnknownToken
	}

	userID, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, errors.Join(ErrInternal, err)
	}

	// The token stays valid for this request even if the refresh fails.
	_ = s.sessionCache.Touch(t, s.ttl)
	return userID, nil
}

func (s *Service) genToken() string {
	return uuid.New().String()
}
