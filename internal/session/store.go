// Package session owns the client's authentication credential: its
// issuance, durable persistence, expiry policy, and invalidation.
package session

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dom/tablebook/internal/domain"
	"github.com/dom/tablebook/internal/event"
)

// DefaultLifetime is how long a credential is honored client-side
// after issuance, independent of server-side validity.
const DefaultLifetime = 24 * time.Hour

// Store is a two-state machine: anonymous (no credential) or
// authenticated (credential, user and issuance timestamp all present).
// A credential found to be expired collapses straight back to
// anonymous. The credential and user are always present together or
// not at all.
//
// Safe for concurrent use: the logout signal fires on whichever
// goroutine carried the unauthorized response.
type Store struct {
	mu       sync.Mutex
	storage  Storage
	lifetime time.Duration
	clock    func() time.Time
	logger   zerolog.Logger

	credential string
	user       *domain.User
}

type Option func(*Store)

func WithLifetime(d time.Duration) Option {
	return func(s *Store) { s.lifetime = d }
}

func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New builds a store over the given storage and subscribes it to the
// logout signal for its entire lifetime: whichever request observes an
// unauthorized response, the store is the one that drops the
// credential.
func New(storage Storage, logout *event.Signal, opts ...Option) *Store {
	s := &Store{
		storage:  storage,
		lifetime: DefaultLifetime,
		clock:    time.Now,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	logout.Subscribe(s.Logout)
	return s
}

// Login transitions to authenticated and persists the credential, the
// user record and the issuance timestamp together.
func (s *Store) Login(credential string, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	userJSON, err := json.Marshal(user)
	if err != nil {
		return err
	}
	issuedAt := strconv.FormatInt(s.clock().UnixMilli(), 10)

	if err := s.storage.Set(KeyToken, credential); err != nil {
		return err
	}
	if err := s.storage.Set(KeyUser, string(userJSON)); err != nil {
		return err
	}
	if err := s.storage.Set(KeyIssuedAt, issuedAt); err != nil {
		return err
	}

	s.credential = credential
	s.user = &user
	s.logger.Info().Int64("userId", user.ID).Msg("session started")
	return nil
}

// Restore loads the persisted session, invoked once at process start.
// Any missing or malformed key, and any credential older than the
// lifetime, clears whatever was persisted and leaves the store
// anonymous. Restore never fails to the caller.
func (s *Store) Restore() {
	s.mu.Lock()
	defer s.mu.Unlock()

	credential, okToken := s.storage.Get(KeyToken)
	userJSON, okUser := s.storage.Get(KeyUser)
	issuedAtRaw, okIssued := s.storage.Get(KeyIssuedAt)
	if !okToken || !okUser || !okIssued {
		s.clear()
		return
	}

	issuedAtMillis, err := strconv.ParseInt(issuedAtRaw, 10, 64)
	if err != nil {
		s.logger.Debug().Msg("discarding session with malformed timestamp")
		s.clear()
		return
	}
	if s.clock().Sub(time.UnixMilli(issuedAtMillis)) > s.lifetime {
		s.logger.Info().Msg("persisted session expired")
		s.clear()
		return
	}

	var user domain.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		s.logger.Debug().Msg("discarding session with malformed user record")
		s.clear()
		return
	}

	s.credential = credential
	s.user = &user
	s.logger.Debug().Int64("userId", user.ID).Msg("session restored")
}

// Logout transitions to anonymous. Idempotent: logging out of an
// anonymous store is a no-op.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.credential != "" {
		s.logger.Info().Msg("session ended")
	}
	s.clear()
}

// Credential reports the bearer token when authenticated. Satisfies
// the api client's credential source.
func (s *Store) Credential() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential, s.credential != ""
}

// User reports the logged-in user when authenticated.
func (s *Store) User() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential != ""
}

func (s *Store) clear() {
	if err := s.storage.Clear(KeyToken, KeyUser, KeyIssuedAt); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear persisted session")
	}
	s.credential = ""
	s.user = nil
}
