package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/NeurArk/ai-contract-guardian/model"
	"github.com/NeurArk/ai-contract-guardian/pkg/logger"
)

// State is the position of the store in the session lifecycle.
type State int

const (
	// Anonymous means no token is held.
	Anonymous State = iota
	// Restoring means a persisted token was found and the user profile
	// is being re-derived from the backend.
	Restoring
	// Authenticated means a token is held and the user is populated.
	Authenticated
)

func (s State) String() string {
	switch s {
	case Restoring:
		return "restoring"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// AuthAPI is the slice of the API client the store needs.
type AuthAPI interface {
	Me(ctx context.Context) (*model.User, error)
}

// Store is the single process-wide authority for "who is logged in".
// All token and user mutation goes through its methods; the token is
// the sole persisted field and the user is always re-derived from the
// backend.
type Store struct {
	mu        sync.Mutex
	api       AuthAPI
	tokenFile string

	token   string
	user    *model.User
	loading bool

	initOnce sync.Once
}

// NewStore creates a store persisting its token at tokenFile.
func NewStore(api AuthAPI, tokenFile string) *Store {
	return &Store{
		api:       api,
		tokenFile: tokenFile,
	}
}

// Initialize restores the session from the persisted token, fetching
// the user profile when a token exists. It runs its work exactly once;
// later calls are no-ops returning nil.
func (s *Store) Initialize(ctx context.Context) error {
	var err error
	s.initOnce.Do(func() {
		token := s.readToken()
		if token == "" {
			s.mu.Lock()
			s.loading = false
			s.mu.Unlock()
			return
		}

		s.mu.Lock()
		s.token = token
		s.loading = true
		s.mu.Unlock()

		err = s.FetchUser(ctx)
	})
	return err
}

// Login persists the token, then hydrates the user from the backend.
// A token that cannot resolve to a user is treated as invalid: the
// store rolls back to anonymous and the persisted token is removed.
func (s *Store) Login(ctx context.Context, token string) error {
	if err := s.writeToken(token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.loading = true
	s.mu.Unlock()

	return s.FetchUser(ctx)
}

// Logout synchronously clears the in-memory session and the persisted
// token. No network call is made. Calling it on an already-cleared
// session is a no-op.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	s.loading = false
}

// Invalidate clears the session. It is the single recovery operation
// shared by the 401 hook and by FetchUser's rollback, so the two paths
// can never diverge.
func (s *Store) Invalidate() {
	s.Logout()
}

// FetchUser fetches the current profile with the stored token. On
// success the user is set; on any failure (network or authorization)
// the token and user are both cleared. Either way loading ends false.
func (s *Store) FetchUser(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	user, err := s.api.Me(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		logger.Warn(ctx, "failed to fetch user, clearing session", "error", err)
		s.clearLocked()
		return fmt.Errorf("failed to fetch user: %w", err)
	}

	s.user = user
	return nil
}

// Token returns the current bearer token, or "" when anonymous. It is
// the client's TokenSource.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns the current user, or nil.
func (s *Store) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// IsAuthenticated reports whether a user is logged in. It holds exactly
// when User() is non-nil.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// IsLoading reports whether a profile fetch is in flight.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// State derives the lifecycle state from the held fields.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.user != nil:
		return Authenticated
	case s.token != "" && s.loading:
		return Restoring
	default:
		return Anonymous
	}
}

// clearLocked resets token and user and removes the persisted token.
// Removing an absent token file is a no-op. Callers hold s.mu.
func (s *Store) clearLocked() {
	s.token = ""
	s.user = nil
	if err := os.Remove(s.tokenFile); err != nil && !os.IsNotExist(err) {
		logger.Warn(context.Background(), "failed to remove token file", "error", err)
	}
}

func (s *Store) readToken() string {
	data, err := os.ReadFile(s.tokenFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (s *Store) writeToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.tokenFile), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.tokenFile, []byte(token+"\n"), 0o600)
}
