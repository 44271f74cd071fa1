package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"tng-poetry-backend/internal/core"
	"tng-poetry-backend/internal/models"
)

// Status is the coarse authentication state of a session.
type Status string

const (
	StatusLoading         Status = "loading"
	StatusUnauthenticated Status = "unauthenticated"
	StatusAuthenticated   Status = "authenticated"
)

// ErrSessionClosed is returned by commands on a closed session.
var ErrSessionClosed = errors.New("session closed")

// AuthState is the read model of a session. User is set only when authenticated.
type AuthState struct {
	Status    Status       `json:"status"`
	User      *models.User `json:"user,omitempty"`
	LastError string       `json:"lastError,omitempty"`
}

// Authenticated reports whether a user profile is attached.
func (s AuthState) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil
}

// SessionOptions tunes a Session.
type SessionOptions struct {
	Boards core.BoardOptions
	Logger *zap.Logger
	// Now is used for idle tracking; defaults to time.Now.
	Now func() time.Time
}

// Session is the authentication context of one browser session. It follows the
// provider's session events and owns the review boards the session has opened.
type Session struct {
	id       string
	provider Provider
	users    core.UserService
	reviews  core.ReviewService
	opts     SessionOptions
	logger   *zap.Logger
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	state       AuthState
	generation  uint64
	unsubscribe func()
	listeners   map[int]func(AuthState)
	nextID      int
	boards      map[string]*core.ReviewBoard
	lastSeen    time.Time
}

// NewSession creates a session in the loading state. Call Start to attach it to the provider.
func NewSession(id string, provider Provider, users core.UserService, reviews core.ReviewService, opts SessionOptions) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if opts.Boards.Logger == nil {
		opts.Boards.Logger = logger
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:        id,
		provider:  provider,
		users:     users,
		reviews:   reviews,
		opts:      opts,
		logger:    logger.With(zap.String("sessionId", id)),
		now:       now,
		ctx:       ctx,
		cancel:    cancel,
		state:     AuthState{Status: StatusLoading},
		listeners: make(map[int]func(AuthState)),
		boards:    make(map[string]*core.ReviewBoard),
		lastSeen:  now(),
	}
}

// ID returns the opaque session identifier.
func (s *Session) ID() string { return s.id }

// Start subscribes to the provider. The provider reports the current session
// right away, so the state leaves loading before Start returns.
func (s *Session) Start() {
	s.mu.Lock()
	if s.unsubscribe != nil || s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.unsubscribe = func() {}
	s.mu.Unlock()

	unsubscribe := s.provider.Subscribe(s.handleEvent)

	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		unsubscribe()
		return
	}
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
}

// Close detaches from the provider, cancels in-flight work and closes every review board.
func (s *Session) Close() {
	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.cancel()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	boards := s.boards
	s.boards = make(map[string]*core.ReviewBoard)
	s.listeners = make(map[int]func(AuthState))
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	for _, b := range boards {
		b.Close()
	}
	s.logger.Debug("Session closed")
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	return s.ctx.Err() != nil
}

// LoginWithGoogle signs in with a Google ID token. It reports only success; the
// read model is updated by the provider event, not by this call.
func (s *Session) LoginWithGoogle(ctx context.Context, credential string) bool {
	if s.Closed() {
		return false
	}
	s.Touch()
	if _, err := s.provider.SignIn(ctx, credential); err != nil {
		s.logger.Warn("Google sign-in failed", zap.Error(err))
		return false
	}
	return true
}

// Logout signs out at the provider; the provider event moves the session to unauthenticated.
func (s *Session) Logout(ctx context.Context) error {
	if s.Closed() {
		return ErrSessionClosed
	}
	s.Touch()
	if err := s.provider.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// State returns a snapshot of the read model.
func (s *Session) State() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyState(s.state)
}

// User returns the signed-in user's profile, if any.
func (s *Session) User() (*models.User, bool) {
	st := s.State()
	if !st.Authenticated() {
		return nil, false
	}
	return st.User, true
}

// Subscribe calls listener with every state change until unsubscribed or closed.
func (s *Session) Subscribe(listener func(AuthState)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Reviews returns the session's board for poemID, creating it on first use.
func (s *Session) Reviews(poemID string) (*core.ReviewBoard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return nil, ErrSessionClosed
	}
	s.lastSeen = s.now()
	if b, ok := s.boards[poemID]; ok {
		return b, nil
	}
	b := core.NewReviewBoard(s.ctx, poemID, s.reviews, s.opts.Boards)
	s.boards[poemID] = b
	return b, nil
}

// Touch marks the session as active.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = s.now()
	s.mu.Unlock()
}

// IdleFor reports how long the session has been inactive.
func (s *Session) IdleFor() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Sub(s.lastSeen)
}

func (s *Session) handleEvent(ev Event) {
	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	switch ev.Kind {
	case EventSignedIn:
		s.signedIn(gen, ev.Identity)
	default:
		s.signedOut(gen)
	}
}

func (s *Session) signedIn(gen uint64, id *Identity) {
	if id == nil {
		s.signedOut(gen)
		return
	}
	user, created, err := s.users.GetOrCreate(s.ctx, id.UID, id.Email, id.DisplayName, id.PhotoURL)

	var next AuthState
	if err != nil {
		s.logger.Error("Failed to load user profile after sign-in", zap.String("userId", id.UID), zap.Error(err))
		next = AuthState{Status: StatusUnauthenticated, LastError: "failed to load user profile"}
	} else {
		if created {
			s.logger.Info("New reader signed in", zap.String("userId", user.ID))
		}
		next = AuthState{Status: StatusAuthenticated, User: user}
	}
	for _, b := range s.transition(gen, next) {
		b.Close()
	}
}

func (s *Session) signedOut(gen uint64) {
	boards := s.transition(gen, AuthState{Status: StatusUnauthenticated})
	for _, b := range boards {
		b.Close()
	}
}

// transition applies next unless the session closed or a newer event arrived meanwhile.
// Leaving the authenticated state, or switching users, drops the review boards,
// which are returned for closing.
func (s *Session) transition(gen uint64, next AuthState) []*core.ReviewBoard {
	s.mu.Lock()
	if s.ctx.Err() != nil || gen != s.generation {
		s.mu.Unlock()
		return nil
	}
	prev := s.state
	s.state = next

	var dropped []*core.ReviewBoard
	if prev.Authenticated() && (!next.Authenticated() || prev.User.ID != next.User.ID) {
		for _, b := range s.boards {
			dropped = append(dropped, b)
		}
		s.boards = make(map[string]*core.ReviewBoard)
	}

	listeners := make([]func(AuthState), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	s.logger.Debug("Auth state changed", zap.String("from", string(prev.Status)), zap.String("to", string(next.Status)))
	for _, l := range listeners {
		l(copyState(next))
	}
	return dropped
}

func copyState(st AuthState) AuthState {
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}
