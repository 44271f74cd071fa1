package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionFactory builds an unstarted session for id.
type SessionFactory func(id string) *Session

// RegistryOptions tunes a Registry.
type RegistryOptions struct {
	// IdleTimeout closes sessions inactive for longer than this.
	IdleTimeout time.Duration
	// SweepInterval is how often idle sessions are looked for; zero disables the sweeper.
	SweepInterval time.Duration
	Logger        *zap.Logger
}

// Registry holds the live sessions keyed by their opaque id.
type Registry struct {
	factory SessionFactory
	opts    RegistryOptions
	logger  *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool

	stop chan struct{}
	done chan struct{}
}

// NewRegistry creates a registry and starts the idle sweeper when configured.
func NewRegistry(factory SessionFactory, opts RegistryOptions) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		factory:  factory,
		opts:     opts,
		logger:   logger,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	if opts.SweepInterval > 0 && opts.IdleTimeout > 0 {
		go r.sweepLoop()
	} else {
		close(r.done)
	}
	return r
}

// Get returns a live session and marks it active.
func (r *Registry) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok || s.Closed() {
		return nil, false
	}
	s.Touch()
	return s, true
}

// Create starts a new session under a fresh id.
func (r *Registry) Create() (*Session, error) {
	id := uuid.NewString()
	s := r.factory(id)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		s.Close()
		return nil, ErrSessionClosed
	}
	r.sessions[id] = s
	r.mu.Unlock()

	s.Start()
	r.logger.Debug("Session created", zap.String("sessionId", id))
	return s, nil
}

// GetOrCreate returns the session for id, or a new one when id is unknown or expired.
func (r *Registry) GetOrCreate(id string) (*Session, bool, error) {
	if s, ok := r.Get(id); ok {
		return s, false, nil
	}
	s, err := r.Create()
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// Remove closes and forgets a session.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than IdleTimeout and returns how many it closed.
func (r *Registry) Sweep() int {
	if r.opts.IdleTimeout <= 0 {
		return 0
	}
	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.Closed() || s.IdleFor() > r.opts.IdleTimeout {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		r.logger.Info("Idle sessions closed", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Close stops the sweeper and closes every session.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.done
		return
	}
	r.closed = true
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	close(r.stop)
	<-r.done
	for _, s := range sessions {
		s.Close()
	}
}

func (r *Registry) sweepLoop() {
	defer close(r.done)
	ticker := time.NewTicker(r.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
