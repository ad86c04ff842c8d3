package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultIdleTimeout ends a session after thirty minutes without Touch.
const DefaultIdleTimeout = 30 * time.Minute

type State string

const (
	StateLoggedOut  State = "logged_out"
	StateActive     State = "active"
	StateTerminated State = "terminated"
)

type SessionOptions struct {
	// IdleTimeout of zero disables the inactivity timer.
	IdleTimeout time.Duration
	// OnEnd is called once per ended session, outside the session lock.
	OnEnd func(Reason)
}

// Session owns the tokens of one logged in user along with its inactivity
// timer. Its lifecycle is logged_out, then active (possibly refreshed many
// times), then terminated with a Reason.
type Session struct {
	store TokenStore
	idle  time.Duration
	onEnd func(Reason)

	mu        sync.Mutex
	state     State
	reason    Reason
	tokens    *Tokens
	timer     *time.Timer
	gen       uint64
	refreshes int

	refreshing singleflight.Group
}

func NewSession(store TokenStore, opts SessionOptions) *Session {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Session{
		store: store,
		idle:  opts.IdleTimeout,
		onEnd: opts.OnEnd,
		state: StateLoggedOut,
	}
}

// Start activates the session with freshly issued tokens.
func (s *Session) Start(t Tokens) error {
	if err := s.store.Save(&t); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = &t
	s.state = StateActive
	s.reason = ""
	s.armLocked()
	return nil
}

// Resume activates the session from stored tokens. It reports false when the
// store is empty.
func (s *Session) Resume() (bool, error) {
	t, err := s.store.Load()
	if err != nil || t == nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = t
	s.state = StateActive
	s.reason = ""
	s.armLocked()
	return true, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reason is set once the session is terminated.
func (s *Session) Reason() Reason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// Refreshes counts successful token refreshes.
func (s *Session) Refreshes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}

// Tokens returns a copy of the current tokens, or a no_session error.
func (s *Session) Tokens() (Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive || s.tokens == nil {
		return Tokens{}, &SessionError{Reason: ReasonNoSession}
	}
	return *s.tokens, nil
}

// Touch records user activity and restarts the inactivity timer.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateActive {
		s.armLocked()
	}
}

// End terminates an active session. Stored tokens are cleared and the
// inactivity timer is stopped. Ending an inactive session does nothing.
func (s *Session) End(reason Reason) {
	s.endIf(reason, func() bool { return true })
}

// endIf ends the session when it is active and current reports true. current
// runs under the session lock.
func (s *Session) endIf(reason Reason, current func() bool) {
	s.mu.Lock()
	if s.state != StateActive || !current() {
		s.mu.Unlock()
		return
	}
	s.stopLocked()
	s.state = StateTerminated
	s.reason = reason
	s.tokens = nil
	s.mu.Unlock()

	_ = s.store.Clear()
	if s.onEnd != nil {
		s.onEnd(reason)
	}
}

// refresh exchanges the refresh token once for every caller that saw stale
// rejected. Callers arriving after another refresh already replaced stale get
// the new access token without a second exchange. A failed exchange ends the
// session with ReasonSessionExpired.
func (s *Session) refresh(ctx context.Context, stale string, exchange func(ctx context.Context, refresh string) (*Tokens, error)) (string, error) {
	v, err, _ := s.refreshing.Do("refresh", func() (interface{}, error) {
		s.mu.Lock()
		if s.state != StateActive || s.tokens == nil {
			s.mu.Unlock()
			return nil, &SessionError{Reason: ReasonNoSession}
		}
		if s.tokens.Access != stale {
			access := s.tokens.Access
			s.mu.Unlock()
			return access, nil
		}
		refreshToken := s.tokens.Refresh
		s.mu.Unlock()

		fresh, err := exchange(ctx, refreshToken)
		if err != nil {
			s.End(ReasonSessionExpired)
			return nil, &SessionError{Reason: ReasonSessionExpired}
		}

		s.mu.Lock()
		if s.state != StateActive {
			s.mu.Unlock()
			return nil, &SessionError{Reason: ReasonNoSession}
		}
		s.tokens = fresh
		s.refreshes++
		s.mu.Unlock()

		if err := s.store.Save(fresh); err != nil {
			return nil, err
		}
		return fresh.Access, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// armLocked (re)starts the inactivity timer. The generation check keeps a
// timer that already fired from ending a session that has since been
// touched or restarted.
func (s *Session) armLocked() {
	s.stopLocked()
	if s.idle <= 0 {
		return
	}
	gen := s.gen
	s.timer = time.AfterFunc(s.idle, func() {
		s.endIf(ReasonInactivity, func() bool { return s.gen == gen })
	})
}

func (s *Session) stopLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
