package client

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func recordEnds() (chan Reason, func(Reason)) {
	ch := make(chan Reason, 4)
	return ch, func(r Reason) { ch <- r }
}

func TestSessionEndsAfterInactivity(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ended, onEnd := recordEnds()
	s := NewSession(nil, SessionOptions{IdleTimeout: 20 * time.Millisecond, OnEnd: onEnd})
	require.NoError(t, s.Start(Tokens{Access: "a", Refresh: "r"}))

	select {
	case r := <-ended:
		assert.Equal(t, ReasonInactivity, r)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not expire")
	}
	assert.Equal(t, StateTerminated, s.State())
	assert.Equal(t, ReasonInactivity, s.Reason())

	_, err := s.Tokens()
	var sessErr *SessionError
	require.ErrorAs(t, err, &sessErr)
	assert.Equal(t, ReasonNoSession, sessErr.Reason)
}

func TestTouchKeepsSessionAlive(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ended, onEnd := recordEnds()
	s := NewSession(nil, SessionOptions{IdleTimeout: 100 * time.Millisecond, OnEnd: onEnd})
	require.NoError(t, s.Start(Tokens{Access: "a", Refresh: "r"}))

	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		s.Touch()
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, StateActive, s.State())
	assert.Empty(t, ended)

	select {
	case r := <-ended:
		assert.Equal(t, ReasonInactivity, r)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not expire once activity stopped")
	}
}

func TestEndStopsInactivityTimer(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ended, onEnd := recordEnds()
	s := NewSession(nil, SessionOptions{IdleTimeout: 30 * time.Millisecond, OnEnd: onEnd})
	require.NoError(t, s.Start(Tokens{Access: "a", Refresh: "r"}))

	s.End(ReasonLogout)
	time.Sleep(100 * time.Millisecond)

	require.Len(t, ended, 1)
	assert.Equal(t, ReasonLogout, <-ended)
	assert.Equal(t, ReasonLogout, s.Reason())

	// Ending twice is a no-op.
	s.End(ReasonSessionExpired)
	assert.Empty(t, ended)
}

func TestZeroIdleTimeoutDisablesTimer(t *testing.T) {
	s := NewSession(nil, SessionOptions{})
	require.NoError(t, s.Start(Tokens{Access: "a", Refresh: "r"}))
	s.Touch()
	assert.Equal(t, StateActive, s.State())
}

func TestResumeFromFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")
	store := NewFileStore(path)

	s := NewSession(store, SessionOptions{})
	ok, err := s.Resume()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, StateLoggedOut, s.State())

	require.NoError(t, s.Start(Tokens{Access: "a", Refresh: "r"}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	resumed := NewSession(NewFileStore(path), SessionOptions{})
	ok, err = resumed.Resume()
	require.NoError(t, err)
	assert.True(t, ok)
	tokens, err := resumed.Tokens()
	require.NoError(t, err)
	assert.Equal(t, Tokens{Access: "a", Refresh: "r"}, tokens)

	resumed.End(ReasonLogout)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestAPIErrorUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  APIError
		want string
	}{
		{"fields first", APIError{Message: "Top", Fields: map[string][]string{"b": {"B"}, "a": {"A"}}}, "A"},
		{"top level", APIError{Message: "Not found."}, "Not found."},
		{"unstructured", APIError{StatusCode: 502}, GenericMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.UserMessage())
		})
	}
}
