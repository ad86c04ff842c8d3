package service

import (
	"net/smtp"
	"time"
)

func SetAuthClock(s *AuthService, now func() time.Time) { s.now = now }

func SetResetClock(s *PasswordResetService, now func() time.Time) { s.now = now }

// DispatchInline makes reset emails go out before Request returns.
func DispatchInline(s *PasswordResetService) {
	s.dispatch = func(f func()) { f() }
}

func SetSendMail(s *EmailService, send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error) {
	s.send = send
}

func SetTokenStoreClock(s *MemoryTokenStore, now func() time.Time) { s.now = now }
