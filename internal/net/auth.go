package net

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// maxAuthFailures closes a console after this many rejected passwords.
const maxAuthFailures = 3

// Authenticator checks a console password.
type Authenticator func(password string) bool

// BcryptAuthenticator accepts passwords matching a bcrypt hash. An empty
// hash returns nil, leaving the console open.
func BcryptAuthenticator(hash string) Authenticator {
	if hash == "" {
		return nil
	}
	return func(password string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}
}

// HashPassword returns the bcrypt hash stored in console.password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// authenticate handles one line of an unauthenticated session on the
// reader goroutine. It reports whether the session may keep reading.
func (s *Session) authenticate(line string) bool {
	f := strings.Fields(line)
	if len(f) == 2 && strings.EqualFold(f[0], "auth") && s.auth(f[1]) {
		s.authed.Store(true)
		s.log.Info("console authenticated", zap.String("ip", s.IP))
		return s.direct("authenticated")
	}
	s.authFailures++
	if s.authFailures >= maxAuthFailures {
		s.log.Warn("console authentication failed, closing", zap.String("ip", s.IP))
		s.direct("too many failed attempts")
		return false
	}
	return s.direct("authentication required: auth <password>")
}

// direct queues a reply from the reader goroutine, bypassing outBuf.
func (s *Session) direct(line string) bool {
	select {
	case s.OutQueue <- line:
		return true
	case <-s.closeCh:
		return false
	}
}
