package session

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/fitforge/fitforge-web/pkg/jwt"
	"github.com/fitforge/fitforge-web/pkg/logger"
	"go.uber.org/zap"
)

// CookieStore keeps the bearer token inside an HS256-signed cookie. The
// envelope's own expiry bounds the cookie; it says nothing about whether the
// bearer token is still accepted by the API.
type CookieStore struct {
	decoder Decoder
	tokens  *jwt.TokenManager
	cookie  CookieOptions
}

// NewCookieStore creates a cookie-backed store
func NewCookieStore(tokens *jwt.TokenManager, decoder Decoder, cookie CookieOptions) *CookieStore {
	if cookie.TTL == 0 {
		cookie.TTL = tokens.TTL()
	}
	return &CookieStore{decoder: decoder, tokens: tokens, cookie: cookie}
}

func (s *CookieStore) Name() string { return "cookie" }

func (s *CookieStore) Set(w http.ResponseWriter, r *http.Request, token string) (Session, error) {
	sess, err := s.decoder.Decode(token)
	if err != nil {
		s.cookie.expire(w)
		recordEvent("malformed", s.Name())
		return Session{}, err
	}

	envelope, err := s.tokens.Seal(token)
	if err != nil {
		return Session{}, fmt.Errorf("failed to seal session: %w", err)
	}
	s.cookie.write(w, envelope)
	recordEvent("set", s.Name())

	return sess, nil
}

func (s *CookieStore) Get(r *http.Request) (Session, error) {
	envelope, ok := s.cookie.read(r)
	if !ok {
		return Session{}, ErrNoSession
	}

	claims, err := s.tokens.Open(envelope)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return Session{}, ErrNoSession
		}
		logger.Debug("Rejected session cookie", zap.Error(err))
		return Session{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	return s.decoder.Decode(claims.Bearer)
}

func (s *CookieStore) Clear(w http.ResponseWriter, _ *http.Request) error {
	s.cookie.expire(w)
	recordEvent("cleared", s.Name())
	return nil
}
