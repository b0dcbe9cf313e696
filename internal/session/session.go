package session

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/pkg/jwt"
	"github.com/fitforge/fitforge-web/pkg/metrics"
)

var (
	// ErrNoSession means the visitor is anonymous
	ErrNoSession = errors.New("no session")

	// ErrMalformedToken means a stored or offered token could not be decoded.
	// The session is cleared and the visitor is treated as anonymous.
	ErrMalformedToken = errors.New("malformed session token")
)

// RoleHint is decoded from the bearer token WITHOUT verifying its signature.
// It decides what to display (navbar links, which pages to offer) and nothing
// else; the course API re-checks every request on its own.
type RoleHint string

const (
	HintUser       RoleHint = models.RoleUser
	HintInstructor RoleHint = models.RoleInstructor
	HintAdmin      RoleHint = models.RoleAdmin
)

// Session is the visitor's credential plus the display hint derived from it
type Session struct {
	Token       string
	Hint        RoleHint
	DisplayName string
}

// Anonymous reports whether s holds no credential
func (s Session) Anonymous() bool {
	return s.Token == ""
}

// Store persists one visitor's session. Web backends key it by a cookie on
// the request; the file backend ignores the request and response.
type Store interface {
	// Set decodes the hint and persists token. A malformed token clears
	// anything stored and returns ErrMalformedToken.
	Set(w http.ResponseWriter, r *http.Request, token string) (Session, error)
	// Get returns ErrNoSession or ErrMalformedToken when there is nothing usable
	Get(r *http.Request) (Session, error)
	Clear(w http.ResponseWriter, r *http.Request) error
	Name() string
}

// Decoder turns a bearer token into a Session
type Decoder struct {
	// LegacyAdminToken, when set, is a literal token treated as an admin
	// session without decoding. Older API deployments hand it out.
	LegacyAdminToken string
}

// Decode extracts the display hint. Unknown or missing roles fall back to
// HintUser. Expiry is not checked; the API reports expired tokens itself.
func (d Decoder) Decode(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrMalformedToken
	}

	if d.LegacyAdminToken != "" && jwt.TimingSafeCompare(token, d.LegacyAdminToken) {
		return Session{Token: token, Hint: HintAdmin, DisplayName: "admin"}, nil
	}

	claims, err := jwt.PeekClaims(token)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	hint := HintUser
	if role, ok := claims["role"].(string); ok {
		switch RoleHint(role) {
		case HintInstructor, HintAdmin:
			hint = RoleHint(role)
		}
	}
	name, _ := claims["sub"].(string)

	return Session{Token: token, Hint: hint, DisplayName: name}, nil
}

func recordEvent(event, backend string) {
	metrics.SessionEvents.WithLabelValues(event, backend).Inc()
}
