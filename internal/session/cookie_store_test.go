package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fitforge/fitforge-web/pkg/jwt"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newCookieStore(ttlHours int) *CookieStore {
	return NewCookieStore(jwt.NewTokenManager(testSecret, "fitforge-web", ttlHours), Decoder{}, CookieOptions{})
}

func TestCookieStore_SetGet(t *testing.T) {
	store := newCookieStore(1)
	token := apiToken(t, gojwt.MapClaims{"sub": "coach_anna", "role": "instructor"})

	rec := httptest.NewRecorder()
	sess, err := store.Set(rec, httptest.NewRequest(http.MethodPost, "/login", nil), token)
	require.NoError(t, err)
	assert.Equal(t, HintInstructor, sess.Hint)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.NotContains(t, cookies[0].Value, token, "bearer token is wrapped, not stored raw")

	got, err := store.Get(carry(rec))
	require.NoError(t, err)
	assert.Equal(t, token, got.Token)
	assert.Equal(t, HintInstructor, got.Hint)
}

func TestCookieStore_GetWithoutCookie(t *testing.T) {
	_, err := newCookieStore(1).Get(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCookieStore_SetMalformedClearsCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	_, err := newCookieStore(1).Set(rec, httptest.NewRequest(http.MethodPost, "/login", nil), "garbage")
	assert.ErrorIs(t, err, ErrMalformedToken)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestCookieStore_TamperedCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: defaultCookieName, Value: "eyJhbGciOiJIUzI1NiJ9.e30.forged"})

	_, err := newCookieStore(1).Get(req)
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestCookieStore_ExpiredEnvelope(t *testing.T) {
	store := newCookieStore(-1)
	rec := httptest.NewRecorder()
	_, err := store.Set(rec, httptest.NewRequest(http.MethodPost, "/login", nil), apiToken(t, gojwt.MapClaims{"sub": "a"}))
	require.NoError(t, err)

	_, err = store.Get(carry(rec))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCookieStore_Clear(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, newCookieStore(1).Clear(rec, httptest.NewRequest(http.MethodPost, "/logout", nil)))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, defaultCookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
