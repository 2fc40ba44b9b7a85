package jwt

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestNewIssuer_EmptySecret(t *testing.T) {
	_, err := NewIssuer("devportal", nil, time.Hour)
	assert.ErrorIs(t, err, ErrWeakSecret)
}

func TestIssueAccess_Claims(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	iss, err := NewIssuer("devportal", testSecret, 30*24*time.Hour)
	require.NoError(t, err)
	iss.WithClock(fixedClock(now))

	tok, exp, err := iss.IssueAccess(AccessClaims{
		UserID: "u1", Username: "alice", Email: "alice@example.com",
		ApplicationID: "a1", ClientID: "app_x", Role: "viewer",
	})
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*24*time.Hour), exp)

	claims, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims["userId"])
	assert.Equal(t, "u1", claims["sub"])
	assert.Equal(t, "alice", claims["username"])
	assert.Equal(t, "alice@example.com", claims["email"])
	assert.Equal(t, "a1", claims["applicationId"])
	assert.Equal(t, "app_x", claims["clientId"])
	assert.Equal(t, "viewer", claims["role"])
	assert.Equal(t, "devportal", claims["iss"])
	assert.EqualValues(t, exp.Unix(), claims["exp"])
}

func TestParse_RejectsExpiredAndForeign(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	iss, err := NewIssuer("devportal", testSecret, time.Minute)
	require.NoError(t, err)
	iss.WithClock(fixedClock(now))

	tok, _, err := iss.IssueAccess(AccessClaims{UserID: "u1"})
	require.NoError(t, err)

	iss.WithClock(fixedClock(now.Add(2 * time.Minute)))
	_, err = iss.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewIssuer("devportal", []byte("another-secret-another-secret-xx"), time.Minute)
	require.NoError(t, err)
	other.WithClock(fixedClock(now))
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParsePortalSession(t *testing.T) {
	now := time.Now()
	iss, err := NewIssuer("devportal", testSecret, time.Hour)
	require.NoError(t, err)

	session, err := iss.SignRaw(jwtv5.MapClaims{"id": "u42", "exp": now.Add(time.Hour).Unix()})
	require.NoError(t, err)
	id, err := iss.ParsePortalSession(session)
	require.NoError(t, err)
	assert.Equal(t, "u42", id)

	noID, err := iss.SignRaw(jwtv5.MapClaims{"exp": now.Add(time.Hour).Unix()})
	require.NoError(t, err)
	_, err = iss.ParsePortalSession(noID)
	assert.ErrorIs(t, err, ErrMissingClaim)

	_, err = iss.ParsePortalSession("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsNoneAlg(t *testing.T) {
	iss, err := NewIssuer("devportal", testSecret, time.Hour)
	require.NoError(t, err)
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, jwtv5.MapClaims{"id": "u1", "exp": time.Now().Add(time.Hour).Unix()})
	s, err := tk.SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = iss.Parse(s)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
