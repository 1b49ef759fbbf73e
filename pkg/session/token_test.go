package session

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/klokku/calgate/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestTokenService() (*TokenService, *utils.MockClock) {
	clock := utils.NewMockClock(testNow)
	return NewTokenService("test-secret", time.Hour, clock), clock
}

func TestIssue_PayloadHasExactlyIdNameEmailAndExp(t *testing.T) {
	// given
	tokens, _ := newTestTokenService()

	// when
	token, err := tokens.Issue(Identity{Id: "1234", Name: "Ada Lovelace", Email: "ada@example.com"})
	require.NoError(t, err)

	// then
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(payload, &fields))
	assert.Len(t, fields, 4)
	assert.Equal(t, "1234", fields["id"])
	assert.Equal(t, "Ada Lovelace", fields["name"])
	assert.Equal(t, "ada@example.com", fields["email"])
	assert.EqualValues(t, testNow.Add(time.Hour).Unix(), fields["exp"])
}

func TestVerify_RoundTrip(t *testing.T) {
	tokens, _ := newTestTokenService()
	token, err := tokens.Issue(Identity{Id: "1234", Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	claims, err := tokens.Verify(token)

	require.NoError(t, err)
	assert.Equal(t, Identity{Id: "1234", Name: "Ada", Email: "ada@example.com"}, claims.Identity())
}

func TestVerify_ExpiresAfterOneHour(t *testing.T) {
	tokens, clock := newTestTokenService()
	token, err := tokens.Issue(Identity{Id: "1"})
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	_, err = tokens.Verify(token)
	assert.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = tokens.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerify_RejectsForeignSecret(t *testing.T) {
	tokens, clock := newTestTokenService()
	other := NewTokenService("another-secret", time.Hour, clock)
	token, err := other.Issue(Identity{Id: "1"})
	require.NoError(t, err)

	_, err = tokens.Verify(token)

	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_RejectsUnsignedToken(t *testing.T) {
	tokens, _ := newTestTokenService()
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Id:               "1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tokens.Verify(unsigned)

	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_RejectsTokenWithoutExpiry(t *testing.T) {
	tokens, _ := newTestTokenService()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Id: "1"}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = tokens.Verify(token)

	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_EmptyToken(t *testing.T) {
	tokens, _ := newTestTokenService()

	_, err := tokens.Verify("")

	assert.ErrorIs(t, err, ErrTokenMissing)
}
