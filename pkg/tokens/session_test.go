package tokens

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-jwt-secret-0123456789")

func TestSignSession_SetsExpectedClaims(t *testing.T) {
	issued := time.Now().Truncate(time.Second)

	token, exp, err := SignSession("7", "user1", "user", issued, testSecret)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, issued.Add(24*time.Hour), exp)

	claims, err := SessionClaimsFromToken(token, testSecret, func() time.Time { return issued })
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "user1", claims.Username)
	assert.Equal(t, "user", claims.Role)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
	assert.Equal(t, issued.Unix(), claims.IssuedAt.Unix())
}

func TestSessionClaimsFromToken_Expiry(t *testing.T) {
	issued := time.Now().Truncate(time.Second)
	token, _, err := SignSession("1", "admin1", "admin", issued, testSecret)
	require.NoError(t, err)

	_, err = SessionClaimsFromToken(token, testSecret, func() time.Time { return issued.Add(24*time.Hour - time.Second) })
	require.NoError(t, err)

	_, err = SessionClaimsFromToken(token, testSecret, func() time.Time { return issued.Add(24*time.Hour + time.Second) })
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestSessionClaimsFromToken_WrongSecret(t *testing.T) {
	token, _, err := SignSession("1", "admin1", "admin", time.Now(), testSecret)
	require.NoError(t, err)

	_, err = SessionClaimsFromToken(token, []byte("another-secret-0123456789"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenSignatureInvalid))
}

func TestSessionClaimsFromToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := SessionClaims{
		Username: "admin1",
		Role:     "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = SessionClaimsFromToken(none, testSecret, nil)
	require.Error(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
	require.NoError(t, err)
	_, err = SessionClaimsFromToken(hs512, testSecret, nil)
	require.Error(t, err)
}

func TestSessionClaimsFromToken_RequiresExpiry(t *testing.T) {
	claims := SessionClaims{Username: "admin1", Role: "admin", RegisteredClaims: jwt.RegisteredClaims{Subject: "1"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = SessionClaimsFromToken(token, testSecret, nil)
	require.Error(t, err)
}

func TestEmptySecret(t *testing.T) {
	_, _, err := SignSession("1", "a", "user", time.Now(), nil)
	assert.ErrorIs(t, err, ErrEmptySecret)

	_, err = SessionClaimsFromToken("x.y.z", nil, nil)
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestMalformedToken(t *testing.T) {
	_, err := SessionClaimsFromToken("not-a-jwt", testSecret, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenMalformed))
}
