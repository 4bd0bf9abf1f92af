package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParseJWT(t *testing.T) {
	token, err := SignJWT("secret", 42, "freelancer", 60)
	require.NoError(t, err)

	claims, err := ParseJWT("secret", token)
	require.NoError(t, err)
	uid, err := claims.UID()
	require.NoError(t, err)
	assert.Equal(t, 42, uid)
	assert.Equal(t, "freelancer", claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseJWTRejects(t *testing.T) {
	token, err := SignJWT("secret", 1, "employer", 60)
	require.NoError(t, err)

	_, err = ParseJWT("other-secret", token)
	assert.Error(t, err)

	expired, err := SignJWT("secret", 1, "employer", -5)
	require.NoError(t, err)
	_, err = ParseJWT("secret", expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseJWT("secret", none)
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
}

func TestParseErrorsUsesJSONNames(t *testing.T) {
	type input struct {
		JobType string `json:"jobType" validate:"required"`
		Rating  int    `json:"rating" validate:"min=1,max=5"`
		Role    string `json:"role" validate:"oneof=freelancer employer"`
		Email   string `json:"email" validate:"email"`
	}
	err := GetValidator().Struct(input{Rating: 9, Role: "admin", Email: "nope"})
	require.Error(t, err)

	assert.ElementsMatch(t, []string{
		"jobType field is required",
		"rating must be less than or equal to 5",
		"role must be one of: freelancer, employer",
		"email must be a valid email address",
	}, ParseErrors(err))
}

func TestParseErrorsUnknown(t *testing.T) {
	assert.Equal(t, []string{"Unknown error"}, ParseErrors(assert.AnError))
}
