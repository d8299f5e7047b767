package utils

import (
	"testing"
	"time"

	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withSecret(t *testing.T, secret string) {
	t.Helper()
	viper.Set(constants.ViperSecretKey, secret)
	viper.Set(constants.ViperTokenTTLKey, time.Hour)
	t.Cleanup(func() {
		viper.Set(constants.ViperSecretKey, "")
	})
}

func TestAuthTokenRoundTrip(t *testing.T) {
	withSecret(t, "test-secret")

	token, err := GenerateAuthToken(&AuthTokenWrapper{UserID: "u-1", Role: domain.RoleAdmin})
	require.NoError(t, err)

	parsed, err := ParseAuthToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", parsed.UserID)
	assert.True(t, parsed.IsAdmin())
	assert.Greater(t, parsed.ExpiresAt, time.Now().Unix())
}

func TestParseAuthTokenRejects(t *testing.T) {
	withSecret(t, "test-secret")

	signed, err := GenerateAuthToken(&AuthTokenWrapper{
		UserID: "u-1",
		Role:   domain.RoleUser,
	})
	require.NoError(t, err)

	viper.Set(constants.ViperSecretKey, "other-secret")
	_, err = ParseAuthToken(signed)
	assert.ErrorIs(t, err, constants.ErrUnauthorized)

	viper.Set(constants.ViperSecretKey, "test-secret")
	w := &AuthTokenWrapper{UserID: "u-1"}
	w.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	stale, err := GenerateAuthToken(w)
	require.NoError(t, err)
	_, err = ParseAuthToken(stale)
	assert.ErrorIs(t, err, constants.ErrUnauthorized)

	_, err = ParseAuthToken("not-a-token")
	assert.ErrorIs(t, err, constants.ErrUnauthorized)
}

func TestGenerateAuthTokenNoSecret(t *testing.T) {
	withSecret(t, "")

	_, err := GenerateAuthToken(&AuthTokenWrapper{UserID: "u-1"})
	assert.Error(t, err)
}
