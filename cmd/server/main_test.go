package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/ougirez/zstats/internal/pkg/utils"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCommand(t *testing.T) {
	viper.Set(constants.ViperSecretKey, "cli-secret")
	t.Cleanup(viper.Reset)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"token", "--memory", "--role", "admin", "--log-level", "error",
		"--user", "7c9e6679-7425-40de-944b-e07fc1f90ae7"})
	require.NoError(t, rootCmd.Execute())

	token, err := utils.ParseAuthToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "7c9e6679-7425-40de-944b-e07fc1f90ae7", token.UserID)
	assert.Equal(t, domain.RoleAdmin, token.Role)
}

func TestTokenCommandRejectsUnknownRole(t *testing.T) {
	viper.Set(constants.ViperSecretKey, "cli-secret")
	t.Cleanup(viper.Reset)

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"token", "--memory", "--role", "owner", "--user", "7c9e6679-7425-40de-944b-e07fc1f90ae7"})
	assert.ErrorIs(t, rootCmd.Execute(), constants.ErrValidation)
}

func TestImportRequiresDSN(t *testing.T) {
	t.Cleanup(viper.Reset)
	inMemory = false

	rootCmd.SetArgs([]string{"import", "--log-level", "error"})
	assert.Error(t, rootCmd.Execute())
}
