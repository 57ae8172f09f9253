package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/unierp-backend/internal/config"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/service"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret: "erpctl-test-secret",
		JWTExpiry: time.Hour,
		LogLevel:  "error",
		LogFormat: "json",
	}
}

func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(cfg)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestTokenForUserID(t *testing.T) {
	cfg := testConfig()
	id := uuid.New()

	out, err := run(t, cfg, "token", "--user-id", id.String(), "--role", "professor", "--ttl", "10m")
	require.NoError(t, err)

	claims, err := service.NewAuthService(cfg).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, model.RoleProfessor, claims.Role)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenRejectsBadFlags(t *testing.T) {
	cases := map[string][]string{
		"no identity":  {"token"},
		"both":         {"token", "--email", "a@x", "--user-id", uuid.NewString(), "--role", "admin"},
		"bad uuid":     {"token", "--user-id", "nope", "--role", "admin"},
		"unknown role": {"token", "--user-id", uuid.NewString(), "--role", "dean"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := run(t, testConfig(), args...)
			assert.Error(t, err)
		})
	}
}

func TestSeedCheck(t *testing.T) {
	out, err := run(t, testConfig(), "seed", "--check", "--file", "../../seeds/catalog.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "5 users, 5 courses, 4 offerings")
}

func TestSeedCheckMissingFile(t *testing.T) {
	_, err := run(t, testConfig(), "seed", "--check", "--file", "does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read seed file")
}

func TestMigrateDownRejectsBadSteps(t *testing.T) {
	_, err := run(t, testConfig(), "migrate", "down", "zero")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps must be a positive integer")
}
