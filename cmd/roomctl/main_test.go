package main

import (
	"bytes"
	"interviewroom/internal/service"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "roomctl-secret")
	t.Setenv("STORE_DRIVER", "memory")
}

func TestTokenCmd(t *testing.T) {
	setEnv(t)

	out, err := run(t, "token", "user-7", "--name", "Ada", "--ttl", "1h")
	require.NoError(t, err)

	claims, err := service.NewAuthService([]byte("roomctl-secret")).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "user-7", claims.UserID())
	assert.Equal(t, "Ada", claims.Name)

	_, err = run(t, "token")
	assert.Error(t, err)
}

func TestTokenCmd_RequiresSecret(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "")

	_, err := run(t, "token", "user-7")
	assert.Error(t, err)
}

func TestCreateRoomCmd(t *testing.T) {
	setEnv(t)

	out, err := run(t, "create-room", "host-1")
	require.NoError(t, err)
	assert.Len(t, strings.TrimSpace(out), 36)
}

func TestSeedUsersCmd(t *testing.T) {
	setEnv(t)

	out, err := run(t, "seed-users")
	require.NoError(t, err)
	assert.Equal(t, len(demoUsers), strings.Count(out, "upserted"))

	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"u1","name":"One","email":"one@example.com"}]`), 0o600))
	out, err = run(t, "seed-users", "--file", path)
	require.NoError(t, err)
	assert.Equal(t, "upserted u1 (One)\n", out)

	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"nobody"}]`), 0o600))
	_, err = run(t, "seed-users", "-f", path)
	assert.ErrorContains(t, err, "has no id")
}
