package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"eventhub/db/memory"
	"eventhub/internal/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateNeedsPostgres(t *testing.T) {
	_, err := run(t, "--store", "memory", "migrate", "status")
	require.ErrorContains(t, err, "--store=postgres")
}

func TestUserAddNeedsPostgres(t *testing.T) {
	_, err := run(t, "--store", "memory", "user", "add", "--name", "Dana", "--email", "dana@uni.edu")
	require.ErrorContains(t, err, "postgres")
}

func TestInvalidConfigIsReported(t *testing.T) {
	_, err := run(t, "--store", "memory", "--log-level", "loud", "migrate")
	require.ErrorContains(t, err, "invalid configuration")
}

func TestMemoryBackendWiring(t *testing.T) {
	ctx := context.Background()
	a := &app{
		cfg:    &config.Config{Store: "memory"},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	store, closeStore, err := a.openBackend(ctx)
	require.NoError(t, err)
	defer closeStore.Close()
	require.IsType(t, &memory.Store{}, store)

	rec, closeRedis, err := a.recorders(ctx, store)
	require.NoError(t, err)
	defer closeRedis.Close()
	require.Len(t, rec, 2)
}
