package bootstrap

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-registry/internal/config"
	"user-registry/internal/domain"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	_, err = NewLogger("loud")
	require.Error(t, err)
}

func TestOpenUsers_SQLite(t *testing.T) {
	var cfg config.Config
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.Path = filepath.Join(t.TempDir(), "nested", "users.db")

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ctx := context.Background()
	repo, closeFn, err := OpenUsers(ctx, cfg, logger)
	require.NoError(t, err)
	defer closeFn()

	require.NoError(t, repo.Insert(ctx, &domain.User{ID: "1", FullName: "Jane", Email: "jane@x.com", PasswordHash: "h"}))
	users, err := repo.FindAll(ctx, domain.FullProjection())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestOpenUsers_UnknownDriver(t *testing.T) {
	var cfg config.Config
	cfg.Database.Driver = "redis"
	_, _, err := OpenUsers(context.Background(), cfg, logrus.New())
	require.Error(t, err)
}

func TestNewSnapshotStore_RequiresBucket(t *testing.T) {
	var cfg config.Config
	_, err := NewSnapshotStore(context.Background(), cfg, logrus.New())
	require.Error(t, err)
}
