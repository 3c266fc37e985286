package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clinic-schedule-api/internal/config"
)

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{StoreDriver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "nested", "s.db")}
	st, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer st.Close()

	n, err := st.CountUsers(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StoreDriver: "mysql"}, zap.NewNop())
	assert.Error(t, err)
}
