package testdb

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/bundsx-labs/bundsx-node/internal/db"
	"github.com/stretchr/testify/require"
)

func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	sqlite, err := db.OpenSqlite(filepath.Join(t.TempDir(), "sqlite"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = sqlite.Close()
	})
	return sqlite
}
