package config

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Holding two pool connections open at once forces the pool to dial a
// second one; both must enforce foreign keys or cascade deletes would
// silently depend on which connection serves the statement.
func TestForeignKeysEnforcedOnEveryConnection(t *testing.T) {
	require.NoError(t, InitLogger("dev"))
	require.NoError(t, InitDB(filepath.Join(t.TempDir(), "warehouse_test.db")))

	ctx := context.Background()
	first, err := DB.Conn(ctx)
	require.NoError(t, err)
	defer first.Close()
	second, err := DB.Conn(ctx)
	require.NoError(t, err)
	defer second.Close()

	for _, conn := range []*sql.Conn{first, second} {
		var enabled int
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&enabled))
		assert.Equal(t, 1, enabled)
	}
}
