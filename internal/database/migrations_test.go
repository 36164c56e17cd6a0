package database

import (
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFiles_SortedSQLOnly(t *testing.T) {
	fsys := fstest.MapFS{
		"002_seed_menu.sql": {Data: []byte("INSERT")},
		"001_schema.sql":    {Data: []byte("CREATE")},
		"README.md":         {Data: []byte("docs")},
	}

	files, err := migrationFiles(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_schema.sql", "002_seed_menu.sql"}, files)
}

func TestPendingMigrations(t *testing.T) {
	files := []string{"001_schema.sql", "002_seed_menu.sql", "003_more.sql"}

	tests := []struct {
		name    string
		applied map[string]bool
		want    []string
	}{
		{"fresh database", map[string]bool{}, files},
		{"partially applied", map[string]bool{"001_schema.sql": true}, []string{"002_seed_menu.sql", "003_more.sql"}},
		{"up to date", map[string]bool{"001_schema.sql": true, "002_seed_menu.sql": true, "003_more.sql": true}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pendingMigrations(files, tt.applied))
		})
	}
}

func TestSchemaTriggerNotifiesListenerChannel(t *testing.T) {
	schema, err := os.ReadFile("../../migrations/001_schema.sql")
	require.NoError(t, err)

	assert.Contains(t, string(schema), "pg_notify('"+MenuChangesChannel+"'")
}
