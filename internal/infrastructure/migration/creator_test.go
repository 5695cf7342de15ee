package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "Add Return Requests Table")
	require.NoError(t, err)

	assert.Equal(t, mf.Version+"_add_return_requests_table.up.sql", filepath.Base(mf.UpPath))
	assert.Equal(t, mf.Version+"_add_return_requests_table.down.sql", filepath.Base(mf.DownPath))
	assert.FileExists(t, mf.UpPath)
	assert.FileExists(t, mf.DownPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "Add Return Requests Table")
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(dir, "init")
	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase passthrough", "add_table", "add_table"},
		{"mixed case and spaces", "Add Return Requests", "add_return_requests"},
		{"hyphens collapse", "add--return--index", "add_return_index"},
		{"special characters stripped", "add!@#table", "addtable"},
		{"trailing separator trimmed", "add_table ", "add_table"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_init.up.sql"), []byte("-- up"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_init.down.sql"), []byte("-- down"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "002_indexes.up.sql"), []byte("-- up"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore"), 0644))

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init", "002_indexes"}, migrations)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, migrations)
}
