package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(files, "sql")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Fatalf("unexpected migration file %s", name)
		}
	}

	assert.Equal(t, ups, downs)
}

func TestSchemaKeepsUniquenessToActiveRows(t *testing.T) {
	up, err := fs.ReadFile(files, "sql/000001_create_account.up.sql")
	require.NoError(t, err)

	schema := string(up)
	assert.Contains(t, schema, "account_phone_nr_active_key")
	assert.Contains(t, schema, "WHERE deleted_time IS NULL")
}
