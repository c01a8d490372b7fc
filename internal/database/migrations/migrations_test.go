package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sqlfiles "cine-storefront/migrations"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(sqlfiles.Files, ".")
	require.NoError(t, err)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}

func TestEmbeddedSourceVersions(t *testing.T) {
	src, err := iofs.New(sqlfiles.Files, ".")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, first)

	next, err := src.Next(first)
	require.NoError(t, err)
	assert.Equal(t, uint(2), next)
}

func TestSchemaDeclaresAtomicityConstraints(t *testing.T) {
	data, err := fs.ReadFile(sqlfiles.Files, "000001_init_schema.up.sql")
	require.NoError(t, err)
	schema := string(data)

	assert.Contains(t, schema, "CREATE UNIQUE INDEX IF NOT EXISTS orders_order_code_key")
	assert.Contains(t, schema, "key        TEXT        NOT NULL UNIQUE")
	assert.Contains(t, schema, "orders_used_at_matches_status")
}

func TestNewRunnerDefaultsSource(t *testing.T) {
	r := NewRunner(nil, MigrateOptions{}, nil)
	assert.NotNil(t, r.options.Source)
	assert.NoError(t, r.Close())
}
