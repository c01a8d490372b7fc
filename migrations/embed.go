package migrations

import "embed"

// Files holds the SQL migrations, ordered by their numeric prefix.
//
//go:embed *.sql
var Files embed.FS
