package migrations

import "embed"

// FS contains embedded SQLite migrations for the cache entry table.
//
//go:embed *.sql
var FS embed.FS
