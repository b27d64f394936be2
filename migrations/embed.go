package migrations

import "embed"

// Files exposes embedded SQL migrations. Postgres files live at the root
// and are applied lexicographically; the SQLite schema lives under sqlite/.
//
//go:embed *.sql sqlite/*.sql
var Files embed.FS
