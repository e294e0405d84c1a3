package migrations

import "embed"

// FS embeds the SQL migrations for the client state database.
//
//go:embed *.sql
var FS embed.FS
