// Package migrations embeds the goose SQL migrations applied at startup.
package migrations

import "embed"

// FS holds the migration files, ordered by their numeric prefix.
//
//go:embed *.sql
var FS embed.FS
