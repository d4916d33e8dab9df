// Package migrations embeds the Postgres schema migrations for the account store.
package migrations

import "embed"

// FS holds the goose SQL migrations.
//
//go:embed *.sql
var FS embed.FS
