// Package migrations embeds the schema shared by the SQLite and PostgreSQL
// backends.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
