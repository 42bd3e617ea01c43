// Package migrations embeds the SQL schema of the similarity index database.
package migrations

import "embed"

// FS contains the versioned NNN_name.up.sql files, applied in order.
//
//go:embed *.sql
var FS embed.FS
