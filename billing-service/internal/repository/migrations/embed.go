package migrations

import "embed"

// FS holds the billing schema, one directory per SQL dialect.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
