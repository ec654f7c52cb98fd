package migrations

import "embed"

// FS holds the patient schema, one directory per SQL dialect.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
