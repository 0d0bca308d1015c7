// Package migrations содержит схему PostgreSQL
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
