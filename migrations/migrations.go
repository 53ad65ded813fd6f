// Package migrations holds the storefront database schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
