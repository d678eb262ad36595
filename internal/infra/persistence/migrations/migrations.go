// Package migrations embeds the SQL schema applied by goose.
package migrations

import "embed"

// FS holds every goose migration file of the service.
//
//go:embed *.sql
var FS embed.FS
