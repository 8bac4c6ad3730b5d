// Package migrations holds the goose SQL migrations for the compliance schema:
// companies, vehicles, trips, deadlines and alerts, one file per table.
// cmd/dbtool applies them; testutil applies them to the integration database.
package migrations

import "embed"

// FS is handed to goose.NewProvider so binaries never depend on a
// migrations directory at runtime.
//
//go:embed *.sql
var FS embed.FS
