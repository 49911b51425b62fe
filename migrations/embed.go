// Package migrations embeds the goose SQL migrations so binaries and tests
// do not depend on the working directory.
package migrations

import "embed"

// Dir is the directory inside FS that holds the migrations.
const Dir = "goose_sql"

//go:embed goose_sql/*.sql
var FS embed.FS
