// Package migrations embeds the run journal schema into the binaries.
// Importing it for side effects registers the files with the database
// package.
package migrations

import (
	"embed"

	"github.com/pisolar/energylog/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
