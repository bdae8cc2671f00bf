// Package migrations embeds SQL migration files into the binary,
// so the vault store can be created without SQL files on disk.
package migrations

import (
	"embed"

	"github.com/sofrahq/sofra-admin-session/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
