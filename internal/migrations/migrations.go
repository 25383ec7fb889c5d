package migrations

import (
	_ "embed"

	"github.com/goran-ethernal/subindex/internal/db"
)

//go:embed 0001_block_store.sql
var mig001 string

// RunMigrations applies the block store schema to the database at dbPath.
func RunMigrations(dbPath string) error {
	migrations := []db.Migration{
		{
			ID:  "0001_block_store",
			SQL: mig001,
		},
	}
	return db.RunMigrations(dbPath, migrations)
}
