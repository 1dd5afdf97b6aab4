// Package migrations embeds the SQL schema of each supported database.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Postgres returns the PostgreSQL migration files
func Postgres() fs.FS {
	sub, _ := fs.Sub(files, "postgres")
	return sub
}

// SQLite returns the SQLite migration files
func SQLite() fs.FS {
	sub, _ := fs.Sub(files, "sqlite")
	return sub
}
