// Package db embeds the schema migrations and the row level security assets.
package db

import (
	"embed"
	"io/fs"
)

var (
	//go:embed migrations/*.sql
	migrations embed.FS

	//go:embed rls/policies.sql
	policies string

	//go:embed rls/tables.yaml
	tables []byte
)

// Migrations returns the goose migrations rooted at the migrations directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Policies returns the bundled RLS policy script.
func Policies() string {
	return policies
}

// TablesManifest returns the bundled YAML list of tenant-scoped tables.
func TablesManifest() []byte {
	return tables
}
