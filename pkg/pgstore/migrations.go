package pgstore

import "io/fs"

// Migrations returns the schema migrations rooted at the migration files.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}
