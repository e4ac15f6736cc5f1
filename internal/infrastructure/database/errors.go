package database

import "errors"

// Domain errors for the database package.
var (
	// ErrNoPath is returned when Open is called without a file path.
	ErrNoPath = errors.New("database: path is required")

	// ErrDuplicateMigration is returned when two migration files share a
	// version prefix.
	ErrDuplicateMigration = errors.New("database: duplicate migration version")
)
