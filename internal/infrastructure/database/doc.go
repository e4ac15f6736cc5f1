// Package database provides SQLite connectivity for the vacuum logger.
//
// This package manages:
//   - Opening a single SQLite file (directories created, permissions 0600)
//   - Schema migrations from an fs.FS registered by the migrations package
//   - Health checks and transaction helpers
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: path, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migrations are forward-only: each file is named
// YYYYMMDD_HHMMSS_description.up.sql, and an applied version is recorded in
// schema_migrations so Migrate is a no-op on an up-to-date file.
package database
