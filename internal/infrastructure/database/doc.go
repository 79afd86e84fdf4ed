// Package database opens the SQLite file that backs the run journal and
// applies its schema migrations.
//
// The journal is small and written once per run, so a single connection
// is enough. WAL mode is still enabled by default so an operator can
// query the file while a cron run is writing to it.
//
// Migrations are embedded SQL files named YYYYMMDD_HHMMSS_name.up.sql
// with a matching .down.sql. They are additive: new columns must be
// nullable or carry a default.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Journal.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
