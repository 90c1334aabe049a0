// Package database provides the SQLite connection for irclimate.
//
// It holds two tables besides schema_migrations: devices, the catalogue of
// configured climate units with their last state, and state_history, a
// local audit trail of state changes.
//
// Migrations are versioned SQL files passed to Migrate as an fs.FS. They
// are additive: new columns are nullable or have defaults, and every
// .up.sql has a matching .down.sql.
//
//	db, err := database.Open(database.FromConfig(cfg.Database))
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
package database
