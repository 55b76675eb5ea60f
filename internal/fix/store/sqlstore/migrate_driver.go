package sqlstore

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/golang-migrate/migrate/v4/database"
)

// sqliteDriver adapts database/sql (backed by glebarez/go-sqlite, a CGo-free
// driver) to golang-migrate's database.Driver contract. golang-migrate ships
// an official sqlite3 driver, but it type-asserts down to mattn/go-sqlite3's
// connection type to take its advisory lock -- a dependency the teacher's
// go.mod does not carry (SPEC_FULL.md DOMAIN STACK picked the CGo-free
// glebarez driver instead). sqlite has no real concurrent-writer story
// anyway, so Lock/Unlock here are no-ops, the same stance the official
// driver takes for sqlite.
type sqliteDriver struct {
	db *sql.DB
}

func newMigrateDriver(db *sql.DB) (database.Driver, error) {
	d := &sqliteDriver{db: db}
	if err := d.ensureVersionTable(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *sqliteDriver) ensureVersionTable() error {
	_, err := d.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER NOT NULL PRIMARY KEY,
		dirty   INTEGER NOT NULL
	)`)
	return err
}

func (d *sqliteDriver) Open(url string) (database.Driver, error) {
	return nil, fmt.Errorf("sqlstore: Open not supported, use newMigrateDriver with an existing *sql.DB")
}

func (d *sqliteDriver) Close() error {
	return nil // the caller owns db's lifecycle
}

func (d *sqliteDriver) Lock() error   { return nil }
func (d *sqliteDriver) Unlock() error { return nil }

func (d *sqliteDriver) Run(migration io.Reader) error {
	stmt, err := io.ReadAll(migration)
	if err != nil {
		return fmt.Errorf("sqlstore: read migration: %w", err)
	}
	if _, err := d.db.Exec(string(stmt)); err != nil {
		return fmt.Errorf("sqlstore: run migration: %w", err)
	}
	return nil
}

func (d *sqliteDriver) SetVersion(version int, dirty bool) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM schema_migrations`); err != nil {
		tx.Rollback()
		return err
	}
	if version >= 0 {
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version, dirty) VALUES (?, ?)`, version, dirty); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (d *sqliteDriver) Version() (int, bool, error) {
	var version int
	var dirty bool
	err := d.db.QueryRow(`SELECT version, dirty FROM schema_migrations LIMIT 1`).Scan(&version, &dirty)
	if err == sql.ErrNoRows {
		return -1, false, nil // no migrations applied yet
	}
	if err != nil {
		return 0, false, err
	}
	return version, dirty, nil
}

func (d *sqliteDriver) Drop() error {
	rows, err := d.db.Query(`SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return err
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		tables = append(tables, name)
	}
	rows.Close()

	for _, t := range tables {
		if _, err := d.db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %q`, t)); err != nil {
			return err
		}
	}
	return nil
}
