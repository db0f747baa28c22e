package database

import (
	"context"
	"strings"
)

type migration struct {
	name string
	up   []string
}

// DDL is written once; these tokens are swapped per dialect
var dialectTypes = map[Dialect]*strings.Replacer{
	DialectSQLite: strings.NewReplacer(
		"{{pk}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{ts}}", "DATETIME",
	),
	DialectPostgres: strings.NewReplacer(
		"{{pk}}", "BIGSERIAL PRIMARY KEY",
		"{{ts}}", "TIMESTAMPTZ",
	),
}

// migrate runs all database migrations
func (db *DB) migrate(ctx context.Context) error {
	types := dialectTypes[db.dialect]

	// Create migrations table
	_, err := db.exec(ctx, types.Replace(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id {{pk}},
			name TEXT NOT NULL UNIQUE,
			applied_at {{ts}} NOT NULL
		)
	`))
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if err := db.runMigration(ctx, types, m); err != nil {
			return &MigrationError{Name: m.name, Err: err}
		}
	}

	return nil
}

func (db *DB) runMigration(ctx context.Context, types *strings.Replacer, m migration) error {
	// Check if already applied
	var count int
	err := db.queryRow(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE name = ?", m.name).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.up {
		if _, err := tx.ExecContext(ctx, types.Replace(stmt)); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, db.rebind("INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)"), m.name, now()); err != nil {
		return err
	}

	return tx.Commit()
}

// MigrationError names the migration that failed
type MigrationError struct {
	Name string
	Err  error
}

func (e *MigrationError) Error() string {
	return "migration " + e.Name + " failed: " + e.Err.Error()
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

var migrations = []migration{
	{
		name: "001_create_users",
		up: []string{`
			CREATE TABLE users (
				id {{pk}},
				email TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				role TEXT NOT NULL DEFAULT 'USER',
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				created_at {{ts}} NOT NULL,
				updated_at {{ts}} NOT NULL
			)`,
		},
	},
	{
		name: "002_create_audit_logs",
		up: []string{`
			CREATE TABLE audit_logs (
				id {{pk}},
				timestamp {{ts}} NOT NULL,
				user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
				action TEXT NOT NULL,
				target TEXT NOT NULL DEFAULT '',
				details TEXT NOT NULL DEFAULT '',
				ip_address TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE INDEX idx_audit_logs_user_id ON audit_logs(user_id)`,
			`CREATE INDEX idx_audit_logs_action ON audit_logs(action)`,
		},
	},
	{
		name: "003_create_settings",
		up: []string{`
			CREATE TABLE settings (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at {{ts}} NOT NULL
			)`,
		},
	},
	{
		name: "004_create_otps",
		up: []string{`
			CREATE TABLE otps (
				id {{pk}},
				email TEXT NOT NULL,
				otp_code TEXT NOT NULL,
				purpose TEXT NOT NULL,
				expires_at {{ts}} NOT NULL,
				used BOOLEAN NOT NULL DEFAULT FALSE,
				created_at {{ts}} NOT NULL
			)`,
			`CREATE INDEX idx_otps_email_purpose ON otps(email, purpose)`,
		},
	},
	{
		name: "005_create_teachers",
		up: []string{`
			CREATE TABLE teachers (
				id {{pk}},
				name TEXT NOT NULL,
				subject TEXT NOT NULL DEFAULT '',
				role TEXT NOT NULL DEFAULT '',
				class TEXT NOT NULL DEFAULT '',
				stream TEXT NOT NULL DEFAULT '',
				experience TEXT NOT NULL DEFAULT '',
				qualification TEXT NOT NULL DEFAULT '',
				bio TEXT NOT NULL DEFAULT '',
				photo TEXT NOT NULL DEFAULT '',
				photo_public_id TEXT NOT NULL DEFAULT '',
				email TEXT NOT NULL DEFAULT '',
				phone TEXT NOT NULL DEFAULT '',
				created_at {{ts}} NOT NULL
			)`,
		},
	},
	{
		name: "006_create_alumni",
		up: []string{`
			CREATE TABLE alumni (
				id {{pk}},
				name TEXT NOT NULL,
				batch TEXT NOT NULL DEFAULT '',
				profession TEXT NOT NULL DEFAULT '',
				achievement TEXT NOT NULL DEFAULT '',
				image TEXT NOT NULL DEFAULT '',
				created_at {{ts}} NOT NULL
			)`,
		},
	},
	{
		name: "007_create_campus_sections",
		up: []string{`
			CREATE TABLE campus_sections (
				id {{pk}},
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				image TEXT NOT NULL DEFAULT '',
				position INTEGER NOT NULL DEFAULT 0,
				created_at {{ts}} NOT NULL
			)`,
		},
	},
	{
		name: "008_create_sports",
		up: []string{`
			CREATE TABLE sports (
				id {{pk}},
				title TEXT NOT NULL,
				category TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				image TEXT NOT NULL DEFAULT '',
				position INTEGER NOT NULL DEFAULT 0,
				created_at {{ts}} NOT NULL
			)`,
		},
	},
	{
		name: "009_create_gallery",
		up: []string{`
			CREATE TABLE gallery (
				id {{pk}},
				image TEXT NOT NULL,
				created_at {{ts}} NOT NULL
			)`,
		},
	},
	{
		name: "010_create_trustees",
		up: []string{`
			CREATE TABLE trustees (
				id {{pk}},
				name TEXT NOT NULL,
				role TEXT NOT NULL,
				image TEXT NOT NULL DEFAULT '',
				position INTEGER NOT NULL DEFAULT 0,
				created_at {{ts}} NOT NULL
			)`,
		},
	},
	{
		name: "011_create_student_sections",
		up: []string{`
			CREATE TABLE student_sections (
				id {{pk}},
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				image TEXT NOT NULL DEFAULT '',
				created_at {{ts}} NOT NULL
			)`,
		},
	},
}
