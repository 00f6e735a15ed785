package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema bootstraps all tables. The directory and schedule tables are
// populated by external ingestion; this service only reads them. Questions
// are the one table this service writes.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS cities (
	id TEXT PRIMARY KEY,
	name_en TEXT NOT NULL,
	name_ar TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS areas (
	id TEXT PRIMARY KEY,
	name_en TEXT NOT NULL,
	name_ar TEXT NOT NULL,
	city_id TEXT
);

CREATE TABLE IF NOT EXISTS hospitals (
	uid TEXT PRIMARY KEY,
	name_en TEXT NOT NULL,
	name_ar TEXT NOT NULL,
	address_en TEXT,
	address_ar TEXT,
	location TEXT,
	type TEXT,
	description TEXT,
	area_id TEXT,
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS doctors (
	uid TEXT PRIMARY KEY,
	fullname TEXT NOT NULL,
	fullname_ar TEXT NOT NULL,
	title TEXT,
	position_en TEXT,
	position_ar TEXT,
	qualifications_en TEXT,
	qualifications_ar TEXT,
	gender TEXT,
	years_experience INTEGER NOT NULL DEFAULT 0,
	rating DOUBLE PRECISION NOT NULL DEFAULT 0,
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS specialties (
	id TEXT PRIMARY KEY,
	name_en TEXT NOT NULL,
	name_ar TEXT NOT NULL,
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS hospital_doctor_specialty (
	id TEXT PRIMARY KEY,
	hospital_uid TEXT,
	doctor_uid TEXT,
	specialty_id TEXT,
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_hds_hospital ON hospital_doctor_specialty(hospital_uid);
CREATE INDEX IF NOT EXISTS idx_hds_doctor ON hospital_doctor_specialty(doctor_uid);
CREATE INDEX IF NOT EXISTS idx_hds_specialty ON hospital_doctor_specialty(specialty_id);

CREATE TABLE IF NOT EXISTS appointment_templates (
	id TEXT PRIMARY KEY,
	doctor_uid TEXT NOT NULL,
	hospital_uid TEXT NOT NULL,
	day TEXT NOT NULL,
	start_hour DOUBLE PRECISION NOT NULL,
	end_hour DOUBLE PRECISION NOT NULL,
	session_duration INTEGER NOT NULL,
	start_date TIMESTAMPTZ,
	recur_every TEXT,
	is_online BOOLEAN NOT NULL DEFAULT FALSE,
	price DOUBLE PRECISION NOT NULL DEFAULT 0,
	currency TEXT,
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_templates_doctor_hospital ON appointment_templates(doctor_uid, hospital_uid);

CREATE TABLE IF NOT EXISTS booked_slots (
	id TEXT PRIMARY KEY,
	doctor_uid TEXT NOT NULL,
	hospital_uid TEXT NOT NULL,
	booking_date TIMESTAMPTZ NOT NULL,
	slot TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_booked_doctor_hospital ON booked_slots(doctor_uid, hospital_uid, booking_date);

CREATE TABLE IF NOT EXISTS questions (
	id TEXT PRIMARY KEY,
	text TEXT NOT NULL,
	language TEXT NOT NULL,
	status TEXT NOT NULL,
	answer TEXT,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_questions_status ON questions(status);
CREATE INDEX IF NOT EXISTS idx_questions_created_at ON questions(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// placeholders renders "$start,$start+1,..." for IN clauses.
func placeholders(start, count int) string {
	out := ""
	for i := 0; i < count; i++ {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("$%d", start+i)
	}
	return out
}
