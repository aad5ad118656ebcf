// Package postgres implements the persistence ports on database/sql with the
// pgx stdlib driver.
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

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS files (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	kind TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS candidates (
	id BIGSERIAL PRIMARY KEY,
	file_id TEXT NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	row_index INT NOT NULL,
	last_name TEXT NOT NULL,
	first_name TEXT NOT NULL,
	full_name TEXT NOT NULL,
	candidate_number TEXT NOT NULL,
	date_of_birth TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS academic_records (
	id BIGSERIAL PRIMARY KEY,
	candidate_id BIGINT NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
	school_year TEXT NOT NULL,
	general_grade DOUBLE PRECISION,
	exam_grade DOUBLE PRECISION
);

CREATE TABLE IF NOT EXISTS candidate_scores (
	id BIGSERIAL PRIMARY KEY,
	candidate_id BIGINT NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
	label TEXT NOT NULL,
	raw_value TEXT NOT NULL,
	grade DOUBLE PRECISION
);

CREATE TABLE IF NOT EXISTS students (
	id BIGSERIAL PRIMARY KEY,
	file_id TEXT NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	date_of_birth TEXT NOT NULL,
	student_number TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS semester_results (
	id BIGSERIAL PRIMARY KEY,
	student_id BIGINT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
	semester_name TEXT NOT NULL,
	grade DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS candidate_matches (
	id BIGSERIAL PRIMARY KEY,
	admission_file_id TEXT NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	transcript_file_id TEXT NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	admission_candidate_id BIGINT NOT NULL,
	transcript_student_id BIGINT NOT NULL,
	score DOUBLE PRECISION NOT NULL,
	name_score DOUBLE PRECISION NOT NULL,
	date_score DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS field_mappings (
	id BIGSERIAL PRIMARY KEY,
	admission_file_id TEXT NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	transcript_file_id TEXT NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	admission_index INT NOT NULL,
	admission_label TEXT NOT NULL,
	transcript_index INT NOT NULL,
	transcript_label TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS comparison_summaries (
	id BIGSERIAL PRIMARY KEY,
	match_id BIGINT NOT NULL REFERENCES candidate_matches(id) ON DELETE CASCADE,
	candidate_id BIGINT NOT NULL,
	similarity DOUBLE PRECISION NOT NULL,
	status TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS field_comparisons (
	id BIGSERIAL PRIMARY KEY,
	summary_id BIGINT NOT NULL REFERENCES comparison_summaries(id) ON DELETE CASCADE,
	match_id BIGINT NOT NULL,
	admission_index INT NOT NULL,
	transcript_index INT NOT NULL,
	admission_label TEXT NOT NULL,
	transcript_label TEXT NOT NULL,
	admission_value TEXT NOT NULL,
	transcript_value TEXT NOT NULL,
	similarity DOUBLE PRECISION NOT NULL,
	status TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_candidates_file ON candidates(file_id);
CREATE INDEX IF NOT EXISTS idx_students_file ON students(file_id);
CREATE INDEX IF NOT EXISTS idx_matches_pair ON candidate_matches(admission_file_id, transcript_file_id);
CREATE INDEX IF NOT EXISTS idx_mappings_pair ON field_mappings(admission_file_id, transcript_file_id);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
