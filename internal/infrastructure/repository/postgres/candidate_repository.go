package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mverdier/admission-verifier/internal/core/domain"
)

type CandidateRepository struct {
	db *sql.DB
}

func NewCandidateRepository(db *sql.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// SaveExtraction inserts candidates first, then relinks academic records and
// scores to the store-assigned candidate ids through their row index. The
// whole extraction commits atomically.
func (r *CandidateRepository) SaveExtraction(ctx context.Context, fileID string, extraction *domain.AdmissionExtraction) (domain.AdmissionCounts, error) {
	var counts domain.AdmissionCounts

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return counts, fmt.Errorf("begin extraction tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	idByRow := make(map[int]int64, len(extraction.Candidates))
	for _, c := range extraction.Candidates {
		var id int64
		err := tx.QueryRowContext(ctx, `
INSERT INTO candidates (file_id, row_index, last_name, first_name, full_name, candidate_number, date_of_birth)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id
`, fileID, c.RowIndex, c.LastName, c.FirstName, c.FullName, c.CandidateNumber, c.DateOfBirth).Scan(&id)
		if err != nil {
			return counts, fmt.Errorf("insert candidate: %w", err)
		}
		idByRow[c.RowIndex] = id
		counts.Candidates++
	}

	for _, rec := range extraction.Records {
		candidateID, ok := idByRow[rec.RowIndex]
		if !ok {
			return counts, fmt.Errorf("academic record references unknown row %d", rec.RowIndex)
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO academic_records (candidate_id, school_year, general_grade, exam_grade)
VALUES ($1,$2,$3,$4)
`, candidateID, rec.SchoolYear, rec.GeneralGrade, rec.ExamGrade)
		if err != nil {
			return counts, fmt.Errorf("insert academic record: %w", err)
		}
		counts.AcademicRecords++
	}

	for _, score := range extraction.Scores {
		candidateID, ok := idByRow[score.RowIndex]
		if !ok {
			return counts, fmt.Errorf("score references unknown row %d", score.RowIndex)
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO candidate_scores (candidate_id, label, raw_value, grade)
VALUES ($1,$2,$3,$4)
`, candidateID, score.Label, score.RawValue, score.Grade)
		if err != nil {
			return counts, fmt.Errorf("insert score: %w", err)
		}
		counts.Scores++
	}

	if err := tx.Commit(); err != nil {
		return counts, fmt.Errorf("commit extraction tx: %w", err)
	}
	return counts, nil
}

func (r *CandidateRepository) ListByFile(ctx context.Context, fileID string) ([]domain.Candidate, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, file_id, row_index, last_name, first_name, full_name, candidate_number, date_of_birth
FROM candidates
WHERE file_id = $1
ORDER BY row_index
`, fileID)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		if err := rows.Scan(&c.ID, &c.SourceFileID, &c.RowIndex, &c.LastName, &c.FirstName, &c.FullName, &c.CandidateNumber, &c.DateOfBirth); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CandidateRepository) ListAcademicRecords(ctx context.Context, fileID string) ([]domain.AcademicRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT ar.id, ar.candidate_id, ar.school_year, ar.general_grade, ar.exam_grade
FROM academic_records ar
JOIN candidates c ON c.id = ar.candidate_id
WHERE c.file_id = $1
ORDER BY ar.id
`, fileID)
	if err != nil {
		return nil, fmt.Errorf("query academic records: %w", err)
	}
	defer rows.Close()

	var out []domain.AcademicRecord
	for rows.Next() {
		var rec domain.AcademicRecord
		if err := rows.Scan(&rec.ID, &rec.CandidateID, &rec.SchoolYear, &rec.GeneralGrade, &rec.ExamGrade); err != nil {
			return nil, fmt.Errorf("scan academic record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *CandidateRepository) ListScores(ctx context.Context, fileID string) ([]domain.CandidateScore, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT s.id, s.candidate_id, s.label, s.raw_value, s.grade
FROM candidate_scores s
JOIN candidates c ON c.id = s.candidate_id
WHERE c.file_id = $1
ORDER BY s.id
`, fileID)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	var out []domain.CandidateScore
	for rows.Next() {
		var score domain.CandidateScore
		if err := rows.Scan(&score.ID, &score.CandidateID, &score.Label, &score.RawValue, &score.Grade); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		out = append(out, score)
	}
	return out, rows.Err()
}

func (r *CandidateRepository) CountByFile(ctx context.Context, fileID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM candidates WHERE file_id = $1`, fileID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count candidates: %w", err)
	}
	return count, nil
}

func (r *CandidateRepository) DeleteByFile(ctx context.Context, fileID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM candidates WHERE file_id = $1`, fileID)
	if err != nil {
		return fmt.Errorf("delete candidates: %w", err)
	}
	return nil
}
