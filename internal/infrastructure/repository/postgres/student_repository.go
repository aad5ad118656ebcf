package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mverdier/admission-verifier/internal/core/domain"
)

type StudentRepository struct {
	db *sql.DB
}

func NewStudentRepository(db *sql.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) SaveStudents(ctx context.Context, fileID string, students []domain.StudentRecord) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin students tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	saved := 0
	for _, s := range students {
		var id int64
		err := tx.QueryRowContext(ctx, `
INSERT INTO students (file_id, name, date_of_birth, student_number)
VALUES ($1,$2,$3,$4)
RETURNING id
`, fileID, s.Name, s.DateOfBirth, s.StudentNumber).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("insert student: %w", err)
		}
		for _, result := range s.SemesterResults {
			_, err := tx.ExecContext(ctx, `
INSERT INTO semester_results (student_id, semester_name, grade)
VALUES ($1,$2,$3)
`, id, result.SemesterName, result.Grade)
			if err != nil {
				return 0, fmt.Errorf("insert semester result: %w", err)
			}
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit students tx: %w", err)
	}
	return saved, nil
}

func (r *StudentRepository) ListByFile(ctx context.Context, fileID string) ([]domain.StudentRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, file_id, name, date_of_birth, student_number
FROM students
WHERE file_id = $1
ORDER BY id
`, fileID)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var out []domain.StudentRecord
	byID := make(map[int64]int)
	for rows.Next() {
		var s domain.StudentRecord
		if err := rows.Scan(&s.ID, &s.SourceFileID, &s.Name, &s.DateOfBirth, &s.StudentNumber); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		byID[s.ID] = len(out)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	resultRows, err := r.db.QueryContext(ctx, `
SELECT sr.id, sr.student_id, sr.semester_name, sr.grade
FROM semester_results sr
JOIN students s ON s.id = sr.student_id
WHERE s.file_id = $1
ORDER BY sr.id
`, fileID)
	if err != nil {
		return nil, fmt.Errorf("query semester results: %w", err)
	}
	defer resultRows.Close()

	for resultRows.Next() {
		var result domain.SemesterResult
		if err := resultRows.Scan(&result.ID, &result.StudentID, &result.SemesterName, &result.Grade); err != nil {
			return nil, fmt.Errorf("scan semester result: %w", err)
		}
		if i, ok := byID[result.StudentID]; ok {
			out[i].SemesterResults = append(out[i].SemesterResults, result)
		}
	}
	return out, resultRows.Err()
}

func (r *StudentRepository) CountByFile(ctx context.Context, fileID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM students WHERE file_id = $1`, fileID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}

func (r *StudentRepository) DeleteByFile(ctx context.Context, fileID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE file_id = $1`, fileID)
	if err != nil {
		return fmt.Errorf("delete students: %w", err)
	}
	return nil
}
