package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mverdier/admission-verifier/internal/core/domain"
)

type MatchRepository struct {
	db *sql.DB
}

func NewMatchRepository(db *sql.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// ReplaceForFilePair clears prior matches for the pair before inserting so a
// re-run never duplicates. Deleting matches cascades to their comparisons.
func (r *MatchRepository) ReplaceForFilePair(ctx context.Context, admissionFileID, transcriptFileID string, matches []domain.CandidateMatch) ([]domain.CandidateMatch, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin matches tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
DELETE FROM candidate_matches
WHERE admission_file_id = $1 AND transcript_file_id = $2
`, admissionFileID, transcriptFileID)
	if err != nil {
		return nil, fmt.Errorf("delete prior matches: %w", err)
	}

	out := make([]domain.CandidateMatch, 0, len(matches))
	for _, m := range matches {
		m.AdmissionFileID = admissionFileID
		m.TranscriptFileID = transcriptFileID
		err := tx.QueryRowContext(ctx, `
INSERT INTO candidate_matches (admission_file_id, transcript_file_id, admission_candidate_id, transcript_student_id, score, name_score, date_score)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id
`, admissionFileID, transcriptFileID, m.AdmissionCandidateID, m.TranscriptStudentID, m.Score, m.NameScore, m.DateScore).Scan(&m.ID)
		if err != nil {
			return nil, fmt.Errorf("insert match: %w", err)
		}
		out = append(out, m)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit matches tx: %w", err)
	}
	return out, nil
}

func (r *MatchRepository) ListForFilePair(ctx context.Context, admissionFileID, transcriptFileID string) ([]domain.CandidateMatch, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, admission_file_id, transcript_file_id, admission_candidate_id, transcript_student_id, score, name_score, date_score
FROM candidate_matches
WHERE admission_file_id = $1 AND transcript_file_id = $2
ORDER BY id
`, admissionFileID, transcriptFileID)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var out []domain.CandidateMatch
	for rows.Next() {
		var m domain.CandidateMatch
		if err := rows.Scan(&m.ID, &m.AdmissionFileID, &m.TranscriptFileID, &m.AdmissionCandidateID, &m.TranscriptStudentID, &m.Score, &m.NameScore, &m.DateScore); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MatchRepository) SaveComparisons(ctx context.Context, summaries []domain.ComparisonSummary) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin comparisons tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, summary := range summaries {
		var summaryID int64
		err := tx.QueryRowContext(ctx, `
INSERT INTO comparison_summaries (match_id, candidate_id, similarity, status)
VALUES ($1,$2,$3,$4)
RETURNING id
`, summary.MatchID, summary.CandidateID, summary.Similarity, string(summary.Status)).Scan(&summaryID)
		if err != nil {
			return fmt.Errorf("insert comparison summary: %w", err)
		}

		for _, field := range summary.Fields {
			_, err := tx.ExecContext(ctx, `
INSERT INTO field_comparisons (summary_id, match_id, admission_index, transcript_index, admission_label, transcript_label, admission_value, transcript_value, similarity, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`, summaryID, field.MatchID, field.AdmissionIndex, field.TranscriptIndex, field.AdmissionLabel, field.TranscriptLabel,
				field.AdmissionValue, field.TranscriptValue, field.Similarity, string(field.Status))
			if err != nil {
				return fmt.Errorf("insert field comparison: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit comparisons tx: %w", err)
	}
	return nil
}
