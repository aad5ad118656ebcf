package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mverdier/admission-verifier/internal/core/domain"
)

type MappingRepository struct {
	db *sql.DB
}

func NewMappingRepository(db *sql.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

// Replace swaps the whole mapping for the file pair. The mapping is curated
// as a unit, so partial edits are never persisted.
func (r *MappingRepository) Replace(ctx context.Context, admissionFileID, transcriptFileID string, entries []domain.FieldMappingEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mapping tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
DELETE FROM field_mappings
WHERE admission_file_id = $1 AND transcript_file_id = $2
`, admissionFileID, transcriptFileID)
	if err != nil {
		return fmt.Errorf("delete prior mapping: %w", err)
	}

	for _, entry := range entries {
		_, err := tx.ExecContext(ctx, `
INSERT INTO field_mappings (admission_file_id, transcript_file_id, admission_index, admission_label, transcript_index, transcript_label)
VALUES ($1,$2,$3,$4,$5,$6)
`, admissionFileID, transcriptFileID, entry.AdmissionIndex, entry.AdmissionLabel, entry.TranscriptIndex, entry.TranscriptLabel)
		if err != nil {
			return fmt.Errorf("insert mapping entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mapping tx: %w", err)
	}
	return nil
}

func (r *MappingRepository) ListForFilePair(ctx context.Context, admissionFileID, transcriptFileID string) ([]domain.FieldMappingEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, admission_file_id, transcript_file_id, admission_index, admission_label, transcript_index, transcript_label
FROM field_mappings
WHERE admission_file_id = $1 AND transcript_file_id = $2
ORDER BY id
`, admissionFileID, transcriptFileID)
	if err != nil {
		return nil, fmt.Errorf("query mapping: %w", err)
	}
	defer rows.Close()

	var out []domain.FieldMappingEntry
	for rows.Next() {
		var entry domain.FieldMappingEntry
		if err := rows.Scan(&entry.ID, &entry.AdmissionFileID, &entry.TranscriptFileID, &entry.AdmissionIndex, &entry.AdmissionLabel, &entry.TranscriptIndex, &entry.TranscriptLabel); err != nil {
			return nil, fmt.Errorf("scan mapping entry: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
