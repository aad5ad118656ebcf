package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mverdier/admission-verifier/internal/core/domain"
)

type FileRepository struct {
	db *sql.DB
}

func NewFileRepository(db *sql.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *domain.StoredFile) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO files (id, filename, kind, storage_path, created_at)
VALUES ($1,$2,$3,$4,$5)
`, file.ID, file.Filename, string(file.Kind), file.StoragePath, file.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

func (r *FileRepository) GetByID(ctx context.Context, id string) (*domain.StoredFile, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, kind, storage_path, created_at
FROM files
WHERE id = $1
`, id)

	var file domain.StoredFile
	var kind string
	err := row.Scan(&file.ID, &file.Filename, &kind, &file.StoragePath, &file.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrFileNotFound, "get file", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan file: %w", err)
	}
	file.Kind = domain.FileKind(kind)
	return &file, nil
}
