package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mverdier/admission-verifier/internal/core/domain"
	"github.com/mverdier/admission-verifier/internal/core/ports"
)

// UploadFileUseCase stores a raw document and announces it on the queue so
// the worker can normalize it in the background.
type UploadFileUseCase struct {
	files   ports.FileRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewUploadFileUseCase(
	files ports.FileRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *UploadFileUseCase {
	return &UploadFileUseCase{
		files:   files,
		storage: storage,
		queue:   queue,
	}
}

func (uc *UploadFileUseCase) Upload(ctx context.Context, filename string, kind domain.FileKind, body io.Reader) (*domain.StoredFile, error) {
	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	file := &domain.StoredFile{
		ID:          id,
		Filename:    filename,
		Kind:        kind,
		StoragePath: storageKey,
		CreatedAt:   time.Now().UTC(),
	}

	if err := uc.files.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("create file metadata: %w", err)
	}

	if err := uc.queue.PublishFileUploaded(ctx, file.ID); err != nil {
		return nil, fmt.Errorf("publish upload event: %w", err)
	}

	return file, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
