package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mverdier/admission-verifier/internal/core/domain"
	"github.com/mverdier/admission-verifier/internal/core/ports"
)

// NormalizeTranscriptUseCase converts one stored transcript export into
// student rows, selecting the institution plugin through the registry.
type NormalizeTranscriptUseCase struct {
	files    ports.FileRepository
	storage  ports.ObjectStorage
	registry ports.TranscriptRegistry
	students ports.StudentRepository
}

func NewNormalizeTranscriptUseCase(
	files ports.FileRepository,
	storage ports.ObjectStorage,
	registry ports.TranscriptRegistry,
	students ports.StudentRepository,
) *NormalizeTranscriptUseCase {
	return &NormalizeTranscriptUseCase{
		files:    files,
		storage:  storage,
		registry: registry,
		students: students,
	}
}

func (uc *NormalizeTranscriptUseCase) NormalizeFile(ctx context.Context, fileID string) (domain.TranscriptCounts, error) {
	file, err := uc.files.GetByID(ctx, fileID)
	if err != nil {
		return domain.TranscriptCounts{}, fmt.Errorf("fetch file by id: %w", err)
	}
	if file.Kind != domain.FileKindTranscript {
		return domain.TranscriptCounts{}, domain.WrapError(domain.ErrInvalidFileType, "normalize transcript file", fmt.Errorf("got %q", file.Kind))
	}

	existing, err := uc.students.CountByFile(ctx, fileID)
	if err != nil {
		return domain.TranscriptCounts{}, fmt.Errorf("count students: %w", err)
	}
	if existing > 0 {
		return domain.TranscriptCounts{}, domain.WrapError(domain.ErrAlreadyNormalized, "normalize transcript file", errors.New(fileID))
	}

	rc, err := uc.storage.Open(ctx, file.StoragePath)
	if err != nil {
		return domain.TranscriptCounts{}, fmt.Errorf("open stored document: %w", err)
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return domain.TranscriptCounts{}, fmt.Errorf("read stored document: %w", err)
	}

	plugin, ok := uc.registry.Resolve(raw)
	if !ok {
		return domain.TranscriptCounts{}, domain.WrapError(domain.ErrNoNormalizer, "normalize transcript file", errors.New("no plugin accepted the document"))
	}

	students, err := plugin.Normalize(raw)
	if err != nil {
		return domain.TranscriptCounts{}, fmt.Errorf("plugin %s: %w", plugin.Name(), err)
	}

	saved, err := uc.students.SaveStudents(ctx, fileID, students)
	if err != nil {
		return domain.TranscriptCounts{}, fmt.Errorf("persist students: %w", err)
	}
	return domain.TranscriptCounts{Students: saved}, nil
}
