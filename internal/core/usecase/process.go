package usecase

import (
	"context"
	"fmt"

	"github.com/mverdier/admission-verifier/internal/core/domain"
	"github.com/mverdier/admission-verifier/internal/core/ports"
)

// ProcessFileUseCase is the worker-side entry point: it normalizes a
// freshly uploaded file according to its kind. Queue redeliveries are
// harmless because the normalizers reject already-normalized files.
type ProcessFileUseCase struct {
	files      ports.FileRepository
	admission  ports.AdmissionNormalizer
	transcript ports.TranscriptNormalizer
}

func NewProcessFileUseCase(
	files ports.FileRepository,
	admission ports.AdmissionNormalizer,
	transcript ports.TranscriptNormalizer,
) *ProcessFileUseCase {
	return &ProcessFileUseCase{
		files:      files,
		admission:  admission,
		transcript: transcript,
	}
}

func (uc *ProcessFileUseCase) ProcessByID(ctx context.Context, fileID string) error {
	file, err := uc.files.GetByID(ctx, fileID)
	if err != nil {
		return fmt.Errorf("fetch file by id: %w", err)
	}

	switch file.Kind {
	case domain.FileKindAdmission:
		_, err = uc.admission.NormalizeFile(ctx, fileID)
	case domain.FileKindTranscript:
		_, err = uc.transcript.NormalizeFile(ctx, fileID)
	default:
		return domain.WrapError(domain.ErrInvalidFileType, "process file", fmt.Errorf("unknown kind %q", file.Kind))
	}

	if domain.IsKind(err, domain.ErrAlreadyNormalized) {
		return nil
	}
	return err
}
