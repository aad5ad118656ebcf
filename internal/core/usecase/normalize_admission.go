package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mverdier/admission-verifier/internal/core/domain"
	"github.com/mverdier/admission-verifier/internal/core/ports"
)

// NormalizeAdmissionUseCase converts one stored admission spreadsheet into
// candidate rows with their academic records and scores. Re-invocation on
// an already-normalized file is rejected up front.
type NormalizeAdmissionUseCase struct {
	files      ports.FileRepository
	storage    ports.ObjectStorage
	parser     ports.AdmissionParser
	candidates ports.CandidateRepository
}

func NewNormalizeAdmissionUseCase(
	files ports.FileRepository,
	storage ports.ObjectStorage,
	parser ports.AdmissionParser,
	candidates ports.CandidateRepository,
) *NormalizeAdmissionUseCase {
	return &NormalizeAdmissionUseCase{
		files:      files,
		storage:    storage,
		parser:     parser,
		candidates: candidates,
	}
}

func (uc *NormalizeAdmissionUseCase) NormalizeFile(ctx context.Context, fileID string) (domain.AdmissionCounts, error) {
	file, err := uc.loadFile(ctx, fileID, domain.FileKindAdmission)
	if err != nil {
		return domain.AdmissionCounts{}, err
	}

	existing, err := uc.candidates.CountByFile(ctx, fileID)
	if err != nil {
		return domain.AdmissionCounts{}, fmt.Errorf("count candidates: %w", err)
	}
	if existing > 0 {
		return domain.AdmissionCounts{}, domain.WrapError(domain.ErrAlreadyNormalized, "normalize admission file", errors.New(fileID))
	}

	raw, err := uc.readBlob(ctx, file.StoragePath)
	if err != nil {
		return domain.AdmissionCounts{}, err
	}

	extraction, err := uc.parser.Parse(raw)
	if err != nil {
		return domain.AdmissionCounts{}, fmt.Errorf("parse admission spreadsheet: %w", err)
	}

	counts, err := uc.candidates.SaveExtraction(ctx, fileID, extraction)
	if err != nil {
		return domain.AdmissionCounts{}, fmt.Errorf("persist admission extraction: %w", err)
	}
	return counts, nil
}

func (uc *NormalizeAdmissionUseCase) loadFile(ctx context.Context, fileID string, want domain.FileKind) (*domain.StoredFile, error) {
	file, err := uc.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("fetch file by id: %w", err)
	}
	if file.Kind != want {
		return nil, domain.WrapError(domain.ErrInvalidFileType, "normalize file", fmt.Errorf("got %q, want %q", file.Kind, want))
	}
	return file, nil
}

func (uc *NormalizeAdmissionUseCase) readBlob(ctx context.Context, key string) ([]byte, error) {
	rc, err := uc.storage.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open stored document: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read stored document: %w", err)
	}
	return raw, nil
}
