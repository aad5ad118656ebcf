package ports

import (
	"context"
	"io"

	"github.com/mverdier/admission-verifier/internal/core/domain"
)

// FileIngestor is the inbound contract for raw document upload.
type FileIngestor interface {
	Upload(ctx context.Context, filename string, kind domain.FileKind, body io.Reader) (*domain.StoredFile, error)
}

// FileReader is the inbound read model for uploaded file metadata.
type FileReader interface {
	GetByID(ctx context.Context, id string) (*domain.StoredFile, error)
}

// AdmissionNormalizer normalizes one admission spreadsheet into relational
// rows.
type AdmissionNormalizer interface {
	NormalizeFile(ctx context.Context, fileID string) (domain.AdmissionCounts, error)
}

// TranscriptNormalizer normalizes one transcript export into relational
// rows.
type TranscriptNormalizer interface {
	NormalizeFile(ctx context.Context, fileID string) (domain.TranscriptCounts, error)
}

// RecordIndexer exposes normalized data as stable column-index views.
type RecordIndexer interface {
	IndexedRecords(ctx context.Context, fileID string) ([]domain.IndexedRecord, error)
}

// Reconciler matches candidates against transcript students and scores
// agreement per mapped field.
type Reconciler interface {
	Reconcile(ctx context.Context, admissionFileID, transcriptFileID string) ([]domain.ComparisonSummary, error)
}

// FileProcessor is the inbound contract for asynchronous normalization of
// freshly uploaded files.
type FileProcessor interface {
	ProcessByID(ctx context.Context, fileID string) error
}
