package ports

import (
	"context"
	"io"

	"github.com/mverdier/admission-verifier/internal/core/domain"
)

// FileRepository persists and reads uploaded file metadata.
type FileRepository interface {
	Create(ctx context.Context, file *domain.StoredFile) error
	GetByID(ctx context.Context, id string) (*domain.StoredFile, error)
}

// ObjectStorage stores raw document bytes.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// CandidateRepository persists admission-side normalized rows. SaveExtraction
// writes candidates plus their academic records and scores atomically,
// relinking children to store-assigned candidate ids by row index.
type CandidateRepository interface {
	SaveExtraction(ctx context.Context, fileID string, extraction *domain.AdmissionExtraction) (domain.AdmissionCounts, error)
	ListByFile(ctx context.Context, fileID string) ([]domain.Candidate, error)
	ListAcademicRecords(ctx context.Context, fileID string) ([]domain.AcademicRecord, error)
	ListScores(ctx context.Context, fileID string) ([]domain.CandidateScore, error)
	CountByFile(ctx context.Context, fileID string) (int, error)
	DeleteByFile(ctx context.Context, fileID string) error
}

// StudentRepository persists transcript-side normalized rows. SaveStudents
// writes students plus their semester results atomically.
type StudentRepository interface {
	SaveStudents(ctx context.Context, fileID string, students []domain.StudentRecord) (int, error)
	ListByFile(ctx context.Context, fileID string) ([]domain.StudentRecord, error)
	CountByFile(ctx context.Context, fileID string) (int, error)
	DeleteByFile(ctx context.Context, fileID string) error
}

// MatchRepository owns candidate matches and comparison outputs for a file
// pair. ReplaceForFilePair clears prior matches before inserting, so
// re-running matching never duplicates.
type MatchRepository interface {
	ReplaceForFilePair(ctx context.Context, admissionFileID, transcriptFileID string, matches []domain.CandidateMatch) ([]domain.CandidateMatch, error)
	ListForFilePair(ctx context.Context, admissionFileID, transcriptFileID string) ([]domain.CandidateMatch, error)
	SaveComparisons(ctx context.Context, summaries []domain.ComparisonSummary) error
}

// MappingRepository persists the user-curated field mapping per file pair.
type MappingRepository interface {
	Replace(ctx context.Context, admissionFileID, transcriptFileID string, entries []domain.FieldMappingEntry) error
	ListForFilePair(ctx context.Context, admissionFileID, transcriptFileID string) ([]domain.FieldMappingEntry, error)
}

// MessageQueue publishes/consumes file-uploaded events.
type MessageQueue interface {
	PublishFileUploaded(ctx context.Context, fileID string) error
	SubscribeFileUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// AdmissionParser converts a raw admission spreadsheet into extraction rows.
type AdmissionParser interface {
	Parse(raw []byte) (*domain.AdmissionExtraction, error)
}

// TranscriptPlugin converts one institution's XML dialect into student
// records. CanNormalize self-reports compatibility with a raw document.
type TranscriptPlugin interface {
	Name() string
	CanNormalize(raw []byte) bool
	Normalize(raw []byte) ([]domain.StudentRecord, error)
}

// TranscriptRegistry selects the plugin for a raw document. Selection is
// first-match in registration order.
type TranscriptRegistry interface {
	Resolve(raw []byte) (TranscriptPlugin, bool)
}
