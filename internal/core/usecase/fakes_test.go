package usecase

import (
	"bytes"
	"context"
	"io"

	"github.com/mverdier/admission-verifier/internal/core/domain"
	"github.com/mverdier/admission-verifier/internal/core/ports"
)

type fileRepoFake struct {
	files map[string]*domain.StoredFile
}

func (f *fileRepoFake) Create(_ context.Context, file *domain.StoredFile) error {
	if f.files == nil {
		f.files = map[string]*domain.StoredFile{}
	}
	f.files[file.ID] = file
	return nil
}

func (f *fileRepoFake) GetByID(_ context.Context, id string) (*domain.StoredFile, error) {
	file, ok := f.files[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrFileNotFound, "get file", io.EOF)
	}
	copyFile := *file
	return &copyFile, nil
}

type storageFake struct {
	blobs map[string][]byte
}

func (s *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if s.blobs == nil {
		s.blobs = map[string][]byte{}
	}
	s.blobs[key] = raw
	return nil
}

func (s *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := s.blobs[key]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

type candidateRepoFake struct {
	saved      *domain.AdmissionExtraction
	saveCalls  int
	count      int
	candidates []domain.Candidate
	records    []domain.AcademicRecord
	scores     []domain.CandidateScore
}

func (f *candidateRepoFake) SaveExtraction(_ context.Context, _ string, extraction *domain.AdmissionExtraction) (domain.AdmissionCounts, error) {
	f.saved = extraction
	f.saveCalls++
	f.count = len(extraction.Candidates)
	return domain.AdmissionCounts{
		Candidates:      len(extraction.Candidates),
		AcademicRecords: len(extraction.Records),
		Scores:          len(extraction.Scores),
	}, nil
}

func (f *candidateRepoFake) ListByFile(context.Context, string) ([]domain.Candidate, error) {
	return f.candidates, nil
}

func (f *candidateRepoFake) ListAcademicRecords(context.Context, string) ([]domain.AcademicRecord, error) {
	return f.records, nil
}

func (f *candidateRepoFake) ListScores(context.Context, string) ([]domain.CandidateScore, error) {
	return f.scores, nil
}

func (f *candidateRepoFake) CountByFile(context.Context, string) (int, error) {
	return f.count, nil
}

func (f *candidateRepoFake) DeleteByFile(context.Context, string) error {
	f.count = 0
	return nil
}

type studentRepoFake struct {
	saved     []domain.StudentRecord
	saveCalls int
	count     int
	students  []domain.StudentRecord
}

func (f *studentRepoFake) SaveStudents(_ context.Context, _ string, students []domain.StudentRecord) (int, error) {
	f.saved = students
	f.saveCalls++
	f.count = len(students)
	return len(students), nil
}

func (f *studentRepoFake) ListByFile(context.Context, string) ([]domain.StudentRecord, error) {
	return f.students, nil
}

func (f *studentRepoFake) CountByFile(context.Context, string) (int, error) {
	return f.count, nil
}

func (f *studentRepoFake) DeleteByFile(context.Context, string) error {
	f.count = 0
	return nil
}

type matchRepoFake struct {
	replaced     []domain.CandidateMatch
	replaceCalls int
	summaries    []domain.ComparisonSummary
	nextMatchID  int64
}

func (f *matchRepoFake) ReplaceForFilePair(_ context.Context, _, _ string, matches []domain.CandidateMatch) ([]domain.CandidateMatch, error) {
	out := make([]domain.CandidateMatch, len(matches))
	for i, m := range matches {
		f.nextMatchID++
		m.ID = f.nextMatchID
		out[i] = m
	}
	f.replaced = out
	f.replaceCalls++
	return out, nil
}

func (f *matchRepoFake) ListForFilePair(context.Context, string, string) ([]domain.CandidateMatch, error) {
	return f.replaced, nil
}

func (f *matchRepoFake) SaveComparisons(_ context.Context, summaries []domain.ComparisonSummary) error {
	f.summaries = summaries
	return nil
}

type mappingRepoFake struct {
	entries []domain.FieldMappingEntry
}

func (f *mappingRepoFake) Replace(_ context.Context, _, _ string, entries []domain.FieldMappingEntry) error {
	f.entries = entries
	return nil
}

func (f *mappingRepoFake) ListForFilePair(context.Context, string, string) ([]domain.FieldMappingEntry, error) {
	return f.entries, nil
}

type parserFake struct {
	extraction *domain.AdmissionExtraction
	err        error
}

func (f *parserFake) Parse([]byte) (*domain.AdmissionExtraction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.extraction, nil
}

type pluginFake struct {
	name     string
	accepts  bool
	students []domain.StudentRecord
	err      error
	calls    int
}

func (f *pluginFake) Name() string             { return f.name }
func (f *pluginFake) CanNormalize([]byte) bool { return f.accepts }

func (f *pluginFake) Normalize([]byte) ([]domain.StudentRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.students, nil
}

type registryFake struct {
	plugin ports.TranscriptPlugin
}

func (f *registryFake) Resolve([]byte) (ports.TranscriptPlugin, bool) {
	if f.plugin == nil {
		return nil, false
	}
	return f.plugin, true
}

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishFileUploaded(_ context.Context, fileID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, fileID)
	return nil
}

func (f *queueFake) SubscribeFileUploaded(context.Context, func(context.Context, string) error) error {
	return nil
}

func storedFile(id string, kind domain.FileKind) *domain.StoredFile {
	return &domain.StoredFile{
		ID:          id,
		Filename:    id + ".bin",
		Kind:        kind,
		StoragePath: id + "_blob",
	}
}
