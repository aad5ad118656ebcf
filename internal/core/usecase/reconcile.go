package usecase

import (
	"context"
	"fmt"

	"github.com/mverdier/admission-verifier/internal/core/domain"
	"github.com/mverdier/admission-verifier/internal/core/ports"
)

// ReconcileUseCase links admission candidates to transcript students for a
// file pair and scores agreement per mapped grade field. Prior matches for
// the pair are cleared before the new ones are persisted.
type ReconcileUseCase struct {
	files      ports.FileRepository
	candidates ports.CandidateRepository
	students   ports.StudentRepository
	matches    ports.MatchRepository
	mappings   ports.MappingRepository
	indexer    ports.RecordIndexer
	matcher    *Matcher
}

func NewReconcileUseCase(
	files ports.FileRepository,
	candidates ports.CandidateRepository,
	students ports.StudentRepository,
	matches ports.MatchRepository,
	mappings ports.MappingRepository,
	indexer ports.RecordIndexer,
	matcher *Matcher,
) *ReconcileUseCase {
	return &ReconcileUseCase{
		files:      files,
		candidates: candidates,
		students:   students,
		matches:    matches,
		mappings:   mappings,
		indexer:    indexer,
		matcher:    matcher,
	}
}

func (uc *ReconcileUseCase) Reconcile(ctx context.Context, admissionFileID, transcriptFileID string) ([]domain.ComparisonSummary, error) {
	if err := uc.checkKind(ctx, admissionFileID, domain.FileKindAdmission); err != nil {
		return nil, err
	}
	if err := uc.checkKind(ctx, transcriptFileID, domain.FileKindTranscript); err != nil {
		return nil, err
	}

	matches, err := uc.matchParties(ctx, admissionFileID, transcriptFileID)
	if err != nil {
		return nil, err
	}

	summaries, err := uc.compareMatches(ctx, admissionFileID, transcriptFileID, matches)
	if err != nil {
		return nil, err
	}

	if err := uc.matches.SaveComparisons(ctx, summaries); err != nil {
		return nil, fmt.Errorf("persist comparisons: %w", err)
	}
	return summaries, nil
}

func (uc *ReconcileUseCase) checkKind(ctx context.Context, fileID string, want domain.FileKind) error {
	file, err := uc.files.GetByID(ctx, fileID)
	if err != nil {
		return fmt.Errorf("fetch file by id: %w", err)
	}
	if file.Kind != want {
		return domain.WrapError(domain.ErrInvalidFileType, "reconcile", fmt.Errorf("file %s is %q, want %q", fileID, file.Kind, want))
	}
	return nil
}

func (uc *ReconcileUseCase) matchParties(ctx context.Context, admissionFileID, transcriptFileID string) ([]domain.CandidateMatch, error) {
	candidates, err := uc.candidates.ListByFile(ctx, admissionFileID)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	students, err := uc.students.ListByFile(ctx, transcriptFileID)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	sources := make([]MatchParty, 0, len(candidates))
	for _, c := range candidates {
		sources = append(sources, MatchParty{ID: c.ID, Name: c.FullName, DateOfBirth: c.DateOfBirth})
	}
	targets := make([]MatchParty, 0, len(students))
	for _, s := range students {
		targets = append(targets, MatchParty{ID: s.ID, Name: s.Name, DateOfBirth: s.DateOfBirth})
	}

	results := uc.matcher.FindBestMatches(sources, targets)
	matches := make([]domain.CandidateMatch, 0, len(results))
	for _, r := range results {
		matches = append(matches, domain.CandidateMatch{
			AdmissionFileID:      admissionFileID,
			TranscriptFileID:     transcriptFileID,
			AdmissionCandidateID: r.SourceID,
			TranscriptStudentID:  r.TargetID,
			Score:                r.Score,
			NameScore:            r.NameScore,
			DateScore:            r.DateScore,
		})
	}

	persisted, err := uc.matches.ReplaceForFilePair(ctx, admissionFileID, transcriptFileID, matches)
	if err != nil {
		return nil, fmt.Errorf("persist matches: %w", err)
	}
	return persisted, nil
}

func (uc *ReconcileUseCase) compareMatches(ctx context.Context, admissionFileID, transcriptFileID string, matches []domain.CandidateMatch) ([]domain.ComparisonSummary, error) {
	entries, err := uc.mappings.ListForFilePair(ctx, admissionFileID, transcriptFileID)
	if err != nil {
		return nil, fmt.Errorf("list field mappings: %w", err)
	}

	admissionViews, err := uc.indexer.IndexedRecords(ctx, admissionFileID)
	if err != nil {
		return nil, fmt.Errorf("index admission records: %w", err)
	}
	transcriptViews, err := uc.indexer.IndexedRecords(ctx, transcriptFileID)
	if err != nil {
		return nil, fmt.Errorf("index transcript records: %w", err)
	}

	admissionByID := indexViewsByEntity(admissionViews)
	transcriptByID := indexViewsByEntity(transcriptViews)

	summaries := make([]domain.ComparisonSummary, 0, len(matches))
	for _, match := range matches {
		summary := domain.ComparisonSummary{
			MatchID:     match.ID,
			CandidateID: match.AdmissionCandidateID,
			Status:      domain.StatusCannotVerify,
		}

		// A missing mapping or a missing indexed view degrades to
		// CANNOT_VERIFY; it never aborts the rest of the reconciliation.
		admissionView, admissionOK := admissionByID[match.AdmissionCandidateID]
		transcriptView, transcriptOK := transcriptByID[match.TranscriptStudentID]
		if admissionOK && transcriptOK && len(entries) > 0 {
			fields, similarity, status := compareMatchedRecords(admissionView, transcriptView, entries)
			for i := range fields {
				fields[i].MatchID = match.ID
			}
			summary.Fields = fields
			summary.Similarity = similarity
			summary.Status = status
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func indexViewsByEntity(views []domain.IndexedRecord) map[int64]domain.IndexedRecord {
	out := make(map[int64]domain.IndexedRecord, len(views))
	for _, v := range views {
		out[v.EntityID] = v
	}
	return out
}
