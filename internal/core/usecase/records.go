package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/mverdier/admission-verifier/internal/core/domain"
	"github.com/mverdier/admission-verifier/internal/core/ports"
)

// RecordsUseCase flattens normalized entities into column-index views used
// as the mapping and comparison substrate. The column layout is computed
// per file, so the same normalized data always yields the same indices.
type RecordsUseCase struct {
	files      ports.FileRepository
	candidates ports.CandidateRepository
	students   ports.StudentRepository
}

func NewRecordsUseCase(
	files ports.FileRepository,
	candidates ports.CandidateRepository,
	students ports.StudentRepository,
) *RecordsUseCase {
	return &RecordsUseCase{
		files:      files,
		candidates: candidates,
		students:   students,
	}
}

func (uc *RecordsUseCase) IndexedRecords(ctx context.Context, fileID string) ([]domain.IndexedRecord, error) {
	file, err := uc.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("fetch file by id: %w", err)
	}

	switch file.Kind {
	case domain.FileKindAdmission:
		return uc.admissionRecords(ctx, fileID)
	case domain.FileKindTranscript:
		return uc.transcriptRecords(ctx, fileID)
	default:
		return nil, domain.WrapError(domain.ErrInvalidFileType, "index records", fmt.Errorf("unknown kind %q", file.Kind))
	}
}

// Admission layout: 0 = full name, 1 = date of birth, then two columns per
// distinct school year (general grade, exam grade) in year order, then one
// column per distinct score label in label order.
func (uc *RecordsUseCase) admissionRecords(ctx context.Context, fileID string) ([]domain.IndexedRecord, error) {
	candidates, err := uc.candidates.ListByFile(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	records, err := uc.candidates.ListAcademicRecords(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("list academic records: %w", err)
	}
	scores, err := uc.candidates.ListScores(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}

	years := distinctSorted(records, func(r domain.AcademicRecord) string { return r.SchoolYear })
	labels := distinctSorted(scores, func(s domain.CandidateScore) string { return s.Label })

	yearBase := make(map[string]int, len(years))
	index := 2
	for _, year := range years {
		yearBase[year] = index
		index += 2
	}
	labelIndex := make(map[string]int, len(labels))
	for _, label := range labels {
		labelIndex[label] = index
		index++
	}

	recordsByCandidate := make(map[int64][]domain.AcademicRecord)
	for _, r := range records {
		recordsByCandidate[r.CandidateID] = append(recordsByCandidate[r.CandidateID], r)
	}
	scoresByCandidate := make(map[int64][]domain.CandidateScore)
	for _, s := range scores {
		scoresByCandidate[s.CandidateID] = append(scoresByCandidate[s.CandidateID], s)
	}

	out := make([]domain.IndexedRecord, 0, len(candidates))
	for _, candidate := range candidates {
		rec := domain.IndexedRecord{
			EntityID: candidate.ID,
			Values:   map[int]string{0: candidate.FullName, 1: candidate.DateOfBirth},
			Labels:   map[int]string{0: "Nom complet", 1: "Date de naissance"},
		}
		for _, year := range years {
			base := yearBase[year]
			rec.Labels[base] = "Moyenne générale (" + year + ")"
			rec.Labels[base+1] = "Note d'examen (" + year + ")"
		}
		for _, label := range labels {
			rec.Labels[labelIndex[label]] = label
		}

		for _, r := range recordsByCandidate[candidate.ID] {
			base := yearBase[r.SchoolYear]
			if r.GeneralGrade != nil {
				rec.Values[base] = formatGrade(*r.GeneralGrade)
			}
			if r.ExamGrade != nil {
				rec.Values[base+1] = formatGrade(*r.ExamGrade)
			}
		}
		for _, s := range scoresByCandidate[candidate.ID] {
			if s.Grade != nil {
				rec.Values[labelIndex[s.Label]] = formatGrade(*s.Grade)
			} else {
				rec.Values[labelIndex[s.Label]] = s.RawValue
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// Transcript layout: 0 = name, 1 = date of birth, 2 = student number, then
// one column per distinct semester name in name order.
func (uc *RecordsUseCase) transcriptRecords(ctx context.Context, fileID string) ([]domain.IndexedRecord, error) {
	students, err := uc.students.ListByFile(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	semesterSet := make(map[string]bool)
	for _, student := range students {
		for _, result := range student.SemesterResults {
			semesterSet[result.SemesterName] = true
		}
	}
	semesters := make([]string, 0, len(semesterSet))
	for name := range semesterSet {
		semesters = append(semesters, name)
	}
	sort.Strings(semesters)

	semesterIndex := make(map[string]int, len(semesters))
	for i, name := range semesters {
		semesterIndex[name] = 3 + i
	}

	out := make([]domain.IndexedRecord, 0, len(students))
	for _, student := range students {
		rec := domain.IndexedRecord{
			EntityID: student.ID,
			Values: map[int]string{
				0: student.Name,
				1: student.DateOfBirth,
				2: student.StudentNumber,
			},
			Labels: map[int]string{
				0: "Nom",
				1: "Date de naissance",
				2: "Numéro étudiant",
			},
		}
		for _, name := range semesters {
			rec.Labels[semesterIndex[name]] = name
		}
		for _, result := range student.SemesterResults {
			rec.Values[semesterIndex[result.SemesterName]] = formatGrade(result.Grade)
		}
		out = append(out, rec)
	}
	return out, nil
}

func formatGrade(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func distinctSorted[T any](items []T, key func(T) string) []string {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[key(item)] = true
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
