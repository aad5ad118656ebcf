package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mverdier/admission-verifier/internal/core/domain"
)

func newCandidateRepoWithMock(t *testing.T) (*CandidateRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &CandidateRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestSaveExtractionRelinksChildrenByRowIndex(t *testing.T) {
	repo, mock, done := newCandidateRepoWithMock(t)
	defer done()

	grade := 15.5
	extraction := &domain.AdmissionExtraction{
		Candidates: []domain.Candidate{
			{RowIndex: 0, LastName: "Dupont", FirstName: "Elodie", FullName: "Dupont Elodie", CandidateNumber: "C-100", DateOfBirth: "14/03/2001"},
		},
		Records: []domain.AcademicRecord{
			{RowIndex: 0, SchoolYear: "2022-2023", GeneralGrade: &grade},
		},
		Scores: []domain.CandidateScore{
			{RowIndex: 0, Label: "Note de français", RawValue: "14", Grade: &grade},
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO candidates").
		WithArgs("adm-1", 0, "Dupont", "Elodie", "Dupont Elodie", "C-100", "14/03/2001").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	// Children carry the returned candidate id, not the row index.
	mock.ExpectExec("INSERT INTO academic_records").
		WithArgs(int64(42), "2022-2023", &grade, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO candidate_scores").
		WithArgs(int64(42), "Note de français", "14", &grade).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	counts, err := repo.SaveExtraction(context.Background(), "adm-1", extraction)
	if err != nil {
		t.Fatalf("SaveExtraction() error = %v", err)
	}
	if counts.Candidates != 1 || counts.AcademicRecords != 1 || counts.Scores != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveExtractionRollsBackOnChildFailure(t *testing.T) {
	repo, mock, done := newCandidateRepoWithMock(t)
	defer done()

	extraction := &domain.AdmissionExtraction{
		Candidates: []domain.Candidate{{RowIndex: 0, LastName: "Dupont", FirstName: "Elodie", FullName: "Dupont Elodie"}},
		Records:    []domain.AcademicRecord{{RowIndex: 0, SchoolYear: "2022-2023"}},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO candidates").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectExec("INSERT INTO academic_records").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	_, err := repo.SaveExtraction(context.Background(), "adm-1", extraction)
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListByFileScansRows(t *testing.T) {
	repo, mock, done := newCandidateRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, file_id, row_index").
		WithArgs("adm-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "file_id", "row_index", "last_name", "first_name", "full_name", "candidate_number", "date_of_birth",
		}).AddRow(int64(1), "adm-1", 0, "Dupont", "Elodie", "Dupont Elodie", "C-100", "14/03/2001"))

	candidates, err := repo.ListByFile(context.Background(), "adm-1")
	if err != nil {
		t.Fatalf("ListByFile() error = %v", err)
	}
	if len(candidates) != 1 || candidates[0].FullName != "Dupont Elodie" {
		t.Fatalf("unexpected candidates: %+v", candidates)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
