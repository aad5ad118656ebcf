package spreadsheet

import (
	"fmt"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/mverdier/admission-verifier/internal/core/domain"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func defaultHeaders() []interface{} {
	return []interface{}{
		"Nom", "Prénom", "Numéro candidat", "Date de naissance",
		"Année scolaire", "Moyenne générale", "Note d'examen",
		"Année scolaire_1", "Moyenne générale_1", "Note d'examen_1",
		"Note de français", "Liste des relevés de notes",
	}
}

func TestParseExtractsCandidatesRecordsAndScores(t *testing.T) {
	raw := buildWorkbook(t, [][]interface{}{
		defaultHeaders(),
		{"Dupont", "Élodie", "C-100", "14/03/2001",
			"2021-2022", "13", "125",
			"2022-2023", "15,5", "",
			"14", "releve-dupont.pdf"},
		{"Martin", "Hugo", "C-101", "02/11/1999",
			"2022-2023", "11", "10",
			"", "", "",
			"absent", ""},
	})

	p := NewParser()
	extraction, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(extraction.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(extraction.Candidates))
	}
	first := extraction.Candidates[0]
	if first.RowIndex != 0 || first.LastName != "Dupont" || first.FirstName != "Élodie" {
		t.Fatalf("unexpected first candidate: %+v", first)
	}
	if first.FullName != "Dupont Élodie" || first.CandidateNumber != "C-100" || first.DateOfBirth != "14/03/2001" {
		t.Fatalf("unexpected first candidate fields: %+v", first)
	}
	if extraction.Candidates[1].RowIndex != 1 {
		t.Fatalf("row index must follow candidate order: %+v", extraction.Candidates[1])
	}

	if len(extraction.Records) != 3 {
		t.Fatalf("expected 3 academic records, got %d", len(extraction.Records))
	}
	r0 := extraction.Records[0]
	if r0.RowIndex != 0 || r0.SchoolYear != "2021-2022" {
		t.Fatalf("unexpected record: %+v", r0)
	}
	if r0.GeneralGrade == nil || *r0.GeneralGrade != 13 {
		t.Fatalf("general grade not normalized: %+v", r0.GeneralGrade)
	}
	// 125 sits on the 200-point scale and is divided down.
	if r0.ExamGrade == nil || *r0.ExamGrade != 12.5 {
		t.Fatalf("exam grade not rescaled: %+v", r0.ExamGrade)
	}
	r1 := extraction.Records[1]
	if r1.SchoolYear != "2022-2023" || r1.GeneralGrade == nil || *r1.GeneralGrade != 15.5 {
		t.Fatalf("comma decimal not handled: %+v", r1)
	}
	if r1.ExamGrade != nil {
		t.Fatalf("empty exam cell must stay nil: %+v", r1)
	}

	if len(extraction.Scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(extraction.Scores))
	}
	s0 := extraction.Scores[0]
	if s0.RowIndex != 0 || s0.Label != "Note de français" || s0.RawValue != "14" {
		t.Fatalf("unexpected score: %+v", s0)
	}
	if s0.Grade == nil || *s0.Grade != 14 {
		t.Fatalf("numeric score must normalize: %+v", s0.Grade)
	}
	s1 := extraction.Scores[1]
	if s1.RawValue != "absent" || s1.Grade != nil {
		t.Fatalf("non-numeric score must keep its literal with nil grade: %+v", s1)
	}
}

func TestParseExcludesKnownNonScoreColumns(t *testing.T) {
	raw := buildWorkbook(t, [][]interface{}{
		defaultHeaders(),
		{"Dupont", "Élodie", "C-100", "14/03/2001",
			"2021-2022", "13", "12",
			"", "", "",
			"", "releve-dupont.pdf"},
	})

	p := NewParser()
	extraction, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	// The transcript-list column contains the keyword "notes" but never
	// becomes a score; the year grade columns are captured as records only.
	if len(extraction.Scores) != 0 {
		t.Fatalf("expected no scores, got %+v", extraction.Scores)
	}
	if len(extraction.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(extraction.Records))
	}
}

func TestParseSkipsRowsWithoutIdentity(t *testing.T) {
	raw := buildWorkbook(t, [][]interface{}{
		defaultHeaders(),
		{"", "", "", "", "", "", "", "", "", "", "", ""},
		{"Martin", "Hugo", "C-101", "02/11/1999",
			"2022-2023", "11", "", "", "", "", "", ""},
	})

	p := NewParser()
	extraction, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(extraction.Candidates) != 1 {
		t.Fatalf("expected blank row skipped, got %d candidates", len(extraction.Candidates))
	}
	if extraction.Candidates[0].RowIndex != 0 {
		t.Fatalf("row index must be dense after skipping: %+v", extraction.Candidates[0])
	}
}

func TestParseRejectsGarbageBytes(t *testing.T) {
	p := NewParser()
	_, err := p.Parse([]byte("not a spreadsheet"))
	if !domain.IsKind(err, domain.ErrParsing) {
		t.Fatalf("expected ErrParsing, got %v", err)
	}
}

func TestParseRejectsHeaderOnlySheet(t *testing.T) {
	raw := buildWorkbook(t, [][]interface{}{defaultHeaders()})

	p := NewParser()
	_, err := p.Parse(raw)
	if !domain.IsKind(err, domain.ErrMissingRequired) {
		t.Fatalf("expected ErrMissingRequired, got %v", err)
	}
}

func TestParseRejectsMissingIdentityColumns(t *testing.T) {
	raw := buildWorkbook(t, [][]interface{}{
		{"Colonne A", "Colonne B"},
		{"x", "y"},
	})

	p := NewParser()
	_, err := p.Parse(raw)
	if !domain.IsKind(err, domain.ErrMissingRequired) {
		t.Fatalf("expected ErrMissingRequired, got %v", err)
	}
}
