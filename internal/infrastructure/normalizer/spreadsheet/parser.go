// Package spreadsheet parses the national admission platform export into
// normalized candidate rows.
package spreadsheet

import (
	"bytes"
	"errors"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/mverdier/admission-verifier/internal/core/domain"
	"github.com/mverdier/admission-verifier/internal/core/gradescale"
)

const (
	colLastName    = "nom"
	colFirstName   = "prenom"
	colCandidateNo = "numero candidat"
	colBirthDate   = "date de naissance"

	colSchoolYear   = "annee scolaire"
	colGeneralGrade = "moyenne generale"
	colExamGrade    = "note d'examen"

	// A known non-grade column whose header contains a score keyword.
	colTranscriptList = "liste des releves de notes"
)

// Academic-year groups repeat with an index suffix: unsuffixed columns are
// year 1, then _1.._7 for subsequent years.
var yearSuffixes = []string{"", "_1", "_2", "_3", "_4", "_5", "_6", "_7"}

var scoreKeywords = []string{"note", "score", "moyenne"}

// Parser reads the admission spreadsheet. One row is one candidate; the
// academic records and scores extracted from a row carry the row index so
// persistence can relink them once candidate ids exist.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(raw []byte) (*domain.AdmissionExtraction, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, domain.WrapError(domain.ErrParsing, "open spreadsheet", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.WrapError(domain.ErrParsing, "open spreadsheet", errors.New("workbook has no sheets"))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, domain.WrapError(domain.ErrParsing, "read sheet rows", err)
	}
	if len(rows) < 2 {
		return nil, domain.WrapError(domain.ErrMissingRequired, "parse spreadsheet", errors.New("no data rows"))
	}

	layout := buildLayout(rows[0])
	if layout.lastName < 0 || layout.firstName < 0 {
		return nil, domain.WrapError(domain.ErrMissingRequired, "parse spreadsheet", errors.New("identity columns missing"))
	}

	extraction := &domain.AdmissionExtraction{}
	for _, row := range rows[1:] {
		lastName := cell(row, layout.lastName)
		firstName := cell(row, layout.firstName)
		if lastName == "" && firstName == "" {
			continue
		}

		rowIndex := len(extraction.Candidates)
		extraction.Candidates = append(extraction.Candidates, domain.Candidate{
			RowIndex:        rowIndex,
			LastName:        lastName,
			FirstName:       firstName,
			FullName:        strings.TrimSpace(lastName + " " + firstName),
			CandidateNumber: cell(row, layout.candidateNo),
			DateOfBirth:     cell(row, layout.birthDate),
		})

		extraction.Records = append(extraction.Records, extractYearGroups(row, layout, rowIndex)...)
		extraction.Scores = append(extraction.Scores, extractScores(row, layout, rowIndex)...)
	}

	if len(extraction.Candidates) == 0 {
		return nil, domain.WrapError(domain.ErrMissingRequired, "parse spreadsheet", errors.New("zero usable candidates"))
	}
	return extraction, nil
}

type yearGroup struct {
	year    int
	general int
	exam    int
}

type sheetLayout struct {
	lastName    int
	firstName   int
	candidateNo int
	birthDate   int
	yearGroups  []yearGroup
	scoreCols   []scoreColumn
}

type scoreColumn struct {
	index int
	label string
}

func buildLayout(headers []string) sheetLayout {
	layout := sheetLayout{lastName: -1, firstName: -1, candidateNo: -1, birthDate: -1}

	byName := make(map[string]int, len(headers))
	for i, h := range headers {
		byName[normalizeHeader(h)] = i
	}

	lookup := func(name string) int {
		if i, ok := byName[name]; ok {
			return i
		}
		return -1
	}

	layout.lastName = lookup(colLastName)
	layout.firstName = lookup(colFirstName)
	layout.candidateNo = lookup(colCandidateNo)
	layout.birthDate = lookup(colBirthDate)

	for _, suffix := range yearSuffixes {
		group := yearGroup{
			year:    lookup(colSchoolYear + suffix),
			general: lookup(colGeneralGrade + suffix),
			exam:    lookup(colExamGrade + suffix),
		}
		if group.year >= 0 {
			layout.yearGroups = append(layout.yearGroups, group)
		}
	}

	for i, h := range headers {
		normalized := normalizeHeader(h)
		if !isScoreHeader(normalized) {
			continue
		}
		layout.scoreCols = append(layout.scoreCols, scoreColumn{index: i, label: strings.TrimSpace(h)})
	}
	return layout
}

// isScoreHeader reports whether a header names a dynamically discovered
// score column: it carries a score keyword and is neither one of the two
// standard academic-grade columns nor the transcript-list column.
func isScoreHeader(normalized string) bool {
	if normalized == colTranscriptList {
		return false
	}
	for _, suffix := range yearSuffixes {
		if normalized == colGeneralGrade+suffix || normalized == colExamGrade+suffix {
			return false
		}
	}
	for _, keyword := range scoreKeywords {
		if strings.Contains(normalized, keyword) {
			return true
		}
	}
	return false
}

func extractYearGroups(row []string, layout sheetLayout, rowIndex int) []domain.AcademicRecord {
	var out []domain.AcademicRecord
	for _, group := range layout.yearGroups {
		year := cell(row, group.year)
		if year == "" {
			continue
		}
		out = append(out, domain.AcademicRecord{
			RowIndex:     rowIndex,
			SchoolYear:   year,
			GeneralGrade: normalizeOptional(cell(row, group.general)),
			ExamGrade:    normalizeOptional(cell(row, group.exam)),
		})
	}
	return out
}

func extractScores(row []string, layout sheetLayout, rowIndex int) []domain.CandidateScore {
	var out []domain.CandidateScore
	for _, col := range layout.scoreCols {
		value := cell(row, col.index)
		if value == "" {
			continue
		}
		out = append(out, domain.CandidateScore{
			RowIndex: rowIndex,
			Label:    col.label,
			RawValue: value,
			Grade:    normalizeOptional(value),
		})
	}
	return out
}

func normalizeOptional(raw string) *float64 {
	value, ok := gradescale.Normalize(raw)
	if !ok {
		return nil
	}
	return &value
}

func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalizeHeader(h string) string {
	lowered := strings.ToLower(strings.TrimSpace(h))
	stripped, _, err := transform.String(stripAccents, lowered)
	if err != nil {
		return lowered
	}
	return stripped
}
