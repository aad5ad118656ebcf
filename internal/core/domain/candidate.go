package domain

// Candidate is one person extracted from an admission spreadsheet row.
// RowIndex is the zero-based position of the row in the source sheet; the
// academic records and scores extracted from the same row carry the same
// RowIndex and are relinked to the store-assigned candidate id at
// persistence time.
type Candidate struct {
	ID              int64  `json:"id"`
	SourceFileID    string `json:"source_file_id"`
	RowIndex        int    `json:"row_index"`
	LastName        string `json:"last_name"`
	FirstName       string `json:"first_name"`
	FullName        string `json:"full_name"`
	CandidateNumber string `json:"candidate_number"`
	DateOfBirth     string `json:"date_of_birth"`
}

// AcademicRecord is one academic-year block of a spreadsheet row. Grades
// are already scale-normalized to 0-20; nil means the source cell held
// nothing parsable.
type AcademicRecord struct {
	ID           int64    `json:"id"`
	CandidateID  int64    `json:"candidate_id"`
	RowIndex     int      `json:"-"`
	SchoolYear   string   `json:"school_year"`
	GeneralGrade *float64 `json:"general_grade"`
	ExamGrade    *float64 `json:"exam_grade"`
}

// CandidateScore is a dynamically discovered score column value. Grade is
// set when the cell parsed as a number (scale-normalized); RawValue keeps
// the literal cell text either way.
type CandidateScore struct {
	ID          int64    `json:"id"`
	CandidateID int64    `json:"candidate_id"`
	RowIndex    int      `json:"-"`
	Label       string   `json:"label"`
	RawValue    string   `json:"raw_value"`
	Grade       *float64 `json:"grade"`
}

// AdmissionExtraction is the output of parsing one admission spreadsheet,
// before any store id exists. Children reference candidates by RowIndex.
type AdmissionExtraction struct {
	Candidates []Candidate
	Records    []AcademicRecord
	Scores     []CandidateScore
}

// AdmissionCounts is the caller-facing result of admission normalization.
type AdmissionCounts struct {
	Candidates      int `json:"candidates_count"`
	AcademicRecords int `json:"academic_records_count"`
	Scores          int `json:"scores_count"`
}
