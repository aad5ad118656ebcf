package domain

// StudentRecord is one person extracted from an institution transcript
// export.
type StudentRecord struct {
	ID              int64            `json:"id"`
	SourceFileID    string           `json:"source_file_id"`
	Name            string           `json:"name"`
	DateOfBirth     string           `json:"date_of_birth"`
	StudentNumber   string           `json:"student_number"`
	SemesterResults []SemesterResult `json:"semester_results"`
}

// SemesterResult carries a grade already scale-normalized to 0-20.
type SemesterResult struct {
	ID           int64   `json:"id"`
	StudentID    int64   `json:"student_id"`
	SemesterName string  `json:"semester_name"`
	Grade        float64 `json:"grade"`
}

// Complete reports whether the student satisfies the extraction policy:
// name, student number, and at least one semester result. Incomplete
// students are dropped, not reported.
func (s StudentRecord) Complete() bool {
	return s.Name != "" && s.StudentNumber != "" && len(s.SemesterResults) > 0
}

// TranscriptCounts is the caller-facing result of transcript normalization.
type TranscriptCounts struct {
	Students int `json:"students_count"`
}
