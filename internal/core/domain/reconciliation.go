package domain

type VerificationStatus string

const (
	StatusFullyVerified     VerificationStatus = "FULLY_VERIFIED"
	StatusPartiallyVerified VerificationStatus = "PARTIALLY_VERIFIED"
	StatusFraud             VerificationStatus = "FRAUD"
	StatusCannotVerify      VerificationStatus = "CANNOT_VERIFY"
)

// CandidateMatch pairs one admission candidate with one transcript student
// for a given file pair. Re-running matching replaces all matches for the
// pair, so at most one trusted match exists per candidate in steady state.
type CandidateMatch struct {
	ID                   int64   `json:"id"`
	AdmissionFileID      string  `json:"admission_file_id"`
	TranscriptFileID     string  `json:"transcript_file_id"`
	AdmissionCandidateID int64   `json:"admission_candidate_id"`
	TranscriptStudentID  int64   `json:"transcript_student_id"`
	Score                float64 `json:"score"`
	NameScore            float64 `json:"name_score"`
	DateScore            float64 `json:"date_score"`
}

// FieldComparison is the outcome of comparing one mapped grade-bearing
// field pair for a match.
type FieldComparison struct {
	ID              int64              `json:"id"`
	MatchID         int64              `json:"match_id"`
	AdmissionIndex  int                `json:"admission_index"`
	TranscriptIndex int                `json:"transcript_index"`
	AdmissionLabel  string             `json:"admission_label"`
	TranscriptLabel string             `json:"transcript_label"`
	AdmissionValue  string             `json:"admission_value"`
	TranscriptValue string             `json:"transcript_value"`
	Similarity      float64            `json:"similarity"`
	Status          VerificationStatus `json:"status"`
}

// ComparisonSummary aggregates the per-field comparisons of one match.
type ComparisonSummary struct {
	ID          int64              `json:"id"`
	MatchID     int64              `json:"match_id"`
	CandidateID int64              `json:"candidate_id"`
	Similarity  float64            `json:"similarity"`
	Status      VerificationStatus `json:"status"`
	Fields      []FieldComparison  `json:"fields"`
}

// FieldMappingEntry is one user-curated correspondence between an
// admission-side indexed column and a transcript-side indexed column.
type FieldMappingEntry struct {
	ID               int64  `json:"id"`
	AdmissionFileID  string `json:"admission_file_id"`
	TranscriptFileID string `json:"transcript_file_id"`
	AdmissionIndex   int    `json:"admission_index"`
	AdmissionLabel   string `json:"admission_label"`
	TranscriptIndex  int    `json:"transcript_index"`
	TranscriptLabel  string `json:"transcript_label"`
}

// IndexedRecord is the flattened, column-index-addressed view of one
// normalized entity. Index assignment is deterministic for the same
// normalized data across calls.
type IndexedRecord struct {
	EntityID int64          `json:"entity_id"`
	Values   map[int]string `json:"values"`
	Labels   map[int]string `json:"labels"`
}
