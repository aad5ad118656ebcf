package usecase

import (
	"testing"

	"github.com/mverdier/admission-verifier/internal/core/domain"
)

func TestClassifyVerificationBoundaries(t *testing.T) {
	cases := []struct {
		similarity float64
		want       domain.VerificationStatus
	}{
		{1.0, domain.StatusFullyVerified},
		{0.95, domain.StatusFullyVerified},
		{0.9499, domain.StatusPartiallyVerified},
		{0.80, domain.StatusPartiallyVerified},
		{0.7999, domain.StatusFraud},
		{0.0001, domain.StatusFraud},
		{0, domain.StatusCannotVerify},
	}
	for _, c := range cases {
		if got := classifyVerification(c.similarity); got != c.want {
			t.Fatalf("classifyVerification(%v) = %s, want %s", c.similarity, got, c.want)
		}
	}
}

func gradeMapping() []domain.FieldMappingEntry {
	return []domain.FieldMappingEntry{
		{AdmissionIndex: 2, AdmissionLabel: "Moyenne générale (2022-2023)", TranscriptIndex: 3, TranscriptLabel: "Semestre 1"},
	}
}

func indexedPair(admissionValue, transcriptValue string) (domain.IndexedRecord, domain.IndexedRecord) {
	admission := domain.IndexedRecord{EntityID: 1, Values: map[int]string{0: "Dupont Elodie", 1: "20010314"}}
	if admissionValue != "" {
		admission.Values[2] = admissionValue
	}
	transcript := domain.IndexedRecord{EntityID: 10, Values: map[int]string{0: "Dupont Elodie", 1: "20010314", 2: "E-1"}}
	if transcriptValue != "" {
		transcript.Values[3] = transcriptValue
	}
	return admission, transcript
}

func TestCompareMatchedRecordsEqualGradesFullyVerified(t *testing.T) {
	admission, transcript := indexedPair("15.5", "15.5")
	fields, similarity, status := compareMatchedRecords(admission, transcript, gradeMapping())
	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	if similarity != 1.0 || status != domain.StatusFullyVerified {
		t.Fatalf("got similarity=%v status=%s", similarity, status)
	}
}

func TestCompareMatchedRecordsLargeGapIsFraud(t *testing.T) {
	admission, transcript := indexedPair("10", "18")
	_, similarity, status := compareMatchedRecords(admission, transcript, gradeMapping())
	if similarity != 0.6 {
		t.Fatalf("expected similarity 0.6, got %v", similarity)
	}
	if status != domain.StatusFraud {
		t.Fatalf("expected FRAUD, got %s", status)
	}
}

func TestCompareMatchedRecordsMissingValueCannotVerify(t *testing.T) {
	admission, transcript := indexedPair("", "12")
	fields, similarity, status := compareMatchedRecords(admission, transcript, gradeMapping())
	if similarity != 0 || status != domain.StatusCannotVerify {
		t.Fatalf("got similarity=%v status=%s", similarity, status)
	}
	if fields[0].Status != domain.StatusCannotVerify || fields[0].Similarity != 0 {
		t.Fatalf("field not degraded: %+v", fields[0])
	}
}

func TestCompareMatchedRecordsNonNumericValueCannotVerify(t *testing.T) {
	admission, transcript := indexedPair("absent", "12")
	_, similarity, status := compareMatchedRecords(admission, transcript, gradeMapping())
	if similarity != 0 || status != domain.StatusCannotVerify {
		t.Fatalf("got similarity=%v status=%s", similarity, status)
	}
}

func TestCompareMatchedRecordsSkipsIdentityColumns(t *testing.T) {
	admission, transcript := indexedPair("15", "15")
	entries := append([]domain.FieldMappingEntry{
		{AdmissionIndex: 0, TranscriptIndex: 0},
		{AdmissionIndex: 1, TranscriptIndex: 1},
		{AdmissionIndex: 2, TranscriptIndex: 2},
	}, gradeMapping()...)

	fields, similarity, status := compareMatchedRecords(admission, transcript, entries)
	if len(fields) != 1 {
		t.Fatalf("identity columns must not be compared, got %d fields", len(fields))
	}
	if similarity != 1.0 || status != domain.StatusFullyVerified {
		t.Fatalf("got similarity=%v status=%s", similarity, status)
	}
}

func TestCompareMatchedRecordsNoGradeFieldsCannotVerify(t *testing.T) {
	admission, transcript := indexedPair("15", "15")
	fields, similarity, status := compareMatchedRecords(admission, transcript, nil)
	if len(fields) != 0 || similarity != 0 || status != domain.StatusCannotVerify {
		t.Fatalf("got fields=%d similarity=%v status=%s", len(fields), similarity, status)
	}
}

func TestCompareMatchedRecordsAveragesAcrossFields(t *testing.T) {
	admission := domain.IndexedRecord{EntityID: 1, Values: map[int]string{2: "15", 3: "10"}}
	transcript := domain.IndexedRecord{EntityID: 10, Values: map[int]string{3: "15", 4: "18"}}
	entries := []domain.FieldMappingEntry{
		{AdmissionIndex: 2, TranscriptIndex: 3},
		{AdmissionIndex: 3, TranscriptIndex: 4},
	}
	_, similarity, status := compareMatchedRecords(admission, transcript, entries)
	// (1.0 + 0.6) / 2
	if similarity != 0.8 {
		t.Fatalf("expected mean similarity 0.8, got %v", similarity)
	}
	if status != domain.StatusPartiallyVerified {
		t.Fatalf("expected PARTIALLY_VERIFIED, got %s", status)
	}
}
