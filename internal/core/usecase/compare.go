package usecase

import (
	"strconv"
	"strings"

	"github.com/mverdier/admission-verifier/internal/core/domain"
)

// Column-index convention shared with the indexed-record builder: admission
// identity fields occupy indices 0-1, transcript identity fields 0-2;
// everything past those bounds is grade-bearing.
const (
	admissionGradeMinIndex  = 2
	transcriptGradeMinIndex = 3
)

const (
	fullyVerifiedThreshold     = 0.95
	partiallyVerifiedThreshold = 0.80
	comparisonScale            = 20.0
)

// classifyVerification applies the verification table. The boundaries are
// inclusive at 0.95 and 0.80; any nonzero disagreement below 0.80 is
// flagged as fraud, and zero similarity means nothing was comparable.
func classifyVerification(similarity float64) domain.VerificationStatus {
	switch {
	case similarity >= fullyVerifiedThreshold:
		return domain.StatusFullyVerified
	case similarity >= partiallyVerifiedThreshold:
		return domain.StatusPartiallyVerified
	case similarity > 0:
		return domain.StatusFraud
	default:
		return domain.StatusCannotVerify
	}
}

// compareMatchedRecords walks the mapping entries restricted to
// grade-bearing columns and compares the two sides' values field by field.
// Missing or non-numeric values never abort the walk; they degrade the
// field to CANNOT_VERIFY with similarity 0.
func compareMatchedRecords(
	admission, transcript domain.IndexedRecord,
	entries []domain.FieldMappingEntry,
) ([]domain.FieldComparison, float64, domain.VerificationStatus) {
	fields := make([]domain.FieldComparison, 0, len(entries))
	total := 0.0

	for _, entry := range entries {
		if entry.AdmissionIndex < admissionGradeMinIndex || entry.TranscriptIndex < transcriptGradeMinIndex {
			continue
		}

		field := domain.FieldComparison{
			AdmissionIndex:  entry.AdmissionIndex,
			TranscriptIndex: entry.TranscriptIndex,
			AdmissionLabel:  entry.AdmissionLabel,
			TranscriptLabel: entry.TranscriptLabel,
		}

		admissionValue, admissionOK := admission.Values[entry.AdmissionIndex]
		transcriptValue, transcriptOK := transcript.Values[entry.TranscriptIndex]
		field.AdmissionValue = admissionValue
		field.TranscriptValue = transcriptValue

		field.Similarity, field.Status = compareGradeValues(admissionValue, admissionOK, transcriptValue, transcriptOK)
		total += field.Similarity
		fields = append(fields, field)
	}

	if len(fields) == 0 {
		return fields, 0, domain.StatusCannotVerify
	}
	mean := total / float64(len(fields))
	return fields, mean, classifyVerification(mean)
}

func compareGradeValues(aRaw string, aOK bool, bRaw string, bOK bool) (float64, domain.VerificationStatus) {
	if !aOK || !bOK || strings.TrimSpace(aRaw) == "" || strings.TrimSpace(bRaw) == "" {
		return 0, domain.StatusCannotVerify
	}
	a, errA := strconv.ParseFloat(strings.TrimSpace(aRaw), 64)
	b, errB := strconv.ParseFloat(strings.TrimSpace(bRaw), 64)
	if errA != nil || errB != nil {
		return 0, domain.StatusCannotVerify
	}

	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	similarity := 1 - diff/comparisonScale
	if similarity < 0 {
		similarity = 0
	}
	return similarity, classifyVerification(similarity)
}
