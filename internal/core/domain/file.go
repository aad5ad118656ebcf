package domain

import "time"

type FileKind string

const (
	FileKindAdmission  FileKind = "admission"
	FileKindTranscript FileKind = "transcript"
)

func ParseFileKind(raw string) (FileKind, bool) {
	switch FileKind(raw) {
	case FileKindAdmission, FileKindTranscript:
		return FileKind(raw), true
	default:
		return "", false
	}
}

// StoredFile is the metadata row for one uploaded raw document. The bytes
// themselves live in the blob store under StoragePath and are read exactly
// once, by normalization.
type StoredFile struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Kind        FileKind  `json:"kind"`
	StoragePath string    `json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
}
