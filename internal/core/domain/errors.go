package domain

import (
	"errors"
	"fmt"
)

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrInvalidFileType   = errors.New("invalid file type")
	ErrAlreadyNormalized = errors.New("file already normalized")
	ErrInvalidXML        = errors.New("invalid xml structure")
	ErrParsing           = errors.New("parsing error")
	ErrMissingRequired   = errors.New("missing required fields")
	ErrNoNormalizer      = errors.New("no suitable normalizer")
	ErrInvalidInput      = errors.New("invalid input")
	ErrTemporary         = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
