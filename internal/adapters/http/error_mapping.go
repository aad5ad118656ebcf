package httpadapter

import (
	"net/http"

	"github.com/mverdier/admission-verifier/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput),
		domain.IsKind(err, domain.ErrInvalidFileType):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrFileNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrAlreadyNormalized):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrNoNormalizer),
		domain.IsKind(err, domain.ErrInvalidXML),
		domain.IsKind(err, domain.ErrParsing),
		domain.IsKind(err, domain.ErrMissingRequired):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
