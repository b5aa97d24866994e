package api

import (
	"errors"
	"net/http"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/batch"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/contentstate"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/history"
)

// ErrorStatus maps a service error to an HTTP status code.
func ErrorStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, contentstate.ErrInvalidInput),
		errors.Is(err, batch.ErrUnsupportedFormat),
		errors.Is(err, history.ErrAmbiguousID):
		return http.StatusBadRequest
	case contentstate.IsTokenError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, batch.ErrTooManyReferences):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrHistoryDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorResponse builds the JSON error body for err.
func NewErrorResponse(err error) ErrorResponse {
	if err == nil {
		return ErrorResponse{}
	}
	resp := ErrorResponse{Error: err.Error(), Kind: contentstate.Kind(err)}
	if resp.Kind == "" {
		switch {
		case errors.Is(err, history.ErrNotFound):
			resp.Kind = "not_found"
		case errors.Is(err, history.ErrAmbiguousID):
			resp.Kind = "ambiguous_id"
		case errors.Is(err, ErrHistoryDisabled):
			resp.Kind = "history_disabled"
		case errors.Is(err, batch.ErrTooManyReferences):
			resp.Kind = "too_many_references"
		}
	}
	return resp
}
