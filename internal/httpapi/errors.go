package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"agentd/internal/errs"
	"agentd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps a failure to an HTTP status by its kind.
func statusFor(err error) int {
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode()
	}
	switch errs.KindOf(err) {
	case errs.KindInvalidModelPath:
		return http.StatusNotFound
	case errs.KindEmptyResponse, errs.KindEncoding, errs.KindProcessExecution:
		return http.StatusBadGateway
	case errs.KindProcessSpawn:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err with the status and kind it maps to.
func writeError(w http.ResponseWriter, err error) {
	kind := ""
	if k := errs.KindOf(err); k != errs.KindUnknown {
		kind = k.String()
	}
	writeJSONErrorKind(w, statusFor(err), err.Error(), kind)
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSONErrorKind(w, status, msg, "")
}

func writeJSONErrorKind(w http.ResponseWriter, status int, msg, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Kind: kind, Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Debug().Err(err).Msg("encode response")
	}
}
