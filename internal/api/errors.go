package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"fjacquet/divledger/internal/ledgererror"
	"fjacquet/divledger/internal/logging"
	"fjacquet/divledger/internal/receipt"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps a ledger error to an HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	switch {
	case ledgererror.IsValidation(err):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, ledgererror.ErrDivisionNotFound):
		return http.StatusNotFound, "division_not_found"
	case errors.Is(err, ledgererror.ErrRecordNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ledgererror.ErrInsufficientFunds):
		return http.StatusConflict, "insufficient_funds"
	case errors.Is(err, ledgererror.ErrDuplicateDivision):
		return http.StatusConflict, "duplicate_division"
	case errors.Is(err, receipt.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "receipt_too_large"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError reports err to the client. Unexpected failures are logged and
// their details kept out of the response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.WithError(err).Error("Request failed",
			logging.F(logging.FieldMethod, r.Method),
			logging.F(logging.FieldPath, r.URL.Path))
		msg = "internal error"
	}
	writeJSONError(w, status, code, msg)
}

func writeJSONError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSONError(w, http.StatusBadRequest, "bad_request", msg)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
