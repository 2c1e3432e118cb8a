package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dsmelov/securekey/internal/common"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps sentinel errors onto HTTP statuses. Anything unmatched is
// reported as a generic 500 so internal details never reach the client.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		writeFailure(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrInvalidOrExpiredCode),
		errors.Is(err, common.ErrUnauthorized):
		writeFailure(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, common.ErrMFARequired):
		writeJSON(w, http.StatusForbidden, map[string]any{
			"success":    false,
			"message":    "MFA verification required",
			"requireMFA": true,
		})
	case errors.Is(err, common.ErrNotFound):
		writeFailure(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrAlreadyExists):
		writeFailure(w, http.StatusConflict, "account already exists")
	default:
		writeFailure(w, http.StatusInternalServerError, "internal error")
	}
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request payload")
		return false
	}
	return true
}
