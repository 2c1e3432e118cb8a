package httpapi

import (
	"net/http"
	"time"

	"github.com/dsmelov/securekey/internal/server/services"
)

func mfaStatusPayload(status *services.MFAStatus) map[string]any {
	payload := map[string]any{
		"success":            true,
		"mfaRequired":        status.Required,
		"mfaSessionDuration": status.SessionDuration,
	}
	if !status.SessionExpiry.IsZero() {
		payload["mfaSessionExpiry"] = status.SessionExpiry.UTC().Format(time.RFC3339)
	} else {
		payload["mfaSessionExpiry"] = nil
	}
	return payload
}

func (s *Server) handleSendMFACode(w http.ResponseWriter, r *http.Request) {
	if err := s.users.SendMFACode(r.Context(), userID(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "A verification code has been sent to your email.",
	})
}

func (s *Server) handleVerifyMFA(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	status, err := s.users.VerifyMFA(r.Context(), userID(r), req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mfaStatusPayload(status))
}

func (s *Server) handleMFAStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.users.MFAStatus(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mfaStatusPayload(status))
}

func (s *Server) handleUpdateMFADuration(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Duration int `json:"duration"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	status, err := s.users.UpdateMFADuration(r.Context(), userID(r), req.Duration)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mfaStatusPayload(status))
}
