package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dsmelov/securekey/internal/server/models"
	"github.com/dsmelov/securekey/internal/server/services"
	"github.com/gorilla/mux"
)

// credentialPayload renders a record without plaintext. The read endpoint
// adds the decrypted password on top.
func credentialPayload(rec *models.CredentialRecord) map[string]any {
	return map[string]any{
		"id":            rec.ID,
		"url":           rec.URL,
		"username":      rec.Username,
		"strengthScore": rec.StrengthScore,
		"notes":         rec.Notes,
		"lastUpdated":   rec.LastUpdated,
		"nextReminder":  rec.NextReminder,
		"createdAt":     rec.CreatedAt,
	}
}

func credentialPayloads(records []*models.CredentialRecord) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		out = append(out, credentialPayload(rec))
	}
	return out
}

func (s *Server) handleCreateCredential(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL      string  `json:"url"`
		Username string  `json:"username"`
		Password string  `json:"password"`
		Notes    *string `json:"notes"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	record, err := s.credentials.Create(r.Context(), userID(r), services.CredentialInput{
		URL: req.URL, Username: req.Username, Password: req.Password, Notes: req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":  true,
		"password": credentialPayload(record),
	})
}

func (s *Server) handleListCredentials(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// plain list unless any search parameter is present
	if q.Get("q") == "" && q.Get("sort") == "" && q.Get("page") == "" && q.Get("limit") == "" {
		records, err := s.credentials.List(r.Context(), userID(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"passwords": credentialPayloads(records),
		})
		return
	}

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	res, err := s.credentials.Search(r.Context(), userID(r), q.Get("q"), q.Get("sort"), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"passwords": credentialPayloads(res.Records),
		"total":     res.Total,
		"page":      res.Page,
		"limit":     res.Limit,
	})
}

func (s *Server) handleGetCredential(w http.ResponseWriter, r *http.Request) {
	record, plaintext, err := s.credentials.Get(r.Context(), userID(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	payload := credentialPayload(record)
	payload["password"] = plaintext
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "password": payload})
}

func (s *Server) handleUpdateCredential(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL      string  `json:"url"`
		Username string  `json:"username"`
		Password string  `json:"password"`
		Notes    *string `json:"notes"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	record, err := s.credentials.Update(r.Context(), userID(r), mux.Vars(r)["id"], services.CredentialInput{
		URL: req.URL, Username: req.Username, Password: req.Password, Notes: req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"password": credentialPayload(record),
	})
}

func (s *Server) handleDeleteCredential(w http.ResponseWriter, r *http.Request) {
	if err := s.credentials.Delete(r.Context(), userID(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Password deleted"})
}

func (s *Server) handleListDue(w http.ResponseWriter, r *http.Request) {
	records, err := s.credentials.ListDueForReminder(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"passwords": credentialPayloads(records),
	})
}
