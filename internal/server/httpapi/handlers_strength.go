package httpapi

import "net/http"

func (s *Server) handleCheckStrength(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Password == "" {
		writeFailure(w, http.StatusBadRequest, "password is required")
		return
	}

	report, err := s.strength.Check(r.Context(), req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"strengthScore":    report.Score,
		"strengthCategory": report.Category,
		"recommendation":   report.Recommendation,
		"recommendedPassword": map[string]any{
			"value":    report.RecommendedPassword.Value,
			"score":    report.RecommendedPassword.Score,
			"category": report.RecommendedPassword.Category,
		},
		"details": map[string]any{
			"score":             report.Details.RawClass,
			"crackTimesSeconds": report.Details.CrackTimesSeconds,
			"crackTimesDisplay": report.Details.CrackTimesDisplay,
			"feedback":          report.Details.Feedback,
		},
	})
}
