package httpapi

import (
	"net/http"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := s.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Registration successful. A verification code has been sent to your email.",
		"userId":  user.ID,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"token":       res.Token,
		"mfaRequired": res.MFARequired,
		"user": map[string]any{
			"id":    res.User.ID,
			"name":  res.User.Name,
			"email": res.User.Email,
		},
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Logout(r.Context(), userID(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetProfile(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user": map[string]any{
			"id":                 user.ID,
			"name":               user.Name,
			"email":              user.Email,
			"verified":           user.Verified,
			"reminderFrequency":  user.ReminderFrequencyDays,
			"mfaSessionDuration": user.MFASessionDuration,
			"createdAt":          user.CreatedAt,
		},
	})
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.users.UpdatePassword(r.Context(), userID(r), req.OldPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Password updated"})
}

func (s *Server) handleUpdateReminderFrequency(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReminderFrequency int `json:"reminderFrequency"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.users.UpdateReminderFrequency(r.Context(), userID(r), req.ReminderFrequency); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Reminder frequency updated"})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.users.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "A reset code has been sent to your email.",
	})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code        string `json:"code"`
		NewPassword string `json:"newPassword"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.users.ResetPassword(r.Context(), req.Code, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Password reset successful"})
}
