package httpapi

import "github.com/gorilla/mux"

// Router wires all endpoints. Everything under /api/passwords except the
// strength check additionally sits behind the MFA gate.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", s.handleRegister).Methods("POST")
	api.HandleFunc("/auth/login", s.handleLogin).Methods("POST")
	api.HandleFunc("/auth/forgot-password", s.handleForgotPassword).Methods("POST")
	api.HandleFunc("/auth/reset-password", s.handleResetPassword).Methods("POST")

	authed := api.NewRoute().Subrouter()
	authed.Use(s.authenticate)

	authed.HandleFunc("/auth/logout", s.handleLogout).Methods("POST")
	authed.HandleFunc("/auth/profile", s.handleProfile).Methods("GET")
	authed.HandleFunc("/auth/password", s.handleUpdatePassword).Methods("PUT")
	authed.HandleFunc("/auth/reminder-frequency", s.handleUpdateReminderFrequency).Methods("PUT")

	authed.HandleFunc("/mfa/send", s.handleSendMFACode).Methods("POST")
	authed.HandleFunc("/mfa/verify", s.handleVerifyMFA).Methods("POST")
	authed.HandleFunc("/mfa/status", s.handleMFAStatus).Methods("GET")
	authed.HandleFunc("/mfa/duration", s.handleUpdateMFADuration).Methods("PUT")

	authed.HandleFunc("/passwords/check-strength", s.handleCheckStrength).Methods("POST")

	vault := authed.NewRoute().Subrouter()
	vault.Use(s.requireMFA)

	vault.HandleFunc("/passwords", s.handleCreateCredential).Methods("POST")
	vault.HandleFunc("/passwords", s.handleListCredentials).Methods("GET")
	vault.HandleFunc("/passwords/reminders/due", s.handleListDue).Methods("GET")
	vault.HandleFunc("/passwords/{id}", s.handleGetCredential).Methods("GET")
	vault.HandleFunc("/passwords/{id}", s.handleUpdateCredential).Methods("PUT")
	vault.HandleFunc("/passwords/{id}", s.handleDeleteCredential).Methods("DELETE")

	return r
}
