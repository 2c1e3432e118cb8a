package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dsmelov/securekey/internal/common"
	"github.com/dsmelov/securekey/internal/dbx"
	"github.com/dsmelov/securekey/internal/logging"
	"github.com/dsmelov/securekey/internal/mfa"
	"github.com/dsmelov/securekey/internal/server/models"
	"github.com/dsmelov/securekey/internal/server/repositories/credentials"
	"github.com/dsmelov/securekey/internal/server/repositories/users"
)

func ptr(s string) *string { return &s }

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (nopLogger) With(args ...any) logging.Logger                    { return nopLogger{} }

// memUsersRepo is an in-memory users.Repository.
type memUsersRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{users: map[string]*models.User{}}
}

func (r *memUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := *user
	r.users[u.ID] = &u
	return user, nil
}

func (r *memUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUsersRepo) GetByResetCode(ctx context.Context, code string, now time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetOTP == code && u.ResetOTPExpiry.After(now) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUsersRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return common.ErrNotFound
	}
	u := *user
	r.users[u.ID] = &u
	return nil
}

// memCredentialsRepo is an in-memory credentials.Repository.
type memCredentialsRepo struct {
	mu      sync.Mutex
	records map[string]*models.CredentialRecord
}

func newMemCredentialsRepo() *memCredentialsRepo {
	return &memCredentialsRepo{records: map[string]*models.CredentialRecord{}}
}

func (r *memCredentialsRepo) Create(ctx context.Context, record *models.CredentialRecord) (*models.CredentialRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := *record
	r.records[rec.ID] = &rec
	return record, nil
}

func (r *memCredentialsRepo) GetByID(ctx context.Context, userID, id string) (*models.CredentialRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.UserID != userID {
		return nil, common.ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func (r *memCredentialsRepo) ListByUser(ctx context.Context, userID string) ([]*models.CredentialRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.CredentialRecord
	for _, rec := range r.records {
		if rec.UserID == userID {
			copied := *rec
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastUpdated.After(out[j].LastUpdated) })
	return out, nil
}

func (r *memCredentialsRepo) Update(ctx context.Context, record *models.CredentialRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.records[record.ID]
	if !ok || existing.UserID != record.UserID {
		return common.ErrNotFound
	}
	rec := *record
	r.records[rec.ID] = &rec
	return nil
}

func (r *memCredentialsRepo) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.UserID != userID {
		return common.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *memCredentialsRepo) ListDue(ctx context.Context, userID string, now time.Time) ([]*models.CredentialRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.CredentialRecord
	for _, rec := range r.records {
		if rec.UserID == userID && !rec.NextReminder.After(now) {
			copied := *rec
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextReminder.Before(out[j].NextReminder) })
	return out, nil
}

// fakeManager hands out the in-memory repositories regardless of the DBTX.
type fakeManager struct {
	usersRepo       *memUsersRepo
	credentialsRepo *memCredentialsRepo
}

func newFakeManager() *fakeManager {
	return &fakeManager{usersRepo: newMemUsersRepo(), credentialsRepo: newMemCredentialsRepo()}
}

func (m *fakeManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (m *fakeManager) Users(db dbx.DBTX) users.Repository                  { return m.usersRepo }
func (m *fakeManager) Credentials(db dbx.DBTX) credentials.Repository     { return m.credentialsRepo }

func (m *fakeManager) WithinTransaction(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return fn(ctx, nil)
}

// fakeSender records every delivered code.
type sentCode struct {
	Email   string
	Code    mfa.OneTimeCode
	Purpose mfa.Purpose
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentCode
}

func (s *fakeSender) SendCode(ctx context.Context, email string, code mfa.OneTimeCode, purpose mfa.Purpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentCode{Email: email, Code: code, Purpose: purpose})
	return nil
}

func (s *fakeSender) last() (sentCode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return sentCode{}, false
	}
	return s.sent[len(s.sent)-1], true
}
