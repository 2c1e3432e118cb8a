// Package services contains the server-side business logic: account
// lifecycle, the MFA challenge flow, and the credential vault operations.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dsmelov/securekey/internal/common"
	"github.com/dsmelov/securekey/internal/logging"
	"github.com/dsmelov/securekey/internal/mailer"
	"github.com/dsmelov/securekey/internal/mfa"
	"github.com/dsmelov/securekey/internal/server/auth"
	"github.com/dsmelov/securekey/internal/server/config"
	"github.com/dsmelov/securekey/internal/server/models"
	"github.com/dsmelov/securekey/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultReminderFrequencyDays = 90
	defaultMFADurationMinutes    = 10

	minMFADurationMinutes = 1
	maxMFADurationMinutes = 60

	minReminderFrequencyDays = 30
	maxReminderFrequencyDays = 365
)

// LoginResult is the outcome of a successful password check. MFARequired
// tells the client whether a code challenge stands between it and the vault.
type LoginResult struct {
	Token       string
	MFARequired bool
	User        *models.User
}

// MFAStatus is a snapshot of the user's trust window.
type MFAStatus struct {
	Required        bool
	SessionExpiry   time.Time
	SessionDuration int // minutes
}

// UserService handles accounts and the MFA session attached to each of them.
// The session state machine itself lives in the mfa package; this service
// loads it from the user row, applies a transition, and persists it back.
type UserService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	sender        mailer.CodeSender
	logger        logging.Logger
	jwtSecret     []byte
	tokenValidity time.Duration
	now           func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, sender mailer.CodeSender,
	logger logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		db:            db,
		repomanager:   m,
		sender:        sender,
		logger:        logger.With("service", "users"),
		jwtSecret:     []byte(cfg.JWTSecret),
		tokenValidity: cfg.TokenValidity,
		now:           time.Now,
	}
}

// Register creates an account and issues the first verification code.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", common.ErrValidation)
	}

	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, common.ErrAlreadyExists
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrInternal
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrInternal
	}

	user := &models.User{
		ID:                    uuid.NewString(),
		Name:                  name,
		Email:                 email,
		PasswordHash:          hash,
		ReminderFrequencyDays: defaultReminderFrequencyDays,
		MFASessionDuration:    defaultMFADurationMinutes,
	}

	user, err = repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	if err := s.challenge(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login checks the account password and mints a JWT. A valid trust window
// skips the code challenge; otherwise a fresh code is issued and sent.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrInternal
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, common.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, common.ErrInternal
	}

	mfaRequired := !user.MFA().IsValid(s.now())
	if mfaRequired {
		if err := s.challenge(ctx, user); err != nil {
			return nil, err
		}
	}

	return &LoginResult{Token: token, MFARequired: mfaRequired, User: user}, nil
}

// SendMFACode issues a new challenge code for the user, replacing any
// outstanding one, and delivers it.
func (s *UserService) SendMFACode(ctx context.Context, userID string) error {
	user, err := s.get(ctx, userID)
	if err != nil {
		return err
	}
	return s.challenge(ctx, user)
}

// challenge runs the IssueCode transition, persists the new state, and hands
// the code to the sender. The code itself is never logged.
func (s *UserService) challenge(ctx context.Context, user *models.User) error {
	session, code, err := user.MFA().IssueCode(s.now())
	if err != nil {
		return common.ErrInternal
	}

	user.SetMFA(session)
	if err := s.repomanager.Users(s.db).Update(ctx, user); err != nil {
		return common.ErrInternal
	}

	if err := s.sender.SendCode(ctx, user.Email, code, mfa.PurposeMFA); err != nil {
		s.logger.Error(ctx, "code delivery failed", "user_id", user.ID, "error", err)
		return common.ErrInternal
	}

	s.logger.Info(ctx, "verification code issued", "user_id", user.ID)
	return nil
}

// VerifyMFA confirms a submitted code. On success the trust window opens and
// the account is marked verified.
func (s *UserService) VerifyMFA(ctx context.Context, userID, code string) (*MFAStatus, error) {
	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}

	session, err := user.MFA().VerifyCode(code, s.now())
	if err != nil {
		return nil, err
	}

	user.Verified = true
	user.SetMFA(session)
	if err := s.repomanager.Users(s.db).Update(ctx, user); err != nil {
		return nil, common.ErrInternal
	}

	s.logger.Info(ctx, "mfa verified", "user_id", user.ID)
	return s.status(user), nil
}

// MFAStatus reports whether the user currently needs a code challenge.
func (s *UserService) MFAStatus(ctx context.Context, userID string) (*MFAStatus, error) {
	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.status(user), nil
}

func (s *UserService) status(user *models.User) *MFAStatus {
	session := user.MFA()
	st := &MFAStatus{
		Required:        !session.IsValid(s.now()),
		SessionDuration: int(session.Duration() / time.Minute),
	}
	if expiry, ok := session.Expiry(); ok {
		st.SessionExpiry = expiry
	}
	return st
}

// UpdateMFADuration changes the trust-window length. An open window keeps its
// start time, so shortening the duration can close it immediately.
func (s *UserService) UpdateMFADuration(ctx context.Context, userID string, minutes int) (*MFAStatus, error) {
	if minutes < minMFADurationMinutes || minutes > maxMFADurationMinutes {
		return nil, fmt.Errorf("%w: session duration must be between %d and %d minutes",
			common.ErrValidation, minMFADurationMinutes, maxMFADurationMinutes)
	}

	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.SetMFA(user.MFA().SetDuration(time.Duration(minutes) * time.Minute))
	if err := s.repomanager.Users(s.db).Update(ctx, user); err != nil {
		return nil, common.ErrInternal
	}

	return s.status(user), nil
}

// Logout closes the trust window. The next vault access will require a new
// code regardless of how much of the window remained.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	user, err := s.get(ctx, userID)
	if err != nil {
		return err
	}

	user.SetMFA(user.MFA().End())
	if err := s.repomanager.Users(s.db).Update(ctx, user); err != nil {
		return common.ErrInternal
	}

	s.logger.Info(ctx, "session ended", "user_id", user.ID)
	return nil
}

// GetProfile returns the account for display. The password hash stays inside
// the service boundary.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.get(ctx, userID)
}

// UpdatePassword changes the account password after checking the old one.
func (s *UserService) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", common.ErrValidation)
	}

	user, err := s.get(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(oldPassword)) != nil {
		return common.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return common.ErrInternal
	}

	user.PasswordHash = hash
	if err := s.repomanager.Users(s.db).Update(ctx, user); err != nil {
		return common.ErrInternal
	}

	return nil
}

// UpdateReminderFrequency changes how often stored credentials come due for
// rotation. Existing records keep their reminder dates; only subsequent
// writes use the new frequency.
func (s *UserService) UpdateReminderFrequency(ctx context.Context, userID string, days int) error {
	if days < minReminderFrequencyDays || days > maxReminderFrequencyDays {
		return fmt.Errorf("%w: reminder frequency must be between %d and %d days",
			common.ErrValidation, minReminderFrequencyDays, maxReminderFrequencyDays)
	}

	user, err := s.get(ctx, userID)
	if err != nil {
		return err
	}

	user.ReminderFrequencyDays = days
	if err := s.repomanager.Users(s.db).Update(ctx, user); err != nil {
		return common.ErrInternal
	}

	return nil
}

// ForgotPassword issues a reset code into the reset slot, which is
// independent of the MFA slot: requesting a reset does not disturb an open
// trust window or an outstanding challenge.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return common.ErrInternal
	}

	code, err := mfa.NewOneTimeCode(s.now())
	if err != nil {
		return common.ErrInternal
	}

	user.ResetOTP = code.Value
	user.ResetOTPExpiry = code.Expiry
	if err := repo.Update(ctx, user); err != nil {
		return common.ErrInternal
	}

	if err := s.sender.SendCode(ctx, user.Email, code, mfa.PurposeReset); err != nil {
		s.logger.Error(ctx, "reset code delivery failed", "user_id", user.ID, "error", err)
		return common.ErrInternal
	}

	return nil
}

// ResetPassword sets a new password for the account holding a live reset
// code, then clears the slot so the code cannot be replayed.
func (s *UserService) ResetPassword(ctx context.Context, code, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", common.ErrValidation)
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByResetCode(ctx, code, s.now())
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrInvalidOrExpiredCode
		}
		return common.ErrInternal
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return common.ErrInternal
	}

	user.PasswordHash = hash
	user.ResetOTP = ""
	user.ResetOTPExpiry = time.Time{}
	if err := repo.Update(ctx, user); err != nil {
		return common.ErrInternal
	}

	s.logger.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}

func (s *UserService) get(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	return user, nil
}
