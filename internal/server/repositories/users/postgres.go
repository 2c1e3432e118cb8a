// Package users persists vault owners together with their MFA session and
// one-time-code slots.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dsmelov/securekey/internal/common"
	"github.com/dsmelov/securekey/internal/dbx"
	"github.com/dsmelov/securekey/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, name, email, password_hash, verified, reminder_frequency_days,
	mfa_verified, mfa_session_expiry, mfa_session_duration, otp, otp_expiry,
	reset_otp, reset_otp_expiry, created_at`

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (id, name, email, password_hash, reminder_frequency_days, mfa_session_duration)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash,
		user.ReminderFrequencyDays, user.MFASessionDuration).Scan(&user.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByResetCode(ctx context.Context, code string, now time.Time) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_otp = $1 AND reset_otp_expiry > $2`
	return r.scanUser(r.db.QueryRowContext(ctx, query, code, now))
}

func (r *PostgresRepository) Update(ctx context.Context, user *models.User) error {

	query :=
		`UPDATE users
		 SET name = $2, email = $3, password_hash = $4, verified = $5,
			 reminder_frequency_days = $6, mfa_verified = $7, mfa_session_expiry = $8,
			 mfa_session_duration = $9, otp = $10, otp_expiry = $11,
			 reset_otp = $12, reset_otp_expiry = $13
		 WHERE id = $1
		 `

	result, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Verified,
		user.ReminderFrequencyDays, user.MFAVerified, nullTime(user.MFASessionExpiry),
		user.MFASessionDuration, nullString(user.OTP), nullTime(user.OTPExpiry),
		nullString(user.ResetOTP), nullTime(user.ResetOTPExpiry))

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}

	var (
		mfaExpiry, otpExpiry, resetExpiry sql.NullTime
		otp, resetOTP                     sql.NullString
	)

	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Verified,
		&user.ReminderFrequencyDays, &user.MFAVerified, &mfaExpiry,
		&user.MFASessionDuration, &otp, &otpExpiry, &resetOTP, &resetExpiry,
		&user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.MFASessionExpiry = mfaExpiry.Time
	user.OTP = otp.String
	user.OTPExpiry = otpExpiry.Time
	user.ResetOTP = resetOTP.String
	user.ResetOTPExpiry = resetExpiry.Time

	return user, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
