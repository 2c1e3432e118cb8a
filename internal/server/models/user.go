package models

import (
	"time"

	"github.com/dsmelov/securekey/internal/mfa"
)

// User is a vault owner. The MFA session and both one-time-code slots are
// stored on the user row, one session per user.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte

	// Verified is set after the first successful code verification.
	Verified bool

	// ReminderFrequencyDays drives nextReminder on credential writes.
	// Bounds [30,365] are enforced at the API boundary.
	ReminderFrequencyDays int

	// MFA session fields (see MFA/SetMFA).
	MFAVerified        bool
	MFASessionExpiry   time.Time
	MFASessionDuration int // minutes, [1,60]
	OTP                string
	OTPExpiry          time.Time

	// Password-reset slot, independent of the MFA slot.
	ResetOTP       string
	ResetOTPExpiry time.Time

	CreatedAt time.Time
}

// MFA reconstructs the session state machine from the persisted fields.
func (u *User) MFA() mfa.Session {
	return mfa.Restore(
		u.MFAVerified,
		u.MFASessionExpiry,
		u.OTP,
		u.OTPExpiry,
		time.Duration(u.MFASessionDuration)*time.Minute,
	)
}

// SetMFA writes a session state back onto the persisted fields.
func (u *User) SetMFA(s mfa.Session) {
	u.MFASessionDuration = int(s.Duration() / time.Minute)

	u.MFAVerified = false
	u.MFASessionExpiry = time.Time{}
	u.OTP = ""
	u.OTPExpiry = time.Time{}

	switch s.Status() {
	case mfa.PendingCode:
		code, _ := s.Code()
		u.OTP = code.Value
		u.OTPExpiry = code.Expiry
	case mfa.Verified:
		expiry, _ := s.Expiry()
		u.MFAVerified = true
		u.MFASessionExpiry = expiry
	}
}
