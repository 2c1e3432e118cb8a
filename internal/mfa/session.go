// Package mfa implements the time-boxed multi-factor session as an explicit
// state machine:
//
//	Unverified -> PendingCode -> Verified -> Unverified
//
// Transitions are pure functions over an externally supplied clock; validity
// is recomputed on every check, there is no background expiry. Session is a
// value type, so a transition returns the new state and callers decide when
// to persist it.
package mfa

import (
	"time"

	"github.com/dsmelov/securekey/internal/common"
)

// Status enumerates the session states.
type Status int

const (
	// Unverified: no trust window and no outstanding challenge.
	Unverified Status = iota
	// PendingCode: a one-time code has been issued and not yet confirmed.
	PendingCode
	// Verified: a trust window is open until the stored expiry.
	Verified
)

// Session is the per-user MFA state. The zero value is not usable; construct
// with NewSession or Restore.
type Session struct {
	status   Status
	code     OneTimeCode // set only in PendingCode
	expiry   time.Time   // set only in Verified
	duration time.Duration
}

// NewSession returns an Unverified session with the given trust-window
// duration. The [1,60] minute bound is enforced at the boundary, not here.
func NewSession(duration time.Duration) Session {
	return Session{status: Unverified, duration: duration}
}

// Restore rebuilds a session from its persisted fields. Combinations that
// cannot occur in the state machine (a verified flag without an expiry)
// collapse to Unverified; an outstanding code always takes precedence,
// since issuing one ends any open trust window.
func Restore(verified bool, expiry time.Time, codeValue string, codeExpiry time.Time, duration time.Duration) Session {
	s := Session{duration: duration}

	switch {
	case codeValue != "":
		s.status = PendingCode
		s.code = OneTimeCode{Value: codeValue, Expiry: codeExpiry}
	case verified && !expiry.IsZero():
		s.status = Verified
		s.expiry = expiry
	default:
		s.status = Unverified
	}

	return s
}

func (s Session) Status() Status          { return s.status }
func (s Session) Duration() time.Duration { return s.duration }

// Expiry returns the trust-window expiry; ok is false unless Verified.
func (s Session) Expiry() (time.Time, bool) {
	return s.expiry, s.status == Verified
}

// Code returns the outstanding one-time code; ok is false unless PendingCode.
func (s Session) Code() (OneTimeCode, bool) {
	return s.code, s.status == PendingCode
}

// IssueCode generates a fresh code and moves to PendingCode. Allowed from any
// state: reissuing before the previous code was used simply replaces it
// (latest wins), and issuing from Verified forces a re-challenge.
func (s Session) IssueCode(now time.Time) (Session, OneTimeCode, error) {
	code, err := NewOneTimeCode(now)
	if err != nil {
		return s, OneTimeCode{}, err
	}

	next := s
	next.status = PendingCode
	next.code = code
	next.expiry = time.Time{}
	return next, code, nil
}

// VerifyCode confirms the challenge. On success the code is cleared and the
// trust window opens: Verified with expiry = now + duration. On mismatch,
// code expiry, or no outstanding code, the session is returned unchanged
// together with common.ErrInvalidOrExpiredCode.
func (s Session) VerifyCode(submitted string, now time.Time) (Session, error) {
	if s.status != PendingCode || !s.code.Matches(submitted, now) {
		return s, common.ErrInvalidOrExpiredCode
	}

	next := s
	next.status = Verified
	next.code = OneTimeCode{}
	next.expiry = now.Add(s.duration)
	return next, nil
}

// IsValid reports whether the trust window is open. Pure query: expiry is
// evaluated lazily against the supplied clock and the state is not mutated,
// so a session past its expiry reports false without any explicit End call.
func (s Session) IsValid(now time.Time) bool {
	return s.status == Verified && now.Before(s.expiry)
}

// End closes the trust window and discards any outstanding code. Used on
// logout and explicit re-challenge.
func (s Session) End() Session {
	return Session{status: Unverified, duration: s.duration}
}

// SetDuration updates the trust-window duration. If a window is currently
// open, its start is preserved: the new expiry is start + newDuration, so a
// mid-session change neither extends nor truncates the elapsed portion. The
// window may become immediately invalid if the elapsed time already exceeds
// the new duration.
func (s Session) SetDuration(d time.Duration) Session {
	next := s
	next.duration = d

	if s.status == Verified {
		start := s.expiry.Add(-s.duration)
		next.expiry = start.Add(d)
	}

	return next
}
