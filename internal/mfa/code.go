package mfa

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"
)

// CodeTTL is how long an issued one-time code stays valid.
const CodeTTL = 10 * time.Minute

// Purpose tags a one-time code for out-of-band delivery. The MFA and
// password-reset slots have independent lifecycles.
type Purpose string

const (
	PurposeMFA   Purpose = "mfa"
	PurposeReset Purpose = "reset"
)

// OneTimeCode is an ephemeral 6-digit numeric code. Single-use: it is
// cleared after a successful verification or replaced by a newer code on
// resend.
type OneTimeCode struct {
	Value  string
	Expiry time.Time
}

// NewOneTimeCode draws a uniformly random 6-digit code from the system
// CSPRNG, valid for CodeTTL from now.
func NewOneTimeCode(now time.Time) (OneTimeCode, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return OneTimeCode{}, fmt.Errorf("generating one-time code: %w", err)
	}

	return OneTimeCode{
		Value:  fmt.Sprintf("%06d", n.Int64()),
		Expiry: now.Add(CodeTTL),
	}, nil
}

// Matches reports whether the submitted value equals the code and the code
// has not expired. The comparison is constant-time.
func (c OneTimeCode) Matches(submitted string, now time.Time) bool {
	if c.Value == "" || !now.Before(c.Expiry) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.Value), []byte(submitted)) == 1
}
