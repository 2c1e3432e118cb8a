package models

import "time"

// CredentialRecord is a single vault entry owned by one user. The secret is
// stored only as the serialized encrypted blob; plaintext exists solely in
// request/response flow.
type CredentialRecord struct {
	ID       string
	UserID   string
	URL      string
	Username string

	// EncryptedSecret is the blob string {"iv":...,"encryptedData":...}.
	EncryptedSecret string

	// StrengthScore derives from the evaluator's run on the plaintext at the
	// time of the last write.
	StrengthScore int

	Notes string

	LastUpdated  time.Time
	NextReminder time.Time
	CreatedAt    time.Time
}
