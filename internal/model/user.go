package model

import "time"

// User exists only after a verification attempt has been confirmed
// with the correct code. Email is the identity key.
type User struct {
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Institution string    `json:"institution,omitempty"`
	VerifiedAt  time.Time `json:"verified_at"`
}

// VerificationAttempt is a pending or completed email verification.
// At most one live attempt exists per email; a new signup overwrites
// any prior attempt.
type VerificationAttempt struct {
	Email       string    `json:"email"`
	Code        string    `json:"-"`
	Name        string    `json:"name"`
	Institution string    `json:"institution,omitempty"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"created_at"`
}
