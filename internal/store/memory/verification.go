package memory

import (
	"context"
	"strings"
	"time"

	"fpndb/internal/model"
	"fpndb/internal/store"
)

func (s *Store) CreateVerification(_ context.Context, v model.VerificationAttempt) (model.VerificationAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v.Email = strings.ToLower(strings.TrimSpace(v.Email))
	v.Name = strings.TrimSpace(v.Name)
	if v.Email == "" {
		return model.VerificationAttempt{}, errWithCode("email_required")
	}
	if v.Name == "" {
		return model.VerificationAttempt{}, errWithCode("name_required")
	}
	if v.Code == "" {
		return model.VerificationAttempt{}, errWithCode("code_required")
	}

	v.Verified = false
	v.CreatedAt = time.Now().UTC()

	// Re-signup silently replaces any earlier attempt and its code.
	s.verifications[v.Email] = v
	return v, nil
}

func (s *Store) ConfirmVerification(_ context.Context, email, code string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))

	v, ok := s.verifications[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	// A wrong code is indistinguishable from an unknown email.
	if v.Code != code {
		return nil, store.ErrNotFound
	}

	v.Verified = true
	s.verifications[email] = v

	u, ok := s.users[email]
	if !ok {
		u = model.User{
			Email:       email,
			Name:        v.Name,
			Institution: v.Institution,
			VerifiedAt:  time.Now().UTC(),
		}
		s.users[email] = u
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}
