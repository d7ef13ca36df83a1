package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"fpndb/internal/model"
	"fpndb/internal/store"
)

func (s *Store) CreateVerification(ctx context.Context, v model.VerificationAttempt) (model.VerificationAttempt, error) {
	v.Email = strings.ToLower(strings.TrimSpace(v.Email))
	v.Name = strings.TrimSpace(v.Name)
	if v.Email == "" {
		return model.VerificationAttempt{}, errors.New("email_required")
	}
	if v.Name == "" {
		return model.VerificationAttempt{}, errors.New("name_required")
	}
	if v.Code == "" {
		return model.VerificationAttempt{}, errors.New("code_required")
	}

	var out model.VerificationAttempt
	err := s.pool.QueryRow(ctx, `
		insert into verification_attempts (email, code, name, institution, verified)
		values ($1, $2, $3, $4, false)
		on conflict (email) do update
		set code = excluded.code,
		    name = excluded.name,
		    institution = excluded.institution,
		    verified = false,
		    created_at = now()
		returning email, code, name, institution, verified, created_at
	`, v.Email, v.Code, v.Name, v.Institution).Scan(
		&out.Email, &out.Code, &out.Name, &out.Institution, &out.Verified, &out.CreatedAt,
	)
	if err != nil {
		return model.VerificationAttempt{}, mapPgErr(err)
	}
	return out, nil
}

func (s *Store) ConfirmVerification(ctx context.Context, email, code string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, mapPgErr(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var stored string
	var name, institution string
	err = tx.QueryRow(ctx, `
		select code, name, institution
		from verification_attempts
		where email = $1
	`, email).Scan(&stored, &name, &institution)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, mapPgErr(err)
	}
	if stored != code {
		return nil, store.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `
		update verification_attempts set verified = true where email = $1
	`, email); err != nil {
		return nil, mapPgErr(err)
	}

	var u model.User
	err = tx.QueryRow(ctx, `
		insert into users (email, name, institution)
		values ($1, $2, $3)
		on conflict (email) do update set email = excluded.email
		returning email, name, institution, verified_at
	`, email, name, institution).Scan(&u.Email, &u.Name, &u.Institution, &u.VerifiedAt)
	if err != nil {
		return nil, mapPgErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapPgErr(err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.pool.QueryRow(ctx, `
		select email, name, institution, verified_at
		from users
		where email = $1
	`, strings.ToLower(strings.TrimSpace(email))).Scan(&u.Email, &u.Name, &u.Institution, &u.VerifiedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, mapPgErr(err)
	}
	return &u, nil
}
