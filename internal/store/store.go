package store

import (
	"context"
	"errors"

	"fpndb/internal/model"
)

var (
	ErrNotFound    = errors.New("not_found")
	ErrConflict    = errors.New("conflict")
	ErrNotVerified = errors.New("not_verified")
)

// RecordFilter narrows ListApprovedRecords. Zero values mean no
// restriction on that axis; supplied predicates are conjoined.
type RecordFilter struct {
	Search     string           // case-insensitive substring against sequence or description
	Algorithm  string           // exact match
	ResultType model.ResultType // exact match
}

type Store interface {
	CreateVerification(ctx context.Context, v model.VerificationAttempt) (model.VerificationAttempt, error)
	ConfirmVerification(ctx context.Context, email, code string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	CreateRecord(ctx context.Context, rec model.Record) (model.Record, error)
	ApproveRecord(ctx context.Context, id string) (*model.Record, error)
	GetApprovedRecord(ctx context.Context, id string) (*model.Record, error)
	ListApprovedRecords(ctx context.Context, f RecordFilter) ([]model.Record, error)
	CountApprovedRecords(ctx context.Context) (int, error)
	ListApprovedAlgorithms(ctx context.Context) ([]string, error)
}
