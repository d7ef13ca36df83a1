package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fpndb/internal/model"
	"fpndb/internal/store"
)

type Store struct {
	mu sync.Mutex

	verifications map[string]model.VerificationAttempt // keyed by email
	users         map[string]model.User                // keyed by email
	records       map[string]model.Record              // keyed by id
}

func NewStore() *Store {
	return &Store{
		verifications: make(map[string]model.VerificationAttempt),
		users:         make(map[string]model.User),
		records:       make(map[string]model.Record),
	}
}

type errWithCode string

func (e errWithCode) Error() string { return string(e) }

func (s *Store) CreateRecord(_ context.Context, rec model.Record) (model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.Submitter = strings.ToLower(strings.TrimSpace(rec.Submitter))
	if rec.Submitter == "" {
		return model.Record{}, errWithCode("submitter_required")
	}
	if strings.TrimSpace(rec.Algorithm) == "" {
		return model.Record{}, errWithCode("algorithm_required")
	}
	if strings.TrimSpace(rec.Sequence) == "" {
		return model.Record{}, errWithCode("sequence_required")
	}
	if !rec.ResultType.Valid() {
		return model.Record{}, errWithCode("result_type_invalid")
	}
	if _, ok := s.users[rec.Submitter]; !ok {
		return model.Record{}, store.ErrNotVerified
	}

	rec.ID = uuid.NewString()
	rec.Status = model.RecordStatusPending
	rec.SubmittedAt = time.Now().UTC()
	rec.ApprovedAt = nil
	s.records[rec.ID] = rec
	return rec, nil
}

func (s *Store) ApproveRecord(_ context.Context, id string) (*model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	now := time.Now().UTC()
	rec.Status = model.RecordStatusApproved
	rec.ApprovedAt = &now
	s.records[id] = rec
	return &rec, nil
}

func (s *Store) GetApprovedRecord(_ context.Context, id string) (*model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok || rec.Status != model.RecordStatusApproved {
		return nil, store.ErrNotFound
	}
	return &rec, nil
}

func (s *Store) ListApprovedRecords(_ context.Context, f store.RecordFilter) ([]model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]model.Record, 0, len(s.records))
	for _, rec := range s.records {
		if rec.Status != model.RecordStatusApproved {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(rec.Sequence), search) &&
			!strings.Contains(strings.ToLower(rec.Description), search) {
			continue
		}
		if f.Algorithm != "" && rec.Algorithm != f.Algorithm {
			continue
		}
		if f.ResultType != "" && rec.ResultType != f.ResultType {
			continue
		}
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

func (s *Store) CountApprovedRecords(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, rec := range s.records {
		if rec.Status == model.RecordStatusApproved {
			n++
		}
	}
	return n, nil
}

func (s *Store) ListApprovedAlgorithms(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]struct{}{}
	var out []string
	for _, rec := range s.records {
		if rec.Status != model.RecordStatusApproved {
			continue
		}
		if _, ok := seen[rec.Algorithm]; ok {
			continue
		}
		seen[rec.Algorithm] = struct{}{}
		out = append(out, rec.Algorithm)
	}

	sort.Strings(out)
	return out, nil
}
