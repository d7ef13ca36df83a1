package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"fpndb/internal/model"
	"fpndb/internal/store"
)

const recordColumns = `id::text, submitter, algorithm, sequence, allele, result_type,
	expected_result, actual_result, description, status, submitted_at, approved_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE metacharacters so the search term is
// matched as a literal substring, same as the memory store.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanRecord(row pgx.Row) (model.Record, error) {
	var rec model.Record
	err := row.Scan(
		&rec.ID, &rec.Submitter, &rec.Algorithm, &rec.Sequence, &rec.Allele,
		&rec.ResultType, &rec.ExpectedResult, &rec.ActualResult, &rec.Description,
		&rec.Status, &rec.SubmittedAt, &rec.ApprovedAt,
	)
	return rec, err
}

func (s *Store) CreateRecord(ctx context.Context, rec model.Record) (model.Record, error) {
	rec.Submitter = strings.ToLower(strings.TrimSpace(rec.Submitter))
	if rec.Submitter == "" {
		return model.Record{}, errors.New("submitter_required")
	}
	if strings.TrimSpace(rec.Algorithm) == "" {
		return model.Record{}, errors.New("algorithm_required")
	}
	if strings.TrimSpace(rec.Sequence) == "" {
		return model.Record{}, errors.New("sequence_required")
	}
	if !rec.ResultType.Valid() {
		return model.Record{}, errors.New("result_type_invalid")
	}

	out, err := scanRecord(s.pool.QueryRow(ctx, `
		insert into records (id, submitter, algorithm, sequence, allele, result_type,
			expected_result, actual_result, description, status)
		values ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, 'pending')
		returning `+recordColumns+`
	`, uuid.NewString(), rec.Submitter, rec.Algorithm, rec.Sequence, rec.Allele,
		rec.ResultType, rec.ExpectedResult, rec.ActualResult, rec.Description))
	if err != nil {
		// FK on submitter doubles as the verified-user gate.
		return model.Record{}, mapPgErr(err)
	}
	return out, nil
}

func (s *Store) ApproveRecord(ctx context.Context, id string) (*model.Record, error) {
	rec, err := scanRecord(s.pool.QueryRow(ctx, `
		update records
		set status = 'approved', approved_at = now()
		where id = $1::uuid
		returning `+recordColumns+`
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, mapPgErr(err)
	}
	return &rec, nil
}

func (s *Store) GetApprovedRecord(ctx context.Context, id string) (*model.Record, error) {
	rec, err := scanRecord(s.pool.QueryRow(ctx, `
		select `+recordColumns+`
		from records
		where id = $1::uuid and status = 'approved'
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, mapPgErr(err)
	}
	return &rec, nil
}

func (s *Store) ListApprovedRecords(ctx context.Context, f store.RecordFilter) ([]model.Record, error) {
	query := `select ` + recordColumns + ` from records where status = 'approved'`
	var args []any

	if search := strings.TrimSpace(f.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		query += fmt.Sprintf(" and (sequence ilike $%d or description ilike $%d)", len(args), len(args))
	}
	if f.Algorithm != "" {
		args = append(args, f.Algorithm)
		query += fmt.Sprintf(" and algorithm = $%d", len(args))
	}
	if f.ResultType != "" {
		args = append(args, string(f.ResultType))
		query += fmt.Sprintf(" and result_type = $%d", len(args))
	}
	query += " order by submitted_at desc"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgErr(err)
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, mapPgErr(err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) CountApprovedRecords(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
		select count(*) from records where status = 'approved'
	`).Scan(&n)
	if err != nil {
		return 0, mapPgErr(err)
	}
	return n, nil
}

func (s *Store) ListApprovedAlgorithms(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		select distinct algorithm from records where status = 'approved' order by algorithm
	`)
	if err != nil {
		return nil, mapPgErr(err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, mapPgErr(err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
