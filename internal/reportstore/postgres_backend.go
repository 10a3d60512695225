package reportstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"repohealth/internal/report"
)

func (s *Store) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS repo_reports (
  id TEXT PRIMARY KEY,
  repository TEXT NOT NULL,
  generated_at TIMESTAMP WITH TIME ZONE NOT NULL,
  overall_score INT NOT NULL,
  grade TEXT NOT NULL,
  payload JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_repo_reports_repository ON repo_reports (repository, generated_at DESC);
`)
	})
	return s.schemaErr
}

func (s *Store) saveDB(ctx context.Context, rep report.Report) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	payload, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO repo_reports (id, repository, generated_at, overall_score, grade, payload)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id)
DO UPDATE SET repository=EXCLUDED.repository,
  generated_at=EXCLUDED.generated_at,
  overall_score=EXCLUDED.overall_score,
  grade=EXCLUDED.grade,
  payload=EXCLUDED.payload`,
		rep.ID, rep.Repository, rep.GeneratedAt, rep.OverallScore, string(rep.Grade), payload)
	return err
}

func (s *Store) latestDB(ctx context.Context, repo string) (report.Report, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return report.Report{}, err
	}
	row := s.db.QueryRowContext(ctx, `
SELECT payload FROM repo_reports
WHERE repository = $1
ORDER BY generated_at DESC
LIMIT 1`, repo)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return report.Report{}, ErrNotFound
		}
		return report.Report{}, err
	}
	var rep report.Report
	if err := json.Unmarshal(payload, &rep); err != nil {
		return report.Report{}, err
	}
	return rep, nil
}

func (s *Store) historyDB(ctx context.Context, repo string, limit int) ([]report.Report, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT payload FROM repo_reports
WHERE repository = $1
ORDER BY generated_at DESC
LIMIT $2`, repo, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]report.Report, 0, limit)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			continue
		}
		var rep report.Report
		if err := json.Unmarshal(payload, &rep); err != nil {
			continue
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}
