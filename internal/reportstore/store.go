// Package reportstore persists generated reports and serves the latest
// report and bounded history per repository. One Store backs three modes:
// postgres when a DSN is configured, a JSON file when a path is, and plain
// memory otherwise.
package reportstore

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"

	"repohealth/internal/report"
)

// ErrNotFound is returned when a repository has no stored report.
var ErrNotFound = errors.New("reportstore: report not found")

// History limits. A non-positive request gets the default; nothing can ask
// for more than the max.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

const latestCacheEntries = 1024

type Store struct {
	path string
	db   *sql.DB

	loadOnce sync.Once
	mu       sync.RWMutex
	byRepo   map[string][]report.Report // newest first

	schemaOnce sync.Once
	schemaErr  error

	latest *lru.Cache[string, report.Report]
}

// NewMemory keeps reports only for the lifetime of the process.
func NewMemory() *Store {
	return &Store{byRepo: make(map[string][]report.Report)}
}

// NewFile persists the whole store as one JSON document at path.
func NewFile(path string) *Store {
	return &Store{path: strings.TrimSpace(path), byRepo: make(map[string][]report.Report)}
}

// NewPostgres connects via the pgx stdlib driver and verifies the
// connection up front. Schema creation is deferred to first use.
func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	cache, err := lru.New[string, report.Report](latestCacheEntries)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, latest: cache}, nil
}

// NewFromEnv picks the backend from the environment: REPORT_STORE_PG_DSN
// wins, then REPORT_STORE_PATH, then memory. An unreachable database falls
// back to local storage rather than failing startup.
func NewFromEnv() *Store {
	if dsn := strings.TrimSpace(os.Getenv("REPORT_STORE_PG_DSN")); dsn != "" {
		if s, err := NewPostgres(dsn); err == nil {
			return s
		}
	}
	if path := strings.TrimSpace(os.Getenv("REPORT_STORE_PATH")); path != "" {
		return NewFile(path)
	}
	return NewMemory()
}

// Backend names the storage mode for startup logging.
func (s *Store) Backend() string {
	switch {
	case s == nil:
		return "none"
	case s.db != nil:
		return "postgres"
	case s.path != "":
		return "file"
	default:
		return "memory"
	}
}

// Save stores one report. The report must carry an ID and a repository.
func (s *Store) Save(ctx context.Context, rep report.Report) error {
	if s == nil {
		return errors.New("reportstore: store is nil")
	}
	if strings.TrimSpace(rep.ID) == "" || strings.TrimSpace(rep.Repository) == "" {
		return errors.New("reportstore: report needs an id and a repository")
	}
	if s.db != nil {
		if err := s.saveDB(ctx, rep); err != nil {
			return err
		}
		if s.latest != nil {
			s.latest.Remove(rep.Repository)
		}
		return nil
	}
	return s.saveLocal(rep)
}

// Latest returns the most recent report for a repository, or ErrNotFound.
func (s *Store) Latest(ctx context.Context, repo string) (report.Report, error) {
	if s == nil {
		return report.Report{}, ErrNotFound
	}
	repo = strings.TrimSpace(repo)
	if repo == "" {
		return report.Report{}, ErrNotFound
	}
	if s.db != nil {
		if s.latest != nil {
			if rep, ok := s.latest.Get(repo); ok {
				return rep, nil
			}
		}
		rep, err := s.latestDB(ctx, repo)
		if err != nil {
			return report.Report{}, err
		}
		if s.latest != nil {
			s.latest.Add(repo, rep)
		}
		return rep, nil
	}
	return s.latestLocal(repo)
}

// History returns up to limit reports for a repository, newest first. A
// repository with no reports yields an empty slice, not an error.
func (s *Store) History(ctx context.Context, repo string, limit int) ([]report.Report, error) {
	if s == nil {
		return nil, nil
	}
	repo = strings.TrimSpace(repo)
	if repo == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if s.db != nil {
		return s.historyDB(ctx, repo, limit)
	}
	return s.historyLocal(repo, limit)
}

// Close releases the database connection, if any.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
