package reportstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"repohealth/internal/report"
)

// ensureLoaded reads the backing file once. A missing or unreadable file
// starts the store empty; a later Save recreates it.
func (s *Store) ensureLoaded() {
	s.loadOnce.Do(func() {
		if s.path == "" {
			return
		}
		b, err := os.ReadFile(s.path)
		if err != nil {
			return
		}
		var rows []report.Report
		if err := json.Unmarshal(b, &rows); err != nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, rep := range rows {
			repo := strings.TrimSpace(rep.Repository)
			if repo == "" {
				continue
			}
			s.byRepo[repo] = append(s.byRepo[repo], rep)
		}
		for repo := range s.byRepo {
			sortNewestFirst(s.byRepo[repo])
		}
	})
}

func (s *Store) saveLocal(rep report.Report) error {
	s.ensureLoaded()
	s.mu.Lock()
	repo := rep.Repository
	s.byRepo[repo] = append([]report.Report{rep}, s.byRepo[repo]...)
	sortNewestFirst(s.byRepo[repo])
	s.mu.Unlock()
	return s.persistFile()
}

func (s *Store) latestLocal(repo string) (report.Report, error) {
	s.ensureLoaded()
	s.mu.RLock()
	defer s.mu.RUnlock()
	reps := s.byRepo[repo]
	if len(reps) == 0 {
		return report.Report{}, ErrNotFound
	}
	return reps[0], nil
}

func (s *Store) historyLocal(repo string, limit int) ([]report.Report, error) {
	s.ensureLoaded()
	s.mu.RLock()
	defer s.mu.RUnlock()
	reps := s.byRepo[repo]
	if len(reps) > limit {
		reps = reps[:limit]
	}
	out := make([]report.Report, len(reps))
	copy(out, reps)
	return out, nil
}

func (s *Store) persistFile() error {
	if s.path == "" {
		return nil
	}
	s.mu.RLock()
	rows := make([]report.Report, 0, len(s.byRepo))
	for _, reps := range s.byRepo {
		rows = append(rows, reps...)
	}
	s.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Repository != rows[j].Repository {
			return rows[i].Repository < rows[j].Repository
		}
		return rows[i].GeneratedAt > rows[j].GeneratedAt
	})
	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

// sortNewestFirst orders by generatedAt descending. Timestamps are RFC3339
// in UTC, so string comparison is chronological; stability keeps the most
// recent save first on ties.
func sortNewestFirst(reps []report.Report) {
	sort.SliceStable(reps, func(i, j int) bool {
		return reps[i].GeneratedAt > reps[j].GeneratedAt
	})
}
