package reportstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"repohealth/internal/report"
)

func sample(id, repo, generatedAt string, score int) report.Report {
	return report.Report{
		ID:            id,
		ReportVersion: report.Version,
		GeneratedAt:   generatedAt,
		Repository:    repo,
		OverallScore:  score,
		Grade:         report.GradeFor(score),
		Summary:       "s",
	}
}

func TestMemoryStoreSaveLatestHistory(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.Equal(t, "memory", s.Backend())

	// Saved out of chronological order on purpose.
	require.NoError(t, s.Save(ctx, sample("r2", "acme/api", "2026-08-25T10:05:00Z", 70)))
	require.NoError(t, s.Save(ctx, sample("r1", "acme/api", "2026-08-25T10:00:00Z", 60)))
	require.NoError(t, s.Save(ctx, sample("r3", "acme/api", "2026-08-25T10:10:00Z", 80)))

	latest, err := s.Latest(ctx, "acme/api")
	require.NoError(t, err)
	require.Equal(t, "r3", latest.ID)

	hist, err := s.History(ctx, "acme/api", 2)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	require.Equal(t, "r3", hist[0].ID)
	require.Equal(t, "r2", hist[1].ID)

	_, err = s.Latest(ctx, "acme/other")
	require.ErrorIs(t, err, ErrNotFound)

	hist, err = s.History(ctx, "acme/other", 5)
	require.NoError(t, err)
	require.Empty(t, hist)

	require.NoError(t, s.Close())
}

func TestSaveRejectsIncompleteReport(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.Error(t, s.Save(ctx, report.Report{Repository: "acme/api"}))
	require.Error(t, s.Save(ctx, report.Report{ID: "r1"}))
}

func TestHistoryLimitBounds(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	for i := 0; i < 25; i++ {
		rep := sample(
			fmt.Sprintf("r%02d", i),
			"acme/api",
			fmt.Sprintf("2026-08-25T10:%02d:00Z", i),
			60,
		)
		require.NoError(t, s.Save(ctx, rep))
	}

	hist, err := s.History(ctx, "acme/api", -1)
	require.NoError(t, err)
	require.Len(t, hist, DefaultHistoryLimit)

	hist, err = s.History(ctx, "acme/api", 3)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	require.Equal(t, "r24", hist[0].ID)
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reports.json")

	s1 := NewFile(path)
	require.Equal(t, "file", s1.Backend())
	require.NoError(t, s1.Save(ctx, sample("r1", "acme/api", "2026-08-25T10:00:00Z", 60)))
	require.NoError(t, s1.Save(ctx, sample("r2", "acme/api", "2026-08-25T10:05:00Z", 70)))
	require.NoError(t, s1.Save(ctx, sample("x1", "acme/web", "2026-08-25T09:00:00Z", 50)))

	s2 := NewFile(path)
	latest, err := s2.Latest(ctx, "acme/api")
	require.NoError(t, err)
	require.Equal(t, "r2", latest.ID)

	hist, err := s2.History(ctx, "acme/api", 0)
	require.NoError(t, err)
	require.Len(t, hist, 2)

	latest, err = s2.Latest(ctx, "acme/web")
	require.NoError(t, err)
	require.Equal(t, "x1", latest.ID)
}

func TestFileStoreToleratesCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reports.json")
	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0o644))

	s := NewFile(path)
	_, err := s.Latest(ctx, "acme/api")
	require.ErrorIs(t, err, ErrNotFound)

	// Saving heals the file.
	require.NoError(t, s.Save(ctx, sample("r1", "acme/api", "2026-08-25T10:00:00Z", 60)))
	s2 := NewFile(path)
	latest, err := s2.Latest(ctx, "acme/api")
	require.NoError(t, err)
	require.Equal(t, "r1", latest.ID)
}
