package snapshot

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LoadOptions bounds what FromDir reads. Zero values take the defaults.
type LoadOptions struct {
	// MaxFiles caps how many files are loaded (default 120).
	MaxFiles int
	// MaxFileBytes caps bytes kept per file; longer files are cut (default 64 KiB).
	MaxFileBytes int
}

const (
	defaultMaxFiles     = 120
	defaultMaxFileBytes = 64 * 1024
)

// Extensions considered source text worth analyzing. Everything else is
// counted in the sampling stats but not loaded.
var textExts = map[string]bool{
	".go": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".py": true, ".rb": true, ".java": true, ".kt": true, ".rs": true,
	".c": true, ".h": true, ".cc": true, ".cpp": true, ".hpp": true,
	".cs": true, ".php": true, ".swift": true, ".scala": true, ".sh": true,
	".sql": true, ".html": true, ".css": true, ".scss": true, ".vue": true,
	".svelte": true, ".md": true, ".yaml": true, ".yml": true, ".json": true,
	".toml": true,
}

// FromDir walks root and builds a bounded Snapshot from its text files.
// It is the input adapter for the CLI and for tests; hosted repositories
// arrive as ready-made snapshots over the serving surface instead.
func FromDir(root string, opts LoadOptions) (Snapshot, error) {
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = defaultMaxFiles
	}
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = defaultMaxFileBytes
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Project: Project{
			Repo:          filepath.Base(abs),
			FullName:      "local/" + filepath.Base(abs),
			DefaultBranch: "local",
			Visibility:    "local",
		},
	}

	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		// Skip VCS & dependency dirs
		if d.IsDir() {
			switch filepath.Base(path) {
			case ".git", ".hg", ".svn", "node_modules", "vendor", "target", "build", ".next", ".cache":
				return filepath.SkipDir
			}
			return nil
		}

		rel, _ := filepath.Rel(abs, path)
		rel = filepath.ToSlash(rel)
		ext := strings.ToLower(filepath.Ext(rel))
		if !textExts[ext] {
			return nil
		}

		snap.Stats.FilesSeen++
		if len(snap.Files) >= opts.MaxFiles {
			snap.Stats.Truncated = true
			return nil
		}

		b, e := os.ReadFile(path)
		if e != nil {
			return nil
		}
		if len(b) > opts.MaxFileBytes {
			b = b[:opts.MaxFileBytes]
			snap.Stats.Truncated = true
		}
		snap.Files = append(snap.Files, FileSample{Path: rel, Content: string(b)})
		snap.Stats.FilesLoaded++
		snap.Stats.BytesLoaded += len(b)
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	if err := snap.Validate(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
