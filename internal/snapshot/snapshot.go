// Package snapshot defines the bounded, read-only repository sample that the
// report engine consumes. A Snapshot is produced upstream (hosted VCS fetcher,
// HTTP client, or the local loader in this package) and never mutated by the
// engine.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
)

// ErrEmptySnapshot is returned when a snapshot carries no files.
// It is the one hard input error of the engine.
var ErrEmptySnapshot = errors.New("snapshot has no files")

// Project carries repository metadata. Zero values are allowed for local
// scans that have no hosted counterpart.
type Project struct {
	Owner           string `json:"owner"`
	Repo            string `json:"repo"`
	FullName        string `json:"fullName"`
	Description     string `json:"description,omitempty"`
	DefaultBranch   string `json:"defaultBranch,omitempty"`
	Stars           int    `json:"stars"`
	Forks           int    `json:"forks"`
	OpenIssues      int    `json:"openIssues"`
	PrimaryLanguage string `json:"primaryLanguage,omitempty"`
	License         string `json:"license,omitempty"`
	Visibility      string `json:"visibility,omitempty"`
	URL             string `json:"url,omitempty"`
	CreatedAt       string `json:"createdAt,omitempty"`
	UpdatedAt       string `json:"updatedAt,omitempty"`
	PushedAt        string `json:"pushedAt,omitempty"`
}

// FileSample is one loaded file: repo-relative path (forward slashes) plus
// its content, already bounded in size by whoever built the snapshot.
type FileSample struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// SamplingStats records how much of the repository the snapshot covers.
// Informational only; it is copied into the report's analysisMeta.
type SamplingStats struct {
	FilesSeen   int  `json:"filesSeen"`
	FilesLoaded int  `json:"filesLoaded"`
	BytesLoaded int  `json:"bytesLoaded"`
	Truncated   bool `json:"truncated"`
}

// Snapshot is the sole input of the report engine.
type Snapshot struct {
	Project Project       `json:"project"`
	Files   []FileSample  `json:"files"`
	Stats   SamplingStats `json:"stats"`
}

// Validate reports whether the snapshot satisfies the engine's input
// precondition.
func (s Snapshot) Validate() error {
	if len(s.Files) == 0 {
		return ErrEmptySnapshot
	}
	return nil
}

// Fingerprint returns a stable hex digest of the snapshot's identity and
// file contents. Two snapshots with the same fingerprint produce the same
// baseline report, which makes this the cache and deduplication key.
func (s Snapshot) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(s.Project.FullName))
	h.Write([]byte{0})
	h.Write([]byte(s.Project.DefaultBranch))
	h.Write([]byte{0})

	paths := make([]string, 0, len(s.Files))
	byPath := make(map[string]string, len(s.Files))
	for _, f := range s.Files {
		paths = append(paths, f.Path)
		byPath[f.Path] = f.Content
	}
	sort.Strings(paths)
	for _, p := range paths {
		sum := sha256.Sum256([]byte(byPath[p]))
		h.Write([]byte(p))
		h.Write([]byte{0})
		h.Write(sum[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
