package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFromDirSkipsDependencyDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/main.go", "package main\n")
	writeFile(t, dir, "node_modules/lib/index.js", "module.exports = 1\n")
	writeFile(t, dir, "vendor/dep/dep.go", "package dep\n")
	writeFile(t, dir, ".git/hooks/pre-commit.sh", "#!/bin/sh\n")

	snap, err := FromDir(dir, LoadOptions{})
	require.NoError(t, err)
	require.Len(t, snap.Files, 1)
	require.Equal(t, "src/main.go", snap.Files[0].Path)
	require.Equal(t, 1, snap.Stats.FilesLoaded)
	require.False(t, snap.Stats.Truncated)
}

func TestFromDirSkipsNonTextFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.py", "print('hi')\n")
	writeFile(t, dir, "logo.png", "\x89PNG")
	writeFile(t, dir, "bin.exe", "MZ")

	snap, err := FromDir(dir, LoadOptions{})
	require.NoError(t, err)
	require.Len(t, snap.Files, 1)
	require.Equal(t, "app.py", snap.Files[0].Path)
}

func TestFromDirCapsPerFileBytes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "big.js", strings.Repeat("x", 100))

	snap, err := FromDir(dir, LoadOptions{MaxFileBytes: 10})
	require.NoError(t, err)
	require.Len(t, snap.Files[0].Content, 10)
	require.True(t, snap.Stats.Truncated)
	require.Equal(t, 10, snap.Stats.BytesLoaded)
}

func TestFromDirCapsFileCount(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\n")
	writeFile(t, dir, "b.go", "package b\n")
	writeFile(t, dir, "c.go", "package c\n")

	snap, err := FromDir(dir, LoadOptions{MaxFiles: 2})
	require.NoError(t, err)
	require.Len(t, snap.Files, 2)
	require.Equal(t, 3, snap.Stats.FilesSeen)
	require.Equal(t, 2, snap.Stats.FilesLoaded)
	require.True(t, snap.Stats.Truncated)
}

func TestFromDirEmptyDir(t *testing.T) {
	_, err := FromDir(t.TempDir(), LoadOptions{})
	require.ErrorIs(t, err, ErrEmptySnapshot)
}

func TestValidate(t *testing.T) {
	require.ErrorIs(t, Snapshot{}.Validate(), ErrEmptySnapshot)

	ok := Snapshot{Files: []FileSample{{Path: "a.go", Content: "package a"}}}
	require.NoError(t, ok.Validate())
}

func TestFingerprint(t *testing.T) {
	base := Snapshot{
		Project: Project{FullName: "acme/api", DefaultBranch: "main"},
		Files: []FileSample{
			{Path: "a.go", Content: "package a"},
			{Path: "b.go", Content: "package b"},
		},
	}
	require.Equal(t, base.Fingerprint(), base.Fingerprint())

	reordered := base
	reordered.Files = []FileSample{base.Files[1], base.Files[0]}
	require.Equal(t, base.Fingerprint(), reordered.Fingerprint(),
		"file order must not change the fingerprint")

	edited := base
	edited.Files = []FileSample{
		{Path: "a.go", Content: "package a2"},
		{Path: "b.go", Content: "package b"},
	}
	require.NotEqual(t, base.Fingerprint(), edited.Fingerprint())

	otherRepo := base
	otherRepo.Project.FullName = "acme/web"
	require.NotEqual(t, base.Fingerprint(), otherRepo.Fingerprint())
}
