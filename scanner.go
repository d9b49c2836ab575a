package cssprite

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// Ignorer decides whether a path relative to the source root is skipped.
// *ignore.GitIgnore satisfies it.
type Ignorer interface {
	MatchesPath(path string) bool
}

// LoadIgnoreFile compiles a gitignore-style file.
// Gracefully degrades to nil if the file doesn't exist or can't be parsed.
func LoadIgnoreFile(path string) Ignorer {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}

// SetName flattens a relative sprite directory into a module name:
// "icons/nav" -> "icons-nav"
func SetName(dir string) string {
	dir = strings.ReplaceAll(dir, "\\", "/")
	dir = strings.Trim(dir, "/")
	return strings.ReplaceAll(dir, "/", "-")
}

// shouldSkipEntry determines if a directory entry should be excluded
//
// Two-layer filtering:
// 1. Hidden entries (leading dot) are always skipped
// 2. Entries matched by the ignore file are skipped
//
// Directories are also matched with a trailing slash so "drafts/" patterns apply.
func shouldSkipEntry(rel string, isDir bool, ig Ignorer) bool {
	if strings.HasPrefix(filepath.Base(rel), ".") {
		return true
	}
	if ig == nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if ig.MatchesPath(rel) {
		return true
	}
	return isDir && ig.MatchesPath(rel+"/")
}

// ScanSpriteSets returns the immediate child directories of sourceDir,
// sorted by name. Nested directories are not descended into.
func ScanSpriteSets(sourceDir string, ig Ignorer) ([]string, error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, ioError("scan", sourceDir, err)
	}

	var dirs []string
	for _, entry := range entries {
		if !isDirEntry(sourceDir, entry) {
			continue
		}
		if shouldSkipEntry(entry.Name(), true, ig) {
			continue
		}
		dirs = append(dirs, entry.Name())
	}

	sort.Strings(dirs)
	return dirs, nil
}

// isDirEntry reports whether entry is a directory, following symlinks
func isDirEntry(parent string, entry fs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(parent, entry.Name()))
	return err == nil && info.IsDir()
}

// isNotExist reports whether err is a missing file or directory
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
