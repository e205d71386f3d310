// Package fsutil provides file system helpers for workspace discovery.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// FindFilesByExtension returns the files under root whose extension matches
// ext, ignoring case, in lexical order. Hidden directories below root are
// not searched. A root that is itself a file is returned when it matches.
func FindFilesByExtension(root, ext string) ([]string, error) {
	if ext == "" {
		panic("extension must not be empty")
	}
	matches := func(name string) bool {
		return strings.EqualFold(filepath.Ext(name), ext)
	}

	var files []string
	walk := func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case d.IsDir():
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
		case matches(d.Name()):
			files = append(files, path)
		}
		return nil
	}
	if err := filepath.WalkDir(root, walk); err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}
