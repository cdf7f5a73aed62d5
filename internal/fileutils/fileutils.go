package fileutils

import (
	"os"
	"path/filepath"
)

// TargetExists checks if the given file or folder exists
func TargetExists(path string) bool {
	_, err1 := os.Stat(path)
	_, err2 := os.Readlink(path) // os.Stat returns false on Symlinks that don't point to a valid file
	return err1 == nil || err2 == nil
}

// FileExists checks if the given file (not folder) exists
func FileExists(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}

	mode := fi.Mode()
	return mode.IsRegular()
}

// DirExists checks if the given directory exists
func DirExists(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}

	mode := fi.Mode()
	return mode.IsDir()
}

// ExistingDirs returns the subdirectories of base that exist, in the order given
func ExistingDirs(base string, subpaths ...string) []string {
	var dirs []string
	for _, sub := range subpaths {
		dir := filepath.Join(base, filepath.FromSlash(sub))
		if DirExists(dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// MkdirUnlessExists will make the directory structure if it doesn't already exists
func MkdirUnlessExists(path string) error {
	if DirExists(path) {
		return nil
	}
	return os.MkdirAll(path, os.ModePerm)
}
