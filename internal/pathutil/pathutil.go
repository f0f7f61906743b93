// Package pathutil provides path manipulation utilities: home directory
// expansion for configured file paths and search-path resolution for
// requested executables.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading ~ in path with the user's home directory.
// If the home directory cannot be determined, the path is returned unchanged.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// LookPath resolves file the way which(1) does against the colon-separated
// pathEnv, returning "" when nothing matches.
//
// A name containing a slash is not searched; it is returned as given if it
// names an executable file. Empty entries in pathEnv mean the current
// directory and yield "./name" results.
func LookPath(file, pathEnv string) string {
	if file == "" {
		return ""
	}
	if strings.Contains(file, "/") {
		if isExecutable(file) {
			return file
		}
		return ""
	}
	for _, dir := range filepath.SplitList(pathEnv) {
		var candidate string
		if dir == "" || dir == "." {
			candidate = "./" + file
		} else {
			candidate = filepath.Join(dir, file)
		}
		if isExecutable(candidate) {
			return candidate
		}
	}
	return ""
}

// isExecutable reports whether path is a regular file with any execute bit.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}
