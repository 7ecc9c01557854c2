package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// ExpandPath resolves paths that include a tilde (~) to the user's home directory.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, path[2:]), nil
	}
	return path, nil
}

// CreateFolderIfNotExists checks if a folder exists, and if not, creates it.
func CreateFolderIfNotExists(folder string) error {
	info, err := os.Stat(folder)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(folder, os.ModePerm); err != nil {
			return fmt.Errorf("unable to create folder %q: %w", folder, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("unable to check folder %q: %w", folder, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", folder)
	}
	return nil
}

// OutputFS prepares the output folder and returns a filesystem rooted at it.
// Run artifacts and log files are written through this filesystem.
func OutputFS(folder string) (billy.Filesystem, error) {
	path, err := ExpandPath(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap path %q: %w", folder, err)
	}
	if err := CreateFolderIfNotExists(path); err != nil {
		return nil, err
	}
	return osfs.New(path), nil
}
