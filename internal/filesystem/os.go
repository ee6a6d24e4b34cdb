package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	restoreErrorTemplateConstant = "unable to restore %s: %w"
)

// FileSystem exposes the file operations lintrun performs around checker invocations.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	Abs(path string) (string, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
	ReadDir(path string) ([]fs.DirEntry, error)
	WalkDir(root string, walkFunction fs.WalkDirFunc) error
}

// OSFileSystem implements FileSystem using the operating system primitives.
type OSFileSystem struct{}

// Stat retrieves file metadata.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Abs resolves an absolute path.
func (OSFileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// ReadFile reads file contents.
func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to a file with the supplied permissions.
func (OSFileSystem) WriteFile(path string, data []byte, permissions fs.FileMode) error {
	return os.WriteFile(path, data, permissions)
}

// ReadDir lists directory entries sorted by name.
func (OSFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

// WalkDir walks the tree under root, passing host paths joined onto root.
// root itself is followed when it is a symlink to a directory; nested symlinks are not.
func (OSFileSystem) WalkDir(root string, walkFunction fs.WalkDirFunc) error {
	return fs.WalkDir(os.DirFS(root), ".", func(relativePath string, directoryEntry fs.DirEntry, walkError error) error {
		return walkFunction(filepath.Join(root, filepath.FromSlash(relativePath)), directoryEntry, walkError)
	})
}

// Restore rewrites path with content while keeping its current permission bits.
func Restore(fileSystem FileSystem, path string, content []byte) error {
	fileInfo, statError := fileSystem.Stat(path)
	if statError != nil {
		return fmt.Errorf(restoreErrorTemplateConstant, path, statError)
	}
	if writeError := fileSystem.WriteFile(path, content, fileInfo.Mode().Perm()); writeError != nil {
		return fmt.Errorf(restoreErrorTemplateConstant, path, writeError)
	}
	return nil
}
