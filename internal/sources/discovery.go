package sources

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/temirov/lintrun/internal/filesystem"
)

const (
	extensionSeparatorConstant          = "."
	sourceRootRequiredMessageConstant   = "source root must be provided"
	extensionsRequiredMessageConstant   = "at least one file extension must be provided"
	sourceRootResolveErrorTemplate      = "unable to resolve source root %s: %w"
	sourceRootNotDirectoryErrorTemplate = "source root %s is not a directory"
	sourceRootReadErrorTemplate         = "unable to read source root %s: %w"
	subdirectoryWalkErrorTemplate       = "unable to scan %s: %w"
)

// ErrSourceRootRequired indicates discovery was invoked without a root directory.
var ErrSourceRootRequired = errors.New(sourceRootRequiredMessageConstant)

// ErrExtensionsRequired indicates discovery was invoked without any extension to match.
var ErrExtensionsRequired = errors.New(extensionsRequiredMessageConstant)

// SourceFile references a discovered file.
type SourceFile struct {
	// Path is absolute.
	Path string
	// RelativePath is relative to the source root and uses the host separator.
	RelativePath string
}

// DiscoveryRequest describes which files to collect.
type DiscoveryRequest struct {
	SourceRoot          string
	Extensions          []string
	ExcludedDirectories []string
}

// SourceDiscoverer collects source files from disk.
type SourceDiscoverer struct {
	fileSystem filesystem.FileSystem
}

// NewSourceDiscoverer constructs a discoverer backed by the operating system.
func NewSourceDiscoverer() *SourceDiscoverer {
	return NewSourceDiscovererWithFileSystem(filesystem.OSFileSystem{})
}

// NewSourceDiscovererWithFileSystem constructs a discoverer that resolves paths through fileSystem.
func NewSourceDiscovererWithFileSystem(fileSystem filesystem.FileSystem) *SourceDiscoverer {
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	return &SourceDiscoverer{fileSystem: fileSystem}
}

// DiscoverSources returns files matching any requested extension, sorted by path.
// Only top-level subdirectory names are compared against the exclusion list.
func (discoverer *SourceDiscoverer) DiscoverSources(request DiscoveryRequest) ([]SourceFile, error) {
	trimmedRoot := strings.TrimSpace(request.SourceRoot)
	if len(trimmedRoot) == 0 {
		return nil, ErrSourceRootRequired
	}

	extensions := normalizeExtensions(request.Extensions)
	if len(extensions) == 0 {
		return nil, ErrExtensionsRequired
	}

	absoluteRoot, resolveError := discoverer.fileSystem.Abs(trimmedRoot)
	if resolveError != nil {
		return nil, fmt.Errorf(sourceRootResolveErrorTemplate, trimmedRoot, resolveError)
	}

	rootInfo, statError := discoverer.fileSystem.Stat(absoluteRoot)
	if statError != nil {
		return nil, fmt.Errorf(sourceRootResolveErrorTemplate, trimmedRoot, statError)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf(sourceRootNotDirectoryErrorTemplate, absoluteRoot)
	}

	excludedNames := make(map[string]struct{}, len(request.ExcludedDirectories))
	for _, excludedName := range request.ExcludedDirectories {
		trimmedName := strings.Trim(strings.TrimSpace(excludedName), `/\`)
		if len(trimmedName) > 0 {
			excludedNames[trimmedName] = struct{}{}
		}
	}

	rootEntries, readError := discoverer.fileSystem.ReadDir(absoluteRoot)
	if readError != nil {
		return nil, fmt.Errorf(sourceRootReadErrorTemplate, absoluteRoot, readError)
	}

	seen := make(map[string]struct{})
	var discovered []SourceFile
	collect := func(path string) {
		if _, alreadySeen := seen[path]; alreadySeen {
			return
		}
		seen[path] = struct{}{}
		relativePath, relativeError := filepath.Rel(absoluteRoot, path)
		if relativeError != nil {
			relativePath = path
		}
		discovered = append(discovered, SourceFile{Path: path, RelativePath: relativePath})
	}

	for _, rootEntry := range rootEntries {
		entryPath := filepath.Join(absoluteRoot, rootEntry.Name())
		if discoverer.isDirectory(entryPath, rootEntry) {
			if _, excluded := excludedNames[rootEntry.Name()]; excluded {
				continue
			}
			walkError := discoverer.fileSystem.WalkDir(entryPath, func(path string, directoryEntry fs.DirEntry, walkError error) error {
				if walkError != nil {
					return walkError
				}
				if directoryEntry.IsDir() {
					return nil
				}
				if discoverer.isMatchingFile(path, directoryEntry, extensions) {
					collect(path)
				}
				return nil
			})
			if walkError != nil {
				return nil, fmt.Errorf(subdirectoryWalkErrorTemplate, entryPath, walkError)
			}
			continue
		}

		if discoverer.isMatchingFile(entryPath, rootEntry, extensions) {
			collect(entryPath)
		}
	}

	sort.Slice(discovered, func(leftIndex int, rightIndex int) bool {
		return discovered[leftIndex].Path < discovered[rightIndex].Path
	})
	return discovered, nil
}

// isDirectory reports directories and symlinks to directories among the root entries.
func (discoverer *SourceDiscoverer) isDirectory(path string, directoryEntry fs.DirEntry) bool {
	if directoryEntry.IsDir() {
		return true
	}
	if directoryEntry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	targetInfo, statError := discoverer.fileSystem.Stat(path)
	return statError == nil && targetInfo.IsDir()
}

// isMatchingFile accepts regular files and symlinks that resolve to regular files.
func (discoverer *SourceDiscoverer) isMatchingFile(path string, directoryEntry fs.DirEntry, extensions []string) bool {
	if !hasExtension(directoryEntry.Name(), extensions) {
		return false
	}
	if directoryEntry.Type().IsRegular() {
		return true
	}
	if directoryEntry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	targetInfo, statError := discoverer.fileSystem.Stat(path)
	if statError != nil {
		return false
	}
	return targetInfo.Mode().IsRegular()
}

func hasExtension(fileName string, extensions []string) bool {
	for _, extension := range extensions {
		if strings.HasSuffix(fileName, extension) {
			return true
		}
	}
	return false
}

func normalizeExtensions(rawExtensions []string) []string {
	normalized := make([]string, 0, len(rawExtensions))
	seen := make(map[string]struct{}, len(rawExtensions))
	for _, rawExtension := range rawExtensions {
		trimmedExtension := strings.TrimSpace(rawExtension)
		if len(trimmedExtension) == 0 {
			continue
		}
		if !strings.HasPrefix(trimmedExtension, extensionSeparatorConstant) {
			trimmedExtension = extensionSeparatorConstant + trimmedExtension
		}
		if _, duplicate := seen[trimmedExtension]; duplicate {
			continue
		}
		seen[trimmedExtension] = struct{}{}
		normalized = append(normalized, trimmedExtension)
	}
	return normalized
}
