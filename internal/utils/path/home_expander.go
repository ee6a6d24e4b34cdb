package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	homeShortcutConstant       = "~"
	forwardSlashRuneConstant   = '/'
	homeShortcutLengthConstant = len(homeShortcutConstant)
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander rewrites "~" and "~/..." paths relative to the user's home directory.
// The home directory is resolved once, on first use.
type HomeExpander struct {
	provider      HomeDirectoryProvider
	resolveOnce   sync.Once
	homeDirectory string
}

// NewHomeExpander constructs a HomeExpander backed by os.UserHomeDir.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(nil)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{provider: provider}
}

// Expand returns candidatePath with a leading home shortcut replaced.
// Paths such as "~user/dir" and paths whose home lookup fails are returned unchanged.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || !strings.HasPrefix(candidatePath, homeShortcutConstant) {
		return candidatePath
	}

	remainder := candidatePath[homeShortcutLengthConstant:]
	if len(remainder) > 0 && remainder[0] != forwardSlashRuneConstant && remainder[0] != os.PathSeparator {
		return candidatePath
	}

	homeDirectory := expander.home()
	if len(homeDirectory) == 0 {
		return candidatePath
	}
	return filepath.Join(homeDirectory, remainder)
}

func (expander *HomeExpander) home() string {
	expander.resolveOnce.Do(func() {
		resolved, resolveError := expander.provider()
		if resolveError == nil {
			expander.homeDirectory = resolved
		}
	})
	return expander.homeDirectory
}
