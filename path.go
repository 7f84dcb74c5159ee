// FILE: lixenwraith/chainconf/path.go
package chainconf

import (
	"os"
	"path/filepath"
	"strings"
)

// IsFullPath reports whether s is an absolute path on either path convention:
// rooted at '/' or '\', or starting with a drive letter followed by a separator.
func IsFullPath(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '/' || s[0] == '\\' {
		return true
	}
	if len(s) >= 3 && isDriveLetter(s[0]) && s[1] == ':' && (s[2] == '/' || s[2] == '\\') {
		return true
	}
	return false
}

func isDriveLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// UnixToNative replaces every forward slash in s with sep.
func UnixToNative(s string, sep rune) string {
	if sep == '/' {
		return s
	}
	return strings.ReplaceAll(s, "/", string(sep))
}

// DisplayPath returns path relative to the working directory when it lies
// inside it, otherwise path unchanged. Used for diagnostics only.
func DisplayPath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(cwd, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
