package orchestrate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RequestFilesMarker opens the one-line reply grammar through which the model
// may ask for local file contents before answering:
//
//	REQUEST FILES: path1, path2
//
// The match is exact: the entire trimmed reply must be that single line.
const RequestFilesMarker = "REQUEST FILES:"

// ParseFileRequest reports whether reply, in its entirety, is a file request,
// and returns the requested paths. Surrounding whitespace on the reply and on
// each comma-separated path is ignored; any other content anywhere in the
// reply disqualifies it.
func ParseFileRequest(reply string) ([]string, bool) {
	trimmed := strings.TrimSpace(reply)
	if !strings.HasPrefix(trimmed, RequestFilesMarker) {
		return nil, false
	}
	rest := trimmed[len(RequestFilesMarker):]
	if strings.ContainsAny(rest, "\r\n") {
		return nil, false
	}

	var paths []string
	for _, p := range strings.Split(rest, ",") {
		paths = append(paths, strings.TrimSpace(p))
	}
	return paths, true
}

// ValidateRequestPaths checks every requested path against the security
// policy: relative only, no parent-directory segment, and the canonicalized
// form must stay inside workDir. Canonicalization follows symlinks, so a link
// inside the project pointing outside it fails the containment check even
// though the lexical checks pass. One bad path invalidates the whole request.
func ValidateRequestPaths(paths []string, workDir string) error {
	if len(paths) == 0 {
		return fmt.Errorf("empty path list")
	}
	root, err := filepath.Abs(workDir)
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}
	root, err = filepath.EvalSymlinks(root)
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	for _, p := range paths {
		if p == "" {
			return fmt.Errorf("empty path in request")
		}
		if filepath.IsAbs(p) {
			return fmt.Errorf("absolute path not allowed: %s", p)
		}
		for _, seg := range strings.Split(filepath.ToSlash(p), "/") {
			if seg == ".." {
				return fmt.Errorf("parent-directory segment not allowed: %s", p)
			}
		}
		resolved, err := resolveSymlinks(filepath.Join(root, p))
		if err != nil {
			return fmt.Errorf("resolving %s: %w", p, err)
		}
		if resolved != root && !strings.HasPrefix(resolved, root+string(filepath.Separator)) {
			return fmt.Errorf("path escapes working directory: %s", p)
		}
	}
	return nil
}

// resolveSymlinks canonicalizes path even when its tail does not exist yet:
// the deepest existing ancestor is resolved and the remaining components are
// rejoined lexically.
func resolveSymlinks(path string) (string, error) {
	remainder := ""
	for cur := filepath.Clean(path); ; {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Clean(filepath.Join(resolved, remainder)), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", err
		}
		remainder = filepath.Join(filepath.Base(cur), remainder)
		cur = parent
	}
}
