package directive

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// placeholderRe matches the two inclusion directives. The value runs to the
// next whitespace; an optional space is tolerated before the colon.
var placeholderRe = regexp.MustCompile(`@f\s*:(\S+)|@d\s*:(\S+)`)

// Expand resolves every @f: and @d: placeholder in a user message against the
// filesystem, building the output in one forward pass. A placeholder that
// fails to expand is left in the output verbatim with a logged warning;
// failure of one never aborts expansion of the rest. For a fixed filesystem
// state the output is byte-identical across calls.
func Expand(content string) string {
	var sb strings.Builder
	last := 0

	for _, loc := range placeholderRe.FindAllStringSubmatchIndex(content, -1) {
		start, end := loc[0], loc[1]
		placeholder := content[start:end]
		sb.WriteString(content[last:start])

		var expanded string
		var err error
		if loc[2] >= 0 {
			expanded, err = expandFileInclude(content[loc[2]:loc[3]])
		} else {
			expanded, err = expandDirTree(content[loc[4]:loc[5]])
		}

		if err != nil {
			log.WithField("placeholder", placeholder).Warnf("Failed to expand: %v", err)
			sb.WriteString(placeholder)
		} else {
			sb.WriteString(expanded)
		}
		last = end
	}

	sb.WriteString(content[last:])
	return sb.String()
}

// expandFileInclude resolves an @f: value as a glob pattern, a directory, or a
// single file, rendering every included file as a labelled fenced block.
func expandFileInclude(pattern string) (string, error) {
	if strings.ContainsAny(pattern, "*?[") {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return "", fmt.Errorf("bad glob pattern: %w", err)
		}
		if len(matches) == 0 {
			return "", fmt.Errorf("no files matched the glob pattern")
		}
		sort.Strings(matches)
		var sb strings.Builder
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return "", err
			}
			if !info.Mode().IsRegular() {
				continue
			}
			if err := renderFile(&sb, m); err != nil {
				return "", err
			}
		}
		return sb.String(), nil
	}

	info, err := os.Stat(pattern)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found")
		}
		return "", err
	}

	if info.IsDir() {
		files, err := regularFilesUnder(pattern)
		if err != nil {
			return "", err
		}
		if len(files) == 0 {
			return "", fmt.Errorf("no files found in directory")
		}
		var sb strings.Builder
		for _, f := range files {
			if err := renderFile(&sb, f); err != nil {
				return "", err
			}
		}
		return sb.String(), nil
	}

	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("path is not a file")
	}
	var sb strings.Builder
	if err := renderFile(&sb, pattern); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// expandDirTree renders a depth-indented listing of everything under a
// directory, directories suffixed with a slash.
func expandDirTree(root string) (string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("directory not found")
		}
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Contents of directory %s:\n```\n", root)

	empty := true
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		empty = false
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		depth := strings.Count(rel, string(filepath.Separator))
		indent := strings.Repeat("  ", depth)
		if d.IsDir() {
			fmt.Fprintf(&sb, "%s%s/\n", indent, rel)
		} else {
			fmt.Fprintf(&sb, "%s%s\n", indent, rel)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if empty {
		sb.WriteString("(empty directory)\n")
	}

	sb.WriteString("```\n")
	return sb.String(), nil
}

// regularFilesUnder returns every regular file under root, lexicographically
// sorted by path for deterministic output.
func regularFilesUnder(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func renderFile(sb *strings.Builder, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(sb, "Contents of %s:\n```\n%s\n```\n", path, content)
	return nil
}
