package restore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// discoverFiles expands each pattern against dir (non-recursively) and
// concatenates the matches. Patterns are visited in key order so the result
// is stable. A file reached by two patterns appears twice and is copied twice.
// Directories are never returned.
func discoverFiles(dir string, patterns map[string]string) ([]string, error) {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)

	var files []string
	for _, name := range names {
		matches, err := filepath.Glob(filepath.Join(dir, patterns[name]))
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q for %s: %w", patterns[name], name, err)
		}

		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			files = append(files, m)
		}
	}
	return files, nil
}

// copyFile copies src to dst, overwriting dst, and carries over the file
// mode and modification time.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	// Truncating dst would destroy src when both name the same file
	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(info, dstInfo) {
		return fmt.Errorf("%w: %s and %s", ErrSameFile, src, dst)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
