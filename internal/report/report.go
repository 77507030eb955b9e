// Package report writes the diagnostic side file of subject codes seen in
// the feed but missing from the classification table.
package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WriteUnknown overwrites path with the given unknown subject codes, one per
// line under a generation header. The file is purely diagnostic; nothing
// reads it back.
//
// The write is atomic (temp file + rename) so a crash mid-run never leaves
// a truncated report behind.
func WriteUnknown(path string, codes []string) error {
	if path == "" {
		return errors.New("report path is empty")
	}

	var b strings.Builder
	b.WriteString("# Unknown subject codes, generated ")
	b.WriteString(time.Now().Format(time.RFC3339))
	b.WriteString("\n")
	if len(codes) == 0 {
		b.WriteString("# (none: every code in the feed has a table entry)\n")
	}
	for _, c := range codes {
		b.WriteString(c)
		b.WriteString("\n")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".entsync-report-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
