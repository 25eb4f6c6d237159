// Package fs provides file-based storage for crawled entries.
package fs

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/srdcrawl"
)

// Ensure EntryWriter implements srdcrawl.EntryWriter at compile time.
var _ srdcrawl.EntryWriter = (*EntryWriter)(nil)

// EntryWriter writes entries to a UTF-8 text file, one record per entry.
// Each entry is followed by a newline; blank lines inside an entry are
// kept as they are.
type EntryWriter struct {
	path string
}

// NewEntryWriter creates an EntryWriter for the file at path.
func NewEntryWriter(path string) *EntryWriter {
	return &EntryWriter{path: path}
}

// Path returns the output file path.
func (w *EntryWriter) Path() string {
	return w.path
}

func (w *EntryWriter) tempPath() string {
	return w.path + ".tmp"
}

// WriteEntries writes every entry to a temporary file next to the output
// and renames it over the output, replacing any existing file. On failure
// the previous output is left untouched.
func (w *EntryWriter) WriteEntries(ctx context.Context, entries []string) error {
	if w.path == "" {
		return srdcrawl.Errorf(srdcrawl.EINVALID, "output path required")
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	if err := w.writeTemp(ctx, entries); err != nil {
		_ = os.Remove(w.tempPath())
		return err
	}

	if err := os.Rename(w.tempPath(), w.path); err != nil {
		_ = os.Remove(w.tempPath())
		return fmt.Errorf("replace output file: %w", err)
	}
	return nil
}

func (w *EntryWriter) writeTemp(ctx context.Context, entries []string) error {
	f, err := os.Create(w.tempPath())
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := bw.WriteString(entry); err != nil {
			return fmt.Errorf("write entry: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("write entry: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush output file: %w", err)
	}
	return f.Close()
}
