package mock

import (
	"context"

	"github.com/fwojciec/srdcrawl"
)

var _ srdcrawl.EntryWriter = (*EntryWriter)(nil)

// EntryWriter is a mock implementation of srdcrawl.EntryWriter.
type EntryWriter struct {
	WriteEntriesFn func(ctx context.Context, entries []string) error
}

func (w *EntryWriter) WriteEntries(ctx context.Context, entries []string) error {
	return w.WriteEntriesFn(ctx, entries)
}
