package srdcrawl

import "context"

// EntryWriter persists the entries collected by a crawl.
type EntryWriter interface {
	// WriteEntries stores every entry, replacing any previous output.
	WriteEntries(ctx context.Context, entries []string) error
}
