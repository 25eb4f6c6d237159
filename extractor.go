package srdcrawl

// EntryExtractor turns a page into a normalized entry.
type EntryExtractor interface {
	// ExtractEntry parses html and reports whether it is a content page.
	// When ok is false the page is an index or navigation page and entry is empty.
	ExtractEntry(html string) (entry string, ok bool, err error)
}

// LinkExtractor finds outbound links on a page.
type LinkExtractor interface {
	// ExtractLinks returns the absolute URL of every anchor with an href,
	// in document order. Duplicates are not removed.
	// The pageURL is used to resolve relative URLs.
	ExtractLinks(html string, pageURL string) ([]string, error)
}
