package mock

import "github.com/fwojciec/srdcrawl"

var _ srdcrawl.EntryExtractor = (*EntryExtractor)(nil)

// EntryExtractor is a mock implementation of srdcrawl.EntryExtractor.
type EntryExtractor struct {
	ExtractEntryFn func(html string) (string, bool, error)
}

func (e *EntryExtractor) ExtractEntry(html string) (string, bool, error) {
	return e.ExtractEntryFn(html)
}

var _ srdcrawl.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of srdcrawl.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html string, pageURL string) ([]string, error)
}

func (e *LinkExtractor) ExtractLinks(html string, pageURL string) ([]string, error) {
	return e.ExtractLinksFn(html, pageURL)
}
