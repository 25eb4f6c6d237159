// Package crawl provides the crawl-and-extract pipeline.
// It walks links outward from a seed URL, fetching each in-scope URL at
// most once, and collects the entries found along the way.
package crawl

import (
	"context"
	"fmt"

	"github.com/fwojciec/srdcrawl"
)

// Crawler walks a site section and extracts entries from its pages.
// A Crawler holds no per-run state, so concurrent calls to Crawl are
// independent of each other.
type Crawler struct {
	Fetcher srdcrawl.Fetcher
	Entries srdcrawl.EntryExtractor
	Links   srdcrawl.LinkExtractor
	Scope   srdcrawl.Scope

	// Concurrency is the number of pages fetched at once. Values below 2
	// give a sequential depth-first walk in document order.
	Concurrency int
}

// Result holds the outcome of a crawl.
type Result struct {
	Entries *EntryStore

	// Visited counts URLs whose fetch was attempted.
	Visited int
	// Failed counts visited URLs that could not be fetched or parsed.
	Failed int
	// Skipped counts out-of-scope URLs encountered, including repeats.
	Skipped int
}

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type    ProgressType
	URL     string
	Entries int
	Error   error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressFetched ProgressType = iota
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// pageResult holds the outcome of processing a single URL.
type pageResult struct {
	url     string
	entry   string
	isEntry bool
	links   []string
	err     error
}

// Crawl walks the site from seed and returns the collected entries.
//
// Out-of-scope and already visited URLs are skipped silently. A URL is
// marked visited before it is fetched, so a failed fetch is never
// retried; the failure abandons only the links that page would have
// yielded. If ctx is canceled the partial result is returned together
// with the context error.
func (c *Crawler) Crawl(ctx context.Context, seed string, progress ProgressFunc) (*Result, error) {
	if err := c.Scope.Validate(); err != nil {
		return nil, err
	}

	concurrency := c.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	result := &Result{Entries: NewEntryStore()}
	visited := NewVisitedSet(visitedExpectedURLs, visitedFalsePositiveRate)

	skip := func(string) { result.Skipped++ }
	handle := func(page *pageResult) {
		if page.isEntry {
			result.Entries.Add(page.entry)
		}
		if page.err != nil {
			result.Failed++
			if progress != nil {
				progress(ProgressEvent{
					Type:    ProgressFailed,
					URL:     page.url,
					Entries: result.Entries.Len(),
					Error:   page.err,
				})
			}
			return
		}
		if progress != nil {
			progress(ProgressEvent{
				Type:    ProgressFetched,
				URL:     page.url,
				Entries: result.Entries.Len(),
			})
		}
	}

	err := c.walk(ctx, seed, concurrency, visited, skip, handle)
	result.Visited = visited.Len()

	if progress != nil {
		progress(ProgressEvent{
			Type:    ProgressFinished,
			Entries: result.Entries.Len(),
		})
	}

	return result, err
}

// processURL fetches a page and extracts its entry and links.
// The entry is kept when only link extraction fails.
func (c *Crawler) processURL(ctx context.Context, url string) pageResult {
	result := pageResult{url: url}

	html, err := c.Fetcher.Fetch(ctx, url)
	if err != nil {
		result.err = err
		return result
	}

	result.entry, result.isEntry, err = c.Entries.ExtractEntry(html)
	if err != nil {
		result.err = fmt.Errorf("extract entry: %w", err)
		return result
	}

	result.links, err = c.Links.ExtractLinks(html, url)
	if err != nil {
		result.err = fmt.Errorf("extract links: %w", err)
	}
	return result
}
