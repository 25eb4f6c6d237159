package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/fwojciec/srdcrawl"
	"github.com/fwojciec/srdcrawl/crawl"
	"github.com/fwojciec/srdcrawl/goquery"
	"github.com/fwojciec/srdcrawl/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prefix = "example.com/monsters/"

// page describes a fixture page. The fake fetcher returns the page URL as
// its HTML so the fake extractors can look the page up again.
type page struct {
	entry   string
	isEntry bool
	links   []string
	err     error
}

// site is a fixture link graph that records every fetch.
type site struct {
	mu      sync.Mutex
	pages   map[string]page
	fetches []string
}

func newSite(pages map[string]page) *site {
	return &site{pages: pages}
}

func (s *site) fetchCount(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, f := range s.fetches {
		if f == url {
			n++
		}
	}
	return n
}

func (s *site) fetchOrder() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.fetches...)
}

func (s *site) crawler(concurrency int) *crawl.Crawler {
	return &crawl.Crawler{
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				s.mu.Lock()
				s.fetches = append(s.fetches, url)
				s.mu.Unlock()
				p, ok := s.pages[url]
				if !ok {
					return "", &srdcrawl.FetchError{URL: url, StatusCode: 404}
				}
				if p.err != nil {
					return "", p.err
				}
				return url, nil
			},
		},
		Entries: &mock.EntryExtractor{
			ExtractEntryFn: func(html string) (string, bool, error) {
				p := s.pages[html]
				return p.entry, p.isEntry, nil
			},
		},
		Links: &mock.LinkExtractor{
			ExtractLinksFn: func(html string, _ string) ([]string, error) {
				return s.pages[html].links, nil
			},
		},
		Scope:       srdcrawl.NewScope(prefix),
		Concurrency: concurrency,
	}
}

func TestCrawler_Crawl(t *testing.T) {
	t.Parallel()

	t.Run("collapses duplicate entries and fetches each page once", func(t *testing.T) {
		t.Parallel()

		a := "https://example.com/monsters/a/"
		b := "https://example.com/monsters/b/"
		c := "https://example.com/monsters/c/"
		s := newSite(map[string]page{
			a: {entry: "Aboleth\n\n", isEntry: true, links: []string{b, c}},
			b: {entry: "Aboleth\n\n", isEntry: true, links: []string{a}},
			c: {},
		})

		result, err := s.crawler(1).Crawl(context.Background(), a, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"Aboleth\n\n"}, result.Entries.Entries())
		assert.Equal(t, 1, s.fetchCount(a))
		assert.Equal(t, 1, s.fetchCount(b))
		assert.Equal(t, 1, s.fetchCount(c))
		assert.Equal(t, 3, result.Visited)
		assert.Equal(t, 0, result.Failed)
	})

	t.Run("does nothing for out-of-scope seed", func(t *testing.T) {
		t.Parallel()

		s := newSite(map[string]page{
			"https://example.com/spells/": {entry: "Fireball", isEntry: true},
		})

		result, err := s.crawler(1).Crawl(context.Background(), "https://example.com/spells/", nil)

		require.NoError(t, err)
		assert.Empty(t, s.fetchOrder())
		assert.Zero(t, result.Entries.Len())
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, 0, result.Visited)
	})

	t.Run("never fetches excluded or out-of-scope links", func(t *testing.T) {
		t.Parallel()

		a := "https://example.com/monsters/a/"
		s := newSite(map[string]page{
			a: {links: []string{
				"https://example.com/monsters/a.pdf",
				"https://example.com/spells/",
				"mailto:someone@example.com/monsters/",
				"http://example.com:80/monsters/a/",
			}},
		})

		result, err := s.crawler(1).Crawl(context.Background(), a, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{a}, s.fetchOrder())
		assert.Equal(t, 4, result.Skipped)
	})

	t.Run("walks depth-first in document order", func(t *testing.T) {
		t.Parallel()

		a := "https://example.com/monsters/a/"
		b := "https://example.com/monsters/b/"
		c := "https://example.com/monsters/c/"
		d := "https://example.com/monsters/d/"
		s := newSite(map[string]page{
			a: {links: []string{b, c}},
			b: {links: []string{d, a}},
			c: {links: []string{d}},
			d: {links: []string{c}},
		})

		_, err := s.crawler(1).Crawl(context.Background(), a, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{a, b, d, c}, s.fetchOrder())
	})

	t.Run("fetch failure abandons only that branch", func(t *testing.T) {
		t.Parallel()

		a := "https://example.com/monsters/a/"
		broken := "https://example.com/monsters/broken/"
		c := "https://example.com/monsters/c/"
		s := newSite(map[string]page{
			a: {links: []string{broken, c, broken}},
			c: {entry: "Chuul\n\n", isEntry: true},
		})

		result, err := s.crawler(1).Crawl(context.Background(), a, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"Chuul\n\n"}, result.Entries.Entries())
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, 1, s.fetchCount(broken), "failed URL must not be retried")
	})

	t.Run("reports progress events", func(t *testing.T) {
		t.Parallel()

		a := "https://example.com/monsters/a/"
		b := "https://example.com/monsters/b/"
		s := newSite(map[string]page{
			a: {entry: "A", isEntry: true, links: []string{b}},
			b: {err: errors.New("connection reset")},
		})

		var events []crawl.ProgressEvent
		_, err := s.crawler(1).Crawl(context.Background(), a, func(e crawl.ProgressEvent) {
			events = append(events, e)
		})

		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, crawl.ProgressFetched, events[0].Type)
		assert.Equal(t, a, events[0].URL)
		assert.Equal(t, 1, events[0].Entries)
		assert.Equal(t, crawl.ProgressFailed, events[1].Type)
		assert.Equal(t, b, events[1].URL)
		assert.EqualError(t, events[1].Error, "connection reset")
		assert.Equal(t, crawl.ProgressFinished, events[2].Type)
	})

	t.Run("keeps entry when link extraction fails", func(t *testing.T) {
		t.Parallel()

		a := "https://example.com/monsters/a/"
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) { return "<html>", nil },
			},
			Entries: &mock.EntryExtractor{
				ExtractEntryFn: func(string) (string, bool, error) { return "Aboleth\n\n", true, nil },
			},
			Links: &mock.LinkExtractor{
				ExtractLinksFn: func(string, string) ([]string, error) { return nil, errors.New("bad base") },
			},
			Scope: srdcrawl.NewScope(prefix),
		}

		result, err := c.Crawl(context.Background(), a, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Entries.Len())
		assert.Equal(t, 1, result.Failed)
	})

	t.Run("skips extraction when entry parsing fails", func(t *testing.T) {
		t.Parallel()

		linksCalled := false
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) { return "<html>", nil },
			},
			Entries: &mock.EntryExtractor{
				ExtractEntryFn: func(string) (string, bool, error) {
					return "", false, srdcrawl.Errorf(srdcrawl.EINVALID, "failed to parse HTML")
				},
			},
			Links: &mock.LinkExtractor{
				ExtractLinksFn: func(string, string) ([]string, error) {
					linksCalled = true
					return nil, nil
				},
			},
			Scope: srdcrawl.NewScope(prefix),
		}

		result, err := c.Crawl(context.Background(), "https://example.com/monsters/a/", nil)

		require.NoError(t, err)
		assert.False(t, linksCalled)
		assert.Equal(t, 1, result.Failed)
	})

	t.Run("returns error for invalid scope", func(t *testing.T) {
		t.Parallel()

		c := &crawl.Crawler{Scope: srdcrawl.Scope{}}

		_, err := c.Crawl(context.Background(), "https://example.com/", nil)

		assert.Equal(t, srdcrawl.EINVALID, srdcrawl.ErrorCode(err))
	})

	t.Run("stops on context cancellation with partial result", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		a := "https://example.com/monsters/a/"
		b := "https://example.com/monsters/b/"
		s := newSite(map[string]page{
			a: {entry: "A", isEntry: true, links: []string{b}},
			b: {entry: "B", isEntry: true},
		})
		c := s.crawler(1)

		result, err := c.Crawl(ctx, a, func(e crawl.ProgressEvent) {
			if e.Type == crawl.ProgressFetched {
				cancel()
			}
		})

		require.ErrorIs(t, err, context.Canceled)
		require.NotNil(t, result)
		assert.Equal(t, []string{"A"}, result.Entries.Entries())
		assert.Equal(t, 0, s.fetchCount(b))
	})

	t.Run("fetches each URL once with concurrent workers", func(t *testing.T) {
		t.Parallel()

		const n = 50
		url := func(i int) string { return fmt.Sprintf("https://example.com/monsters/%d/", i) }
		pages := make(map[string]page, n)
		for i := range n {
			var links []string
			for j := range n {
				if j != i {
					links = append(links, url(j))
				}
			}
			entry := fmt.Sprintf("Monster %d\n\n", i%10)
			pages[url(i)] = page{entry: entry, isEntry: true, links: links}
		}
		s := newSite(pages)

		result, err := s.crawler(8).Crawl(context.Background(), url(0), nil)

		require.NoError(t, err)
		assert.Len(t, s.fetchOrder(), n)
		for i := range n {
			assert.Equal(t, 1, s.fetchCount(url(i)))
		}
		assert.Equal(t, 10, result.Entries.Len())
		assert.Equal(t, n, result.Visited)
	})
}

func TestCrawler_Crawl_WithGoqueryExtractors(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"https://example.com/monsters/a/": `<html><head><title>Aboleth – 5th Edition SRD</title></head><body>
<div class="article-content"><p>Hit Points 135</p><ul><li>Tentacle</li><li>Tail</li></ul></div>
<a href="../b/">B</a><a href="/monsters/c/">C</a><a href="/rules/">Rules</a></body></html>`,
		"https://example.com/monsters/b/": `<html><head><title>Aboleth – 5th Edition SRD</title></head><body>
<div class="article-content"><p>Hit Points 135</p><ul><li>Tentacle</li><li>Tail</li></ul></div>
<a href="/monsters/a/">A</a></body></html>`,
		"https://example.com/monsters/c/": `<html><head><title>Monsters – 5th Edition SRD</title></head><body>
<div class="article-content"><p>Browse monsters by type.</p></div></body></html>`,
	}

	var mu sync.Mutex
	fetched := make(map[string]int)
	c := &crawl.Crawler{
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				mu.Lock()
				fetched[url]++
				mu.Unlock()
				html, ok := pages[url]
				if !ok {
					return "", &srdcrawl.FetchError{URL: url, StatusCode: 404}
				}
				return html, nil
			},
		},
		Entries: goquery.NewEntryExtractor(),
		Links:   goquery.NewLinkExtractor(),
		Scope:   srdcrawl.NewScope(prefix),
	}

	result, err := c.Crawl(context.Background(), "https://example.com/monsters/a/", nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"Aboleth\n\nHit Points 135\n\nTentacle\nTail\n\n"}, result.Entries.Entries())
	assert.Equal(t, map[string]int{
		"https://example.com/monsters/a/": 1,
		"https://example.com/monsters/b/": 1,
		"https://example.com/monsters/c/": 1,
	}, fetched)
	assert.Equal(t, 1, result.Skipped)
}
