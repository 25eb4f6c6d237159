package crawl

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Visited set sizing for a single crawl run.
const (
	// visitedExpectedURLs is the expected number of URLs for Bloom filter sizing.
	visitedExpectedURLs = 10000
	// visitedFalsePositiveRate is the acceptable false positive rate of the Bloom filter.
	visitedFalsePositiveRate = 0.01
)

// VisitedSet records the URLs a crawl has claimed.
// Membership is exact string equality; no normalization is applied.
// It is safe for concurrent use by multiple goroutines.
type VisitedSet struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
	urls   map[string]struct{}
}

// NewVisitedSet creates a VisitedSet sized for n expected URLs. The Bloom
// filter answers definite misses; the map settles every possible hit, so
// false positives never cause a URL to be skipped.
func NewVisitedSet(n uint, fpRate float64) *VisitedSet {
	return &VisitedSet{
		filter: bloom.NewWithEstimates(n, fpRate),
		urls:   make(map[string]struct{}),
	}
}

// Visited returns true if url has been marked.
func (s *VisitedSet) Visited(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visited(url)
}

// MarkVisited records url.
func (s *VisitedSet) MarkVisited(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mark(url)
}

// MarkIfNotVisited records url and returns true, or returns false if url
// was already recorded.
func (s *VisitedSet) MarkIfNotVisited(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.visited(url) {
		return false
	}
	s.mark(url)
	return true
}

// Len returns the number of recorded URLs.
func (s *VisitedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.urls)
}

func (s *VisitedSet) visited(url string) bool {
	if !s.filter.TestString(url) {
		return false
	}
	_, ok := s.urls[url]
	return ok
}

func (s *VisitedSet) mark(url string) {
	s.filter.AddString(url)
	s.urls[url] = struct{}{}
}
