package crawl

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// EntryStore is a duplicate-free collection of entries.
// Entries are compared by exact text; Entries returns them in the order
// they were first added. It is safe for concurrent use.
type EntryStore struct {
	mu      sync.Mutex
	buckets map[uint64][]int
	entries []string
}

// NewEntryStore creates an empty EntryStore.
func NewEntryStore() *EntryStore {
	return &EntryStore{buckets: make(map[uint64][]int)}
}

// Add stores entry. It returns false if an identical entry is already present.
func (s *EntryStore) Add(entry string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := xxhash.Sum64String(entry)
	if s.indexOf(h, entry) >= 0 {
		return false
	}
	s.buckets[h] = append(s.buckets[h], len(s.entries))
	s.entries = append(s.entries, entry)
	return true
}

// Contains returns true if an identical entry is present.
func (s *EntryStore) Contains(entry string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(xxhash.Sum64String(entry), entry) >= 0
}

// Len returns the number of distinct entries.
func (s *EntryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Entries returns a copy of the stored entries.
func (s *EntryStore) Entries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.entries...)
}

// indexOf returns the position of entry in s.entries, or -1.
func (s *EntryStore) indexOf(h uint64, entry string) int {
	for _, i := range s.buckets[h] {
		if s.entries[i] == entry {
			return i
		}
	}
	return -1
}
