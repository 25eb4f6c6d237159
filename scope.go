package srdcrawl

import "strings"

// Defaults for crawling the monster section of the 5e SRD.
const (
	DefaultSeedURL     = "https://www.5esrd.com/gamemastering/monsters-foes/monsters-by-type/aberrations/aboleth/"
	DefaultScopePrefix = "www.5esrd.com/gamemastering/monsters-foes/monsters-by-type/"
)

// DefaultExclusions lists substrings that disqualify a URL.
// They cover binary assets, mail links, explicit ports and
// junk URLs seen in the wild on the target site.
var DefaultExclusions = []string{".pdf", "@", "adfad", ":80", "fdafd", ".jpg"}

// Scope decides which URLs may be fetched.
type Scope struct {
	// Prefix must appear somewhere in an in-scope URL.
	Prefix string

	// Exclude lists substrings; a URL containing any of them is out of scope.
	Exclude []string
}

// NewScope returns a Scope for prefix with the default exclusions.
func NewScope(prefix string) Scope {
	return Scope{
		Prefix:  prefix,
		Exclude: append([]string(nil), DefaultExclusions...),
	}
}

// Validate returns an error if the scope cannot bound a crawl.
func (s Scope) Validate() error {
	if s.Prefix == "" {
		return Errorf(EINVALID, "scope prefix required")
	}
	return nil
}

// Contains reports whether url is eligible for fetching.
// Matching is plain substring search; URLs are not normalized.
func (s Scope) Contains(url string) bool {
	for _, marker := range s.Exclude {
		if marker != "" && strings.Contains(url, marker) {
			return false
		}
	}
	return strings.Contains(url, s.Prefix)
}
