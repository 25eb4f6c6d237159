// Package goquery implements page parsing with github.com/PuerkitoBio/goquery:
// turning SRD pages into normalized text entries and collecting their links.
package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/srdcrawl"
)

// Defaults for 5e SRD monster pages.
const (
	DefaultTitleSuffix    = " – 5th Edition SRD"
	DefaultContainerClass = "article-content"
	DefaultContentMarker  = "Hit Points"
)

// Markers that select a child transformation.
const (
	variantsMarker  = "Variants "
	abilityPrefix   = "STR"
	copyrightMarker = "Copyright Notice"
)

// abilityScores matches the six-score table once its text is flattened,
// e.g. "STR DEX CON INT WIS CHA 10 (+0) 14 (+2) 12 (+1) 8 (-1) 13 (+1) 9 (-1)".
// Modifiers may be signed with a hyphen, an en dash or a figure dash.
var abilityScores = regexp.MustCompile(
	`STR\sDEX\sCON\sINT\sWIS\sCHA` + strings.Repeat(`\s(\d+\s?\([+\-–‒]?\d+\))`, 6),
)

var abilityNames = [6]string{"STR", "DEX", "CON", "INT", "WIS", "CHA"}

// Ensure EntryExtractor implements srdcrawl.EntryExtractor at compile time.
var _ srdcrawl.EntryExtractor = (*EntryExtractor)(nil)

// EntryExtractor turns SRD monster pages into plain-text entries.
type EntryExtractor struct {
	// TitleSuffix is removed from the page title.
	TitleSuffix string

	// ContainerClass identifies the element(s) holding the page body.
	ContainerClass string

	// ContentMarker must appear in the container text for the page to be
	// treated as an entry rather than an index page.
	ContentMarker string
}

// NewEntryExtractor returns an EntryExtractor configured for the 5e SRD.
func NewEntryExtractor() *EntryExtractor {
	return &EntryExtractor{
		TitleSuffix:    DefaultTitleSuffix,
		ContainerClass: DefaultContainerClass,
		ContentMarker:  DefaultContentMarker,
	}
}

// ExtractEntry builds the entry for a content page.
//
// The entry is the cleaned title followed by one block per non-empty child
// of the container, each block terminated by a blank line. A content page
// whose container has no usable children yields just the title and a blank
// line.
func (e *EntryExtractor) ExtractEntry(html string) (string, bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false, srdcrawl.Errorf(srdcrawl.EINVALID, "failed to parse HTML: %v", err)
	}

	containers := doc.Find("." + e.ContainerClass)
	if containers.Length() == 0 || !strings.Contains(Text(containers), e.ContentMarker) {
		return "", false, nil
	}

	titles := doc.Find("title").Map(func(_ int, sel *goquery.Selection) string {
		return Text(sel)
	})

	var b strings.Builder
	b.WriteString(CleanTitle(strings.Join(titles, " "), e.TitleSuffix))
	b.WriteString("\n\n")

	containers.Each(func(_ int, container *goquery.Selection) {
		container.Children().Each(func(_ int, child *goquery.Selection) {
			block := transformChild(child)
			if block == "" {
				return
			}
			b.WriteString(block)
			b.WriteString("\n\n")
		})
	})

	return b.String(), true, nil
}

// transformChild renders one container child as an entry block.
// An empty result means the child contributes nothing.
func transformChild(child *goquery.Selection) string {
	text := Text(child)
	switch {
	case text == "":
		return ""
	case strings.Contains(text, variantsMarker):
		return strings.Replace(text, "Variants", "Variants:", 1)
	case strings.HasPrefix(text, abilityPrefix):
		return ReformatAbilityScores(text)
	case goquery.NodeName(child) == "ul":
		return listText(child)
	case strings.Contains(text, copyrightMarker):
		return ""
	default:
		return text
	}
}

// CleanTitle removes every occurrence of suffix from title.
func CleanTitle(title, suffix string) string {
	if suffix == "" {
		return title
	}
	return strings.ReplaceAll(title, suffix, "")
}

// ReformatAbilityScores puts each ability score on its own line:
//
//	STR 10 (+0)
//	DEX 14 (+2)
//	...
//
// Text that does not contain all six scores is returned unchanged.
func ReformatAbilityScores(text string) string {
	m := abilityScores.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	lines := make([]string, len(abilityNames))
	for i, name := range abilityNames {
		lines[i] = name + " " + m[i+1]
	}
	return strings.Join(lines, "\n")
}

// listText renders each list item on its own line.
func listText(list *goquery.Selection) string {
	items := list.Children().Map(func(_ int, item *goquery.Selection) string {
		return Text(item)
	})
	return strings.Join(items, "\n")
}
