// Package mention finds unlinked mentions of known pages in free text.
package mention

import (
	"unicode/utf8"

	"github.com/starford/bidinote/internal/alias"
	"github.com/starford/bidinote/internal/models"
	"github.com/starford/bidinote/internal/wikilink"
)

// Candidate lengths in characters, inclusive.
const (
	MinLength = 2
	MaxLength = 20
)

// Detector scans text against a dictionary snapshot.
//
// The scan tries every start offset and every length up to MaxLength, so it
// is quadratic in text length for dense dictionaries. That is fine for
// note-sized documents only.
type Detector struct {
	dict *alias.Dictionary
}

// NewDetector returns a detector bound to dict.
func NewDetector(dict *alias.Dictionary) *Detector {
	return &Detector{dict: dict}
}

// Detect returns every substring of MinLength..MaxLength characters that
// matches a dictionary entry and lies outside any wiki-link occurrence.
// Overlapping hits, including several at one start offset, are all
// reported; suppressing them is up to the caller.
func (d *Detector) Detect(text string) []models.UnlinkedMention {
	if d.dict.Len() == 0 {
		return nil
	}
	runes := []rune(text)
	linked := linkedRunes(text, len(runes))

	var out []models.UnlinkedMention
	for i := range runes {
		if linked[i] {
			continue
		}
		for n := MinLength; n <= MaxLength && i+n <= len(runes); n++ {
			if linked[i+n-1] {
				break
			}
			segment := string(runes[i : i+n])
			for _, pageID := range d.dict.Lookup(segment) {
				out = append(out, models.UnlinkedMention{
					PageID: pageID,
					Text:   segment,
					Start:  i,
					End:    i + n,
				})
			}
		}
	}
	return out
}

// linkedRunes marks the rune positions covered by wiki-link occurrences.
func linkedRunes(text string, n int) []bool {
	linked := make([]bool, n)
	for l := range wikilink.Parse(text) {
		start := utf8.RuneCountInString(text[:l.Start])
		end := start + utf8.RuneCountInString(l.Raw)
		for i := start; i < end; i++ {
			linked[i] = true
		}
	}
	return linked
}
