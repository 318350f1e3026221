// Package wikilink finds [[wiki links]], anchored links and ![[embeds]] in text.
package wikilink

import (
	"iter"
	"regexp"
	"slices"
	"strings"
)

// Kind classifies a link occurrence.
type Kind string

const (
	KindPage    Kind = "page"
	KindHeading Kind = "heading"
	KindBlock   Kind = "block"
	KindEmbed   Kind = "embed"
)

var linkRe = regexp.MustCompile(`!?\[\[([^\]]+)\]\]`)

// Link is one occurrence found in text. Start and End are byte offsets of
// Raw within the scanned text.
type Link struct {
	Raw    string
	Target string
	Anchor string
	Kind   Kind
	Embed  bool
	Start  int
	End    int
}

// Parse returns the link occurrences of text in left-to-right order. The
// sequence is lazy and can be ranged over any number of times.
//
// Inside the brackets the first '#' splits off a heading anchor and the
// first '^' splits off a block anchor; '^' is examined last, so when both
// are present the block form wins. A leading '!' makes the occurrence an
// embed whatever its anchor syntax.
func Parse(text string) iter.Seq[Link] {
	return func(yield func(Link) bool) {
		pos := 0
		for pos < len(text) {
			m := linkRe.FindStringSubmatchIndex(text[pos:])
			if m == nil {
				return
			}
			start, end := pos+m[0], pos+m[1]
			inner := text[pos+m[2] : pos+m[3]]
			if !yield(classify(text[start:end], inner, start, end)) {
				return
			}
			pos = end
		}
	}
}

// ParseAll collects Parse into a slice.
func ParseAll(text string) []Link {
	return slices.Collect(Parse(text))
}

func classify(raw, inner string, start, end int) Link {
	inner = strings.TrimSpace(inner)
	l := Link{
		Raw:    raw,
		Target: inner,
		Kind:   KindPage,
		Embed:  strings.HasPrefix(raw, "!"),
		Start:  start,
		End:    end,
	}
	if target, anchor, ok := strings.Cut(inner, "#"); ok {
		l.Target = strings.TrimSpace(target)
		l.Anchor = strings.TrimSpace(anchor)
		l.Kind = KindHeading
	}
	if target, anchor, ok := strings.Cut(inner, "^"); ok {
		l.Target = strings.TrimSpace(target)
		l.Anchor = strings.TrimSpace(anchor)
		l.Kind = KindBlock
	}
	if l.Embed {
		l.Kind = KindEmbed
	}
	return l
}
