package parser

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// ElementKind is the kind of a block-level element.
type ElementKind string

const (
	ElementHeading   ElementKind = "heading"
	ElementParagraph ElementKind = "paragraph"
	ElementTable     ElementKind = "table"
)

// Element is one block-level element in document order. Anchor is set for
// headings only.
type Element struct {
	Kind   ElementKind
	Text   string
	Anchor string
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// Blocks parses src and returns its headings, paragraphs and tables in
// document order, with nested containers (lists, quotes) flattened.
func Blocks(src string) []Element {
	source := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var out []Element
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			out = append(out, Element{
				Kind:   ElementHeading,
				Text:   lineSpan(source, node),
				Anchor: headingText(source, node),
			})
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.TextBlock:
			out = append(out, Element{Kind: ElementParagraph, Text: segmentSpan(source, node)})
			return ast.WalkSkipChildren, nil
		case *east.Table:
			out = append(out, Element{Kind: ElementTable, Text: lineSpan(source, node)})
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}

func headingText(source []byte, h *ast.Heading) string {
	var b strings.Builder
	lines := h.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return strings.TrimSpace(b.String())
}

// segmentSpan returns the source between the first and last line segment.
func segmentSpan(source []byte, n ast.Node) string {
	start, stop, ok := bounds(n)
	if !ok {
		return ""
	}
	return strings.TrimRight(string(source[start:stop]), "\r\n")
}

// lineSpan widens the node's bounds to whole source lines so heading
// markers and table pipes are kept.
func lineSpan(source []byte, n ast.Node) string {
	start, stop, ok := bounds(n)
	if !ok {
		return ""
	}
	if i := bytes.LastIndexByte(source[:start], '\n'); i >= 0 {
		start = i + 1
	} else {
		start = 0
	}
	if i := bytes.IndexByte(source[stop:], '\n'); i >= 0 {
		stop += i
	} else {
		stop = len(source)
	}
	return strings.TrimRight(string(source[start:stop]), "\r\n")
}

// bounds finds the byte range covered by n's own lines or, for containers
// without lines such as tables, by the text segments of its descendants.
func bounds(n ast.Node) (int, int, bool) {
	start, stop := -1, -1
	extend := func(seg text.Segment) {
		if start < 0 || seg.Start < start {
			start = seg.Start
		}
		if seg.Stop > stop {
			stop = seg.Stop
		}
	}
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			extend(lines.At(i))
		}
	}
	if start < 0 {
		_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
			if !entering {
				return ast.WalkContinue, nil
			}
			if t, ok := c.(*ast.Text); ok {
				extend(t.Segment)
			}
			return ast.WalkContinue, nil
		})
	}
	return start, stop, start >= 0
}
