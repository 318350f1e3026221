package parser

import (
	"testing"
)

func TestParseDocument_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\nid: p-1\ntitle: Hello\naliases:\n  - Hi\ntags:\n  - go\n  - notes\n---\n# Hello\nBody text.\n")
	doc := ParseDocument("hello.md", input)
	if doc.Title != "Hello" {
		t.Errorf("title = %q, want %q", doc.Title, "Hello")
	}
	if doc.Meta.ID != "p-1" {
		t.Errorf("id = %q, want p-1", doc.Meta.ID)
	}
	if len(doc.Meta.Tags) != 2 || doc.Meta.Tags[0] != "go" || doc.Meta.Tags[1] != "notes" {
		t.Errorf("tags = %v, want [go notes]", doc.Meta.Tags)
	}
	if len(doc.Meta.Aliases) != 1 || doc.Meta.Aliases[0] != "Hi" {
		t.Errorf("aliases = %v, want [Hi]", doc.Meta.Aliases)
	}
	if doc.Body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", doc.Body)
	}
}

func TestParseDocument_NoFrontmatter(t *testing.T) {
	doc := ParseDocument("x.md", []byte("# Just a heading\nSome text.\n"))
	if doc.Meta.Title != "" || doc.Meta.ID != "" {
		t.Errorf("expected empty frontmatter, got %+v", doc.Meta)
	}
	if doc.Title != "Just a heading" {
		t.Errorf("title = %q, want %q", doc.Title, "Just a heading")
	}
}

func TestParseDocument_InvalidYAMLFallback(t *testing.T) {
	input := "---\n: invalid: yaml: {{{\n---\nBody\n"
	doc := ParseDocument("broken.md", []byte(input))
	if doc.Body != input {
		t.Errorf("invalid YAML should leave everything as body, got %q", doc.Body)
	}
}

func TestParseDocument_FileStemFallback(t *testing.T) {
	doc := ParseDocument("folder/Reading List.md", []byte("no heading here"))
	if doc.Title != "Reading List" {
		t.Errorf("title = %q, want %q", doc.Title, "Reading List")
	}
}

func TestBlocks_OrderAndKinds(t *testing.T) {
	src := "# Intro\n\nFirst paragraph with [[Link]].\n\n## Details\n\n- item one\n- item two\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"
	els := Blocks(src)

	want := []struct {
		kind   ElementKind
		text   string
		anchor string
	}{
		{ElementHeading, "# Intro", "Intro"},
		{ElementParagraph, "First paragraph with [[Link]].", ""},
		{ElementHeading, "## Details", "Details"},
		{ElementParagraph, "item one", ""},
		{ElementParagraph, "item two", ""},
		{ElementTable, "| a | b |\n|---|---|\n| 1 | 2 |", ""},
	}
	if len(els) != len(want) {
		t.Fatalf("len(elements) = %d, want %d: %+v", len(els), len(want), els)
	}
	for i, w := range want {
		if els[i].Kind != w.kind || els[i].Text != w.text || els[i].Anchor != w.anchor {
			t.Errorf("element %d = %+v, want %+v", i, els[i], w)
		}
	}
}

func TestBlocks_Empty(t *testing.T) {
	if els := Blocks(""); len(els) != 0 {
		t.Errorf("expected no elements, got %+v", els)
	}
}

func TestBlocks_NestedQuoteFlattened(t *testing.T) {
	els := Blocks("> quoted text\n\nafter\n")
	if len(els) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(els), els)
	}
	if els[0].Text != "quoted text" || els[1].Text != "after" {
		t.Errorf("elements = %+v", els)
	}
}
