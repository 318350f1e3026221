// Package parser turns Markdown into the inputs of the note engine: YAML
// frontmatter metadata for vault files and the ordered block-level
// elements of a page body.
package parser

import (
	"bytes"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter holds the recognised metadata keys of a vault file.
type Frontmatter struct {
	ID      string   `yaml:"id"`
	Title   string   `yaml:"title"`
	Aliases []string `yaml:"aliases"`
	Tags    []string `yaml:"tags"`
}

// Document is a parsed vault file.
type Document struct {
	Meta  Frontmatter
	Body  string
	Title string
}

// ParseDocument splits frontmatter from body and derives the page title:
// frontmatter title, else the first H1, else the file stem of name.
func ParseDocument(name string, data []byte) Document {
	fm, body := splitFrontmatter(data)
	return Document{
		Meta:  fm,
		Body:  body,
		Title: deriveTitle(fm, body, name),
	}
}

// splitFrontmatter separates YAML frontmatter (between leading ---
// delimiters) from the body. Missing or invalid frontmatter leaves the
// whole input as body.
func splitFrontmatter(data []byte) (Frontmatter, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return Frontmatter{}, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return Frontmatter{}, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm Frontmatter
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return Frontmatter{}, string(data)
	}
	fm.ID = strings.TrimSpace(fm.ID)
	fm.Title = strings.TrimSpace(fm.Title)
	return fm, body
}

func deriveTitle(fm Frontmatter, body, name string) string {
	if fm.Title != "" {
		return fm.Title
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return strings.TrimSuffix(path.Base(strings.ReplaceAll(name, "\\", "/")), ".md")
}
