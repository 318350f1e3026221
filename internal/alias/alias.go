// Package alias indexes page titles and aliases under a normalized form
// for exact, normalization-insensitive lookup.
package alias

import (
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/starford/bidinote/internal/models"
)

// scriptFolds maps a handful of traditional Han characters to their
// simplified forms. It is a partial approximation, not a converter.
var scriptFolds = strings.NewReplacer(
	"臺", "台",
	"與", "与",
	"灣", "湾",
	"體", "体",
	"國", "国",
	"學", "学",
	"書", "书",
	"記", "记",
	"筆", "笔",
	"頁", "页",
	"連", "连",
	"結", "结",
)

// folders recycles case folders; a Caser keeps state and must not be
// shared between goroutines.
var folders = sync.Pool{
	New: func() any {
		c := cases.Fold()
		return &c
	},
}

// Normalize applies NFKC composition, case folding and the script-fold
// table. Indexed and looked-up text go through the same pipeline.
func Normalize(text string) string {
	s := norm.NFKC.String(text)
	folder := folders.Get().(*cases.Caser)
	s = folder.String(s)
	folders.Put(folder)
	return scriptFolds.Replace(s)
}

// Dictionary maps normalized title/alias text to page identifiers.
// A Dictionary is built once per operation and then only read.
type Dictionary struct {
	entries map[string][]string
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{entries: make(map[string][]string)}
}

// FromPages indexes the title and aliases of every page.
func FromPages(pages []models.Page) *Dictionary {
	d := New()
	for _, p := range pages {
		d.AddEntry(p.ID, p.Title, p.Aliases)
	}
	return d
}

// AddEntry indexes title and each alias for pageID. Blank strings are skipped.
func (d *Dictionary) AddEntry(pageID, title string, aliases []string) {
	d.index(pageID, title)
	for _, a := range aliases {
		d.index(pageID, a)
	}
}

func (d *Dictionary) index(pageID, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	key := Normalize(text)
	if !slices.Contains(d.entries[key], pageID) {
		d.entries[key] = append(d.entries[key], pageID)
	}
}

// Lookup returns the pages whose title or alias normalizes to the same
// form as text, in indexing order. The result is a fresh slice.
func (d *Dictionary) Lookup(text string) []string {
	return slices.Clone(d.entries[Normalize(text)])
}

// Len returns the number of distinct normalized keys.
func (d *Dictionary) Len() int {
	return len(d.entries)
}
