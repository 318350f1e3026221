package mention

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/bidinote/internal/alias"
	"github.com/starford/bidinote/internal/models"
	"github.com/starford/bidinote/internal/wikilink"
)

func dict(pages ...models.Page) *alias.Dictionary {
	return alias.FromPages(pages)
}

func TestDetect_FindsTitle(t *testing.T) {
	d := NewDetector(dict(models.Page{ID: "b", Title: "Page B"}))
	got := d.Detect("mentions Page B without linking")

	require.NotEmpty(t, got)
	assert.Equal(t, "Page B", got[0].Text)
	assert.Equal(t, "b", got[0].PageID)
	assert.Equal(t, 9, got[0].Start)
	assert.Equal(t, 15, got[0].End)
}

func TestDetect_EmptyDictionary(t *testing.T) {
	d := NewDetector(alias.New())
	assert.Empty(t, d.Detect("mentions Page B without linking"))
}

func TestDetect_SkipsLinkedRanges(t *testing.T) {
	d := NewDetector(dict(models.Page{ID: "b", Title: "Page B"}))
	assert.Empty(t, d.Detect("see [[Page B]] here"))
	assert.Empty(t, d.Detect("see ![[Page B]] here"))

	// Only the second, unlinked occurrence is reported.
	got := d.Detect("[[Page B]] and Page B")
	require.Len(t, got, 1)
	assert.Equal(t, 15, got[0].Start)
}

func TestDetect_RepeatedLinkRangesAllExcluded(t *testing.T) {
	d := NewDetector(dict(models.Page{ID: "x", Title: "xy"}))
	assert.Empty(t, d.Detect("[[xy]] [[xy]]"))
}

func TestDetect_CJKCharacterOffsets(t *testing.T) {
	d := NewDetector(dict(models.Page{ID: "b", Title: "页面B"}))
	got := d.Detect("这里提到页面B但没有链接。")
	require.Len(t, got, 1)
	assert.Equal(t, "页面B", got[0].Text)
	assert.Equal(t, 4, got[0].Start)
	assert.Equal(t, 7, got[0].End)
}

func TestDetect_NormalizedMatch(t *testing.T) {
	d := NewDetector(dict(models.Page{ID: "t", Title: "臺灣"}))
	got := d.Detect("去台湾")
	require.Len(t, got, 1)
	assert.Equal(t, "台湾", got[0].Text)
}

func TestDetect_OverlappingHitsReported(t *testing.T) {
	d := NewDetector(dict(
		models.Page{ID: "a", Title: "ab"},
		models.Page{ID: "b", Title: "abc"},
		models.Page{ID: "c", Title: "AB"},
	))
	got := d.Detect("abc")
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "c", "b"}, []string{got[0].PageID, got[1].PageID, got[2].PageID})
}

func TestDetect_LengthBounds(t *testing.T) {
	long := "abcdefghijklmnopqrstu" // 21 characters
	d := NewDetector(dict(
		models.Page{ID: "one", Title: "a"},
		models.Page{ID: "long", Title: long},
		models.Page{ID: "max", Title: long[:20]},
	))
	got := d.Detect(long)
	require.Len(t, got, 1)
	assert.Equal(t, "max", got[0].PageID)
}

func TestDetect_NeverOverlapsLinks(t *testing.T) {
	d := NewDetector(dict(
		models.Page{ID: "a", Title: "Alpha"},
		models.Page{ID: "b", Title: "ha ["},
		models.Page{ID: "c", Title: "]] Be"},
	))
	docs := []string{
		"Alpha [[Alpha]] Alpha",
		"alpha [[Beta]] Beta",
		"![[Alpha#x]]Alpha[[Alpha^y]]",
	}
	for _, doc := range docs {
		for _, m := range d.Detect(doc) {
			for _, l := range wikilink.ParseAll(doc) {
				ls := utf8.RuneCountInString(doc[:l.Start])
				le := ls + utf8.RuneCountInString(l.Raw)
				assert.False(t, m.Start < le && ls < m.End, "mention %+v overlaps link %q in %q", m, l.Raw, doc)
			}
		}
	}
}
