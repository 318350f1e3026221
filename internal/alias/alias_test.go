package alias

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/starford/bidinote/internal/models"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "page b", Normalize("Page B"))
	// Fullwidth Latin folds to ASCII under NFKC.
	assert.Equal(t, "abc", Normalize("ＡＢＣ"))
	assert.Equal(t, "台湾", Normalize("臺灣"))
	assert.Equal(t, Normalize("與"), Normalize("与"))
}

func TestNormalize_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				assert.Equal(t, "page b", Normalize("PAGE B"))
				assert.Equal(t, "abc", Normalize("ＡＢＣ"))
			}
		}()
	}
	wg.Wait()
}

func TestDictionary_LookupExactOnly(t *testing.T) {
	d := New()
	d.AddEntry("b", "Page B", []string{"Bee"})

	assert.Equal(t, []string{"b"}, d.Lookup("page b"))
	assert.Equal(t, []string{"b"}, d.Lookup("BEE"))
	assert.Empty(t, d.Lookup("Page"))
	assert.Empty(t, d.Lookup("Page B extra"))
}

func TestDictionary_ManyToMany(t *testing.T) {
	d := FromPages([]models.Page{
		{ID: "a", Title: "Go", Aliases: []string{"golang"}},
		{ID: "b", Title: "GO"},
	})
	assert.Equal(t, []string{"a", "b"}, d.Lookup("go"))
	assert.Equal(t, []string{"a"}, d.Lookup("Golang"))
	assert.Equal(t, 2, d.Len())
}

func TestDictionary_SkipsBlank(t *testing.T) {
	d := New()
	d.AddEntry("a", "  ", []string{"", "\t"})
	assert.Equal(t, 0, d.Len())
	assert.Empty(t, d.Lookup(""))
}

func TestDictionary_LookupReturnsCopy(t *testing.T) {
	d := New()
	d.AddEntry("a", "x1", nil)
	got := d.Lookup("x1")
	got[0] = "mutated"
	assert.Equal(t, []string{"a"}, d.Lookup("x1"))
}
