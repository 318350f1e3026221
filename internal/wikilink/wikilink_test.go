package wikilink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Kinds(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		target string
		anchor string
		kind   Kind
		embed  bool
	}{
		{"page", "see [[Page B]]", "Page B", "", KindPage, false},
		{"trimmed", "[[  Page B  ]]", "Page B", "", KindPage, false},
		{"heading", "[[Page#Intro]]", "Page", "Intro", KindHeading, false},
		{"block", "[[Page^abc123]]", "Page", "abc123", KindBlock, false},
		{"caret wins over hash", "[[Page#Intro^ref]]", "Page#Intro", "ref", KindBlock, false},
		{"embed", "![[Diagram]]", "Diagram", "", KindEmbed, true},
		{"embed with block", "![[Page^ref]]", "Page", "ref", KindEmbed, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := ParseAll(tt.text)
			require.Len(t, links, 1)
			l := links[0]
			assert.Equal(t, tt.target, l.Target)
			assert.Equal(t, tt.anchor, l.Anchor)
			assert.Equal(t, tt.kind, l.Kind)
			assert.Equal(t, tt.embed, l.Embed)
		})
	}
}

func TestParse_OffsetsAndOrder(t *testing.T) {
	text := "a [[One]] b ![[Two]] c [[One]]"
	links := ParseAll(text)
	require.Len(t, links, 3)
	for _, l := range links {
		assert.Equal(t, l.Raw, text[l.Start:l.End])
	}
	assert.Equal(t, "One", links[0].Target)
	assert.Equal(t, "Two", links[1].Target)
	assert.Equal(t, 23, links[2].Start)
}

func TestParse_NoNestingOrEscapes(t *testing.T) {
	assert.Empty(t, ParseAll("[[]] and [[ broken ] ]] and [single]"))
	links := ParseAll("[[a]]]]")
	require.Len(t, links, 1)
	assert.Equal(t, "a", links[0].Target)
}

func TestParse_Restartable(t *testing.T) {
	seq := Parse("[[a]] [[b]] [[c]]")
	var first []string
	for l := range seq {
		first = append(first, l.Target)
		if len(first) == 2 {
			break
		}
	}
	var second []string
	for l := range seq {
		second = append(second, l.Target)
	}
	assert.Equal(t, []string{"a", "b"}, first)
	assert.Equal(t, []string{"a", "b", "c"}, second)
}

func TestParse_BlankTargetKept(t *testing.T) {
	links := ParseAll("[[  #Heading]]")
	require.Len(t, links, 1)
	assert.Equal(t, "", links[0].Target)
	assert.Equal(t, "Heading", links[0].Anchor)
}
