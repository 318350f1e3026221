package graph

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/bidinote/internal/models"
)

func page(id string, tags ...string) models.Page {
	p := models.Page{ID: id, Title: "Page " + id}
	p.SetTags(tags)
	return p
}

func link(src, dst string) models.Edge {
	return models.Edge{SrcPageID: src, DstPageID: dst, Type: models.EdgeLink}
}

func ids(pages []models.Page) []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.ID)
	}
	return out
}

func TestExpand_TwoNodes(t *testing.T) {
	a, b := page("A"), page("B")
	edges := []models.Edge{link("A", "B")}

	res := Expand(a, []models.Page{a, b}, edges, 1, 0)

	assert.Equal(t, []string{"A", "B"}, ids(res.Nodes))
	assert.Len(t, res.Edges, 1)
}

func TestExpand_DepthLimitsLayers(t *testing.T) {
	nodes := []models.Page{page("A"), page("B"), page("C"), page("D")}
	edges := []models.Edge{link("A", "B"), link("B", "C"), link("C", "D")}

	res := Expand(nodes[0], nodes, edges, 0, 0)
	assert.Equal(t, []string{"A"}, ids(res.Nodes))
	assert.Len(t, res.Edges, 1, "the anchor opens even at depth 0")

	res = Expand(nodes[0], nodes, edges, 2, 0)
	assert.Equal(t, []string{"A", "B", "C"}, ids(res.Nodes))
}

func TestExpand_ThresholdStopsPropagation(t *testing.T) {
	// A has degree 1, below threshold 2: selected but closed.
	nodes := []models.Page{page("A"), page("B"), page("C")}
	edges := []models.Edge{link("A", "B"), link("B", "C")}

	res := Expand(nodes[0], nodes, edges, 3, 2)
	assert.Equal(t, []string{"A"}, ids(res.Nodes))
	assert.Empty(t, res.Edges)

	// From B (degree 2) both neighbours are reached; they are closed.
	res = Expand(nodes[1], nodes, edges, 3, 2)
	assert.Equal(t, []string{"B", "A", "C"}, ids(res.Nodes))
	assert.Len(t, res.Edges, 2)
}

func TestExpand_SharedEdgeReportedOnce(t *testing.T) {
	nodes := []models.Page{page("A"), page("B")}
	edges := []models.Edge{link("A", "B")}

	res := Expand(nodes[0], nodes, edges, 1, 1)
	assert.Len(t, res.Edges, 1)
}

func TestExpand_ParallelEdgesKept(t *testing.T) {
	nodes := []models.Page{page("A"), page("B")}
	edges := []models.Edge{link("A", "B"), link("A", "B")}

	res := Expand(nodes[0], nodes, edges, 1, 0)
	assert.Len(t, res.Edges, 2)
}

func TestExpand_DropsUnknownIDs(t *testing.T) {
	a := page("A")
	edges := []models.Edge{link("A", "ghost")}

	res := Expand(a, []models.Page{a}, edges, 1, 0)
	assert.Equal(t, []string{"A"}, ids(res.Nodes))
	assert.Len(t, res.Edges, 1)
}

func TestExpand_ZeroThresholdReachesEverythingWithinDepth(t *testing.T) {
	// Ring of 10 pages plus chords; every node within depth hops must appear.
	const n = 10
	nodes := make([]models.Page, n)
	var edges []models.Edge
	for i := range n {
		nodes[i] = page(fmt.Sprint(i))
		edges = append(edges, link(fmt.Sprint(i), fmt.Sprint((i+1)%n)))
	}
	edges = append(edges, link("0", "5"))

	res := Expand(nodes[0], nodes, edges, 2, 0)
	got := ids(res.Nodes)
	for _, want := range []string{"0", "1", "2", "9", "8", "5", "4", "6"} {
		assert.Contains(t, got, want)
	}
	assert.NotContains(t, got, "3")
	assert.NotContains(t, got, "7")
}

func TestQuery_Tag(t *testing.T) {
	a, b := page("A", "x"), page("B", "y")
	edges := []models.Edge{link("A", "B"), link("B", "B")}

	res := Query([]models.Page{a, b}, edges, `tag="x"`)

	assert.Equal(t, []string{"A"}, ids(res.Nodes))
	assert.Equal(t, []models.Edge{link("A", "B")}, res.Edges)
}

func TestQuery_BlankReturnsInput(t *testing.T) {
	nodes := []models.Page{page("A"), page("B")}
	edges := []models.Edge{link("A", "B")}

	res := Query(nodes, edges, "   ")
	assert.Equal(t, nodes, res.Nodes)
	assert.Equal(t, edges, res.Edges)
}

func TestQuery_TypeAndCase(t *testing.T) {
	nodes := []models.Page{page("A", "X"), page("B")}

	assert.Len(t, Query(nodes, nil, `type="NOTE"`).Nodes, 2)
	assert.Empty(t, Query(nodes, nil, `type="task"`).Nodes)
	assert.Equal(t, []string{"A"}, ids(Query(nodes, nil, `type="note" AND tag="x"`).Nodes))
}

func TestQuery_UnknownClauseIgnored(t *testing.T) {
	nodes := []models.Page{page("A", "x"), page("B")}
	res := Query(nodes, nil, `color="red" AND tag="x"`)
	assert.Equal(t, []string{"A"}, ids(res.Nodes))
}

func TestQuery_Out(t *testing.T) {
	nodes := []models.Page{page("A", "src"), page("B", "topic"), page("C"), page("D", "src")}
	edges := []models.Edge{
		link("A", "B"),
		{SrcPageID: "C", DstPageID: "B", Type: models.EdgeEmbed},
		link("D", "C"),
	}

	res := Query(nodes, edges, `out(type="LINK")->tag="Topic"`)
	assert.Equal(t, []string{"A"}, ids(res.Nodes))

	res = Query(nodes, edges, `out(type="embed")->tag="topic"`)
	assert.Equal(t, []string{"C"}, ids(res.Nodes))
}

func TestQuery_OutTargetsIgnoreEarlierFilters(t *testing.T) {
	// The target B is not tagged "src", yet out() still sees it.
	nodes := []models.Page{page("A", "src"), page("B", "topic")}
	edges := []models.Edge{link("A", "B")}

	res := Query(nodes, edges, `tag="src" AND out(type="link")->tag="topic"`)
	require.Len(t, res.Nodes, 1)
	assert.Equal(t, "A", res.Nodes[0].ID)
}

func TestQuery_OutNeverWidensCandidates(t *testing.T) {
	nodes := []models.Page{page("A"), page("B", "topic"), page("C", "x")}
	edges := []models.Edge{link("A", "B")}

	assert.Empty(t, Query(nodes, edges, `tag="x" AND out(type="link")->tag="topic"`).Nodes)
	assert.Equal(t, []string{"A"}, ids(Query(nodes, edges, `out(type="link")->tag="topic"`).Nodes))
}
