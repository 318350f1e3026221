package graph

import (
	"regexp"
	"strings"

	"github.com/RoaringBitmap/roaring"

	"github.com/starford/bidinote/internal/models"
)

var outRe = regexp.MustCompile(`^out\(type="([^"]+)"\)->tag="([^"]+)"$`)

// Query filters nodes with a conjunctive expression of the form
//
//	type="note" AND tag="x" AND out(type="link")->tag="y"
//
// Clauses are separated by " AND " and applied in order, each narrowing
// the current survivors. type= keeps everything only for "note"; tag=
// keeps nodes carrying the tag; out(...) keeps nodes with an outgoing edge
// of that type to a node with that tag, where targets and edges come from
// the full, unfiltered snapshot. Tag and type comparisons ignore case.
// Unknown clauses are ignored. The returned edges are those touching any
// surviving node. A blank expression returns the input unchanged.
func Query(nodes []models.Page, edges []models.Edge, expr string) Result {
	if strings.TrimSpace(expr) == "" {
		return Result{Nodes: nodes, Edges: edges}
	}

	candidates := roaring.New()
	candidates.AddRange(0, uint64(len(nodes)))

	for _, clause := range strings.Split(expr, " AND ") {
		clause = strings.TrimSpace(clause)
		switch {
		case strings.HasPrefix(clause, "type="):
			value := strings.ToLower(unquote(strings.TrimPrefix(clause, "type=")))
			if value != "note" {
				candidates.Clear()
			}
		case strings.HasPrefix(clause, "tag="):
			candidates.And(tagged(nodes, unquote(strings.TrimPrefix(clause, "tag="))))
		default:
			m := outRe.FindStringSubmatch(clause)
			if m == nil {
				continue
			}
			candidates.And(linkingTo(nodes, edges, m[1], m[2]))
		}
	}

	res := Result{Nodes: []models.Page{}, Edges: []models.Edge{}}
	kept := make(map[string]bool, candidates.GetCardinality())
	it := candidates.Iterator()
	for it.HasNext() {
		p := nodes[it.Next()]
		res.Nodes = append(res.Nodes, p)
		kept[p.ID] = true
	}
	for _, e := range edges {
		if kept[e.SrcPageID] || kept[e.DstPageID] {
			res.Edges = append(res.Edges, e)
		}
	}
	return res
}

func unquote(v string) string {
	return strings.ReplaceAll(v, `"`, "")
}

// tagged returns the positions of nodes carrying tag.
func tagged(nodes []models.Page, tag string) *roaring.Bitmap {
	bm := roaring.New()
	for i, p := range nodes {
		if p.HasTag(tag) {
			bm.Add(uint32(i))
		}
	}
	return bm
}

// linkingTo returns the positions of nodes that are the source of an edge
// of edgeType pointing at a node tagged targetTag.
func linkingTo(nodes []models.Page, edges []models.Edge, edgeType, targetTag string) *roaring.Bitmap {
	targets := make(map[string]bool)
	for _, p := range nodes {
		if p.HasTag(targetTag) {
			targets[p.ID] = true
		}
	}
	sources := make(map[string]bool)
	for _, e := range edges {
		if strings.EqualFold(e.Type, edgeType) && targets[e.DstPageID] {
			sources[e.SrcPageID] = true
		}
	}
	bm := roaring.New()
	for i, p := range nodes {
		if sources[p.ID] {
			bm.Add(uint32(i))
		}
	}
	return bm
}
