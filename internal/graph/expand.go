// Package graph answers structural questions over a page/edge snapshot:
// neighbourhood expansion and the filter query language.
package graph

import (
	"github.com/starford/bidinote/internal/models"
)

// Result is a selected subgraph.
type Result struct {
	Nodes []models.Page `json:"nodes"`
	Edges []models.Edge `json:"edges"`
}

// incidence lists, per page ID, the indices of the edges touching it.
func incidence(edges []models.Edge) map[string][]int {
	inc := make(map[string][]int)
	for i, e := range edges {
		inc[e.SrcPageID] = append(inc[e.SrcPageID], i)
		if e.DstPageID != e.SrcPageID {
			inc[e.DstPageID] = append(inc[e.DstPageID], i)
		}
	}
	return inc
}

// Expand walks breadth-first from anchor for depth+1 layers (layer 0 is
// the anchor itself).
//
// Every dequeued page is selected. A page whose degree in the full edge
// set is at least degreeThreshold opens: its edges join the result and
// its unvisited neighbours are queued for the next layer. Pages below the
// threshold stay selected but stop there. An edge reached from both of its
// opened endpoints is reported once; earlier releases reported it twice.
// Selected IDs with no page in nodes are dropped.
func Expand(anchor models.Page, nodes []models.Page, edges []models.Edge, depth, degreeThreshold int) Result {
	byID := models.PagesByID(nodes)
	inc := incidence(edges)

	visited := map[string]bool{anchor.ID: true}
	collected := make(map[int]bool)
	var selected []string
	var selectedEdges []models.Edge

	queue := []string{anchor.ID}
	for layer := 0; len(queue) > 0 && layer <= depth; layer++ {
		var next []string
		for _, id := range queue {
			selected = append(selected, id)
			touching := inc[id]
			if len(touching) < degreeThreshold {
				continue
			}
			for _, ei := range touching {
				e := edges[ei]
				if !collected[ei] {
					collected[ei] = true
					selectedEdges = append(selectedEdges, e)
				}
				other := e.Other(id)
				if !visited[other] {
					visited[other] = true
					next = append(next, other)
				}
			}
		}
		queue = next
	}

	res := Result{Nodes: []models.Page{}, Edges: selectedEdges}
	if res.Edges == nil {
		res.Edges = []models.Edge{}
	}
	for _, id := range selected {
		if p, ok := byID[id]; ok {
			res.Nodes = append(res.Nodes, p)
		}
	}
	return res
}
