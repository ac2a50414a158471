// Package graph builds the content graph of a documentation site: one node
// per content file, structural edges inferred from the directory layout and
// referential edges inferred from links between files.
package graph

import (
	"time"
)

// Category classifies a node by the content root it lives under.
type Category string

const (
	CategoryDoc  Category = "doc"
	CategoryBlog Category = "blog"
	CategoryPage Category = "page"
)

// EdgeKind distinguishes hierarchy edges from link edges.
type EdgeKind string

const (
	EdgeStructural  EdgeKind = "structural"
	EdgeReferential EdgeKind = "referential"
)

// Edge weights consumed by the layout engine.
const (
	WeightDirectoryHub = 0.8
	WeightAncestorHub  = 0.6
	WeightReference    = 0.5
)

// NodeMetadata carries optional descriptive attributes from front matter.
type NodeMetadata struct {
	Tags        []string `json:"tags"`
	Category    string   `json:"category,omitempty"`
	Description string   `json:"description,omitempty"`
	Date        string   `json:"date,omitempty"`
	Author      string   `json:"author,omitempty"`
}

// Node is one content file.
type Node struct {
	// ID is the site-relative file path and the join key for edges.
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Path     string       `json:"path"`
	Category Category     `json:"category"`
	Metadata NodeMetadata `json:"metadata"`
}

// Edge is a directed relationship between two node ids.
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"type"`
	Weight float64  `json:"weight"`
}

// Metadata summarizes a generated graph.
type Metadata struct {
	GeneratedAt       time.Time `json:"generatedAt"`
	TotalNodes        int       `json:"totalNodes"`
	TotalLinks        int       `json:"totalLinks"`
	SourceFingerprint string    `json:"sourceFingerprint,omitempty"`
	SourceRevision    string    `json:"sourceRevision,omitempty"`
}

// Graph is the immutable result of a generation run.
type Graph struct {
	Nodes    []Node   `json:"nodes"`
	Links    []Edge   `json:"links"`
	Metadata Metadata `json:"metadata"`
}

// New assembles a graph whose counts match its collections. Nil slices are
// replaced with empty ones so the JSON form always carries arrays.
func New(nodes []Node, links []Edge, generatedAt time.Time) *Graph {
	if nodes == nil {
		nodes = []Node{}
	}
	if links == nil {
		links = []Edge{}
	}
	return &Graph{
		Nodes: nodes,
		Links: links,
		Metadata: Metadata{
			GeneratedAt: generatedAt.UTC(),
			TotalNodes:  len(nodes),
			TotalLinks:  len(links),
		},
	}
}

// Empty returns a graph with no nodes and no links.
func Empty() *Graph {
	return New(nil, nil, time.Time{})
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
