// Package navtree converts a flat list of path-addressed pages into the
// nested Folder/Page tree consumed by the site navigation widget.
//
// The build runs in two phases. Phase one interns every path segment into
// an arena of nodes addressed by index, so revisiting a segment from a
// second page reuses the same slot instead of aliasing a map. Phase two
// walks the arena and emits immutable, sorted Node values.
package navtree

import (
	"cmp"
	"slices"
	"strings"

	"git.home.luguber.info/inful/pagepublisher/internal/content"
)

// Kind distinguishes folders (intermediate segments) from pages.
type Kind string

const (
	KindPage   Kind = "Page"
	KindFolder Kind = "Folder"
)

// Entry is the page projection the builder needs.
type Entry struct {
	ID          string
	Path        string
	NavLabel    string
	NavSort     float64
	UpdatedAt   string
	Description string
}

// EntryFromDocument projects a page record onto an Entry.
func EntryFromDocument(doc *content.Document) Entry {
	return Entry{
		ID:          doc.ID,
		Path:        doc.Path,
		NavLabel:    doc.NavLabel,
		NavSort:     doc.NavSort.Float64(),
		UpdatedAt:   doc.UpdatedAt,
		Description: doc.Description,
	}
}

// Node is one element of the output tree. Children is omitted from JSON
// when empty; the frontend widget treats a missing list as a leaf.
type Node struct {
	Label       string  `json:"label"`
	PathSegment string  `json:"pathSegment"`
	Kind        Kind    `json:"kind"`
	ID          string  `json:"id,omitempty"`
	NavSort     float64 `json:"navsort"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
	Description string  `json:"description,omitempty"`
	Children    []Node  `json:"children,omitempty"`
}

// Document is the navtree.json artifact shape.
type Document struct {
	NavTree []Node `json:"navTree"`
}

type arenaNode struct {
	segment  string
	page     *Entry
	children map[string]int
}

type arena struct {
	nodes []arenaNode
}

func (a *arena) child(parent int, segment string) int {
	if idx, ok := a.nodes[parent].children[segment]; ok {
		return idx
	}
	a.nodes = append(a.nodes, arenaNode{segment: segment})
	idx := len(a.nodes) - 1
	if a.nodes[parent].children == nil {
		a.nodes[parent].children = make(map[string]int)
	}
	a.nodes[parent].children[segment] = idx
	return idx
}

// Build returns the sorted forest for entries. It never fails: a path with
// no usable segments becomes a single top-level node.
func Build(entries []Entry) []Node {
	a := &arena{nodes: []arenaNode{{}}}
	for i := range entries {
		e := entries[i]
		node := 0
		for _, seg := range Segments(e) {
			node = a.child(node, seg)
		}
		if node == 0 {
			continue
		}
		// Duplicate paths resolve to the smallest id so input order never matters.
		if cur := a.nodes[node].page; cur == nil || e.ID < cur.ID {
			a.nodes[node].page = &e
		}
	}
	return a.emit(0)
}

// BuildFromDocuments is Build over page records.
func BuildFromDocuments(docs []*content.Document) []Node {
	entries := make([]Entry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, EntryFromDocument(d))
	}
	return Build(entries)
}

// Segments splits an entry's path on "/" dropping empty segments; the
// remaining segments are kept verbatim. Paths that yield nothing fall back
// to the raw path, then the id.
func Segments(e Entry) []string {
	var out []string
	for _, s := range strings.Split(e.Path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) > 0 {
		return out
	}
	switch {
	case e.Path != "":
		return []string{e.Path}
	case e.ID != "":
		return []string{e.ID}
	default:
		return nil
	}
}

func (a *arena) emit(idx int) []Node {
	kids := a.nodes[idx].children
	if len(kids) == 0 {
		return nil
	}
	out := make([]Node, 0, len(kids))
	for _, childIdx := range kids {
		out = append(out, a.toNode(childIdx))
	}
	slices.SortFunc(out, func(x, y Node) int {
		if c := cmp.Compare(x.NavSort, y.NavSort); c != 0 {
			return c
		}
		return strings.Compare(x.PathSegment, y.PathSegment)
	})
	return out
}

func (a *arena) toNode(idx int) Node {
	n := a.nodes[idx]
	node := Node{
		Label:       n.segment,
		PathSegment: n.segment,
		Kind:        KindFolder,
		Children:    a.emit(idx),
	}
	if p := n.page; p != nil {
		node.Kind = KindPage
		node.ID = p.ID
		node.NavSort = p.NavSort
		node.UpdatedAt = p.UpdatedAt
		node.Description = p.Description
		if p.NavLabel != "" {
			node.Label = p.NavLabel
		}
	}
	return node
}
