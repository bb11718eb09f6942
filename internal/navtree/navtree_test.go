package navtree

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagepublisher/internal/content"
)

func TestBuildBlogExample(t *testing.T) {
	tree := Build([]Entry{
		{ID: "p2", Path: "blog/2024/post-b", NavSort: 2},
		{ID: "p1", Path: "blog/2024/post-a", NavSort: 1},
	})

	require.Len(t, tree, 1)
	blog := tree[0]
	assert.Equal(t, KindFolder, blog.Kind)
	assert.Equal(t, "blog", blog.PathSegment)

	require.Len(t, blog.Children, 1)
	year := blog.Children[0]
	assert.Equal(t, KindFolder, year.Kind)
	assert.Equal(t, "2024", year.Label)

	require.Len(t, year.Children, 2)
	assert.Equal(t, "post-a", year.Children[0].PathSegment)
	assert.Equal(t, "p1", year.Children[0].ID)
	assert.Equal(t, KindPage, year.Children[0].Kind)
	assert.Equal(t, "post-b", year.Children[1].PathSegment)
}

func TestFolderReclassifiedAsPage(t *testing.T) {
	tree := Build([]Entry{
		{ID: "child", Path: "docs/intro"},
		{ID: "docs", Path: "docs", NavLabel: "Documentation", Description: "all docs"},
	})

	require.Len(t, tree, 1)
	assert.Equal(t, KindPage, tree[0].Kind)
	assert.Equal(t, "Documentation", tree[0].Label)
	assert.Equal(t, "docs", tree[0].PathSegment)
	assert.Equal(t, "all docs", tree[0].Description)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "child", tree[0].Children[0].ID)
}

func TestLabelFallbackAndSortDefault(t *testing.T) {
	tree := Build([]Entry{
		{ID: "b", Path: "/about/", NavSort: 5},
		{ID: "h", Path: "home"},
	})

	require.Len(t, tree, 2)
	assert.Equal(t, "home", tree[0].Label, "missing navsort sorts as 0")
	assert.Equal(t, "about", tree[1].Label)
}

func TestMalformedPathsDegrade(t *testing.T) {
	tree := Build([]Entry{
		{ID: "slash", Path: "///"},
		{ID: "noid", Path: ""},
		{ID: "dbl", Path: "a//b"},
	})

	labels := make([]string, 0, len(tree))
	for _, n := range tree {
		labels = append(labels, n.PathSegment)
	}
	assert.ElementsMatch(t, []string{"///", "noid", "a"}, labels)
}

func TestSegmentsKeptVerbatim(t *testing.T) {
	assert.Equal(t, []string{" docs", "intro "}, Segments(Entry{Path: "/ docs/intro /"}))

	tree := Build([]Entry{
		{ID: "spaced", Path: " docs"},
		{ID: "plain", Path: "docs"},
	})
	require.Len(t, tree, 2, "segments differing only by whitespace are distinct nodes")
	assert.ElementsMatch(t, []string{" docs", "docs"}, []string{tree[0].PathSegment, tree[1].PathSegment})
}

func TestNavSortFromNonNumericStringEncodes(t *testing.T) {
	var doc content.Document
	require.NoError(t, json.Unmarshal([]byte(`{"id":"p1","otype":"Page","path":"about","navsort":"NaN"}`), &doc))

	tree := BuildFromDocuments([]*content.Document{&doc})
	b, err := json.Marshal(Document{NavTree: tree})
	require.NoError(t, err)
	assert.JSONEq(t, `{"navTree":[{"label":"about","pathSegment":"about","kind":"Page","id":"p1","navsort":0}]}`, string(b))
}

func TestEmptyChildrenOmittedFromJSON(t *testing.T) {
	tree := Build([]Entry{{ID: "p", Path: "solo"}})
	b, err := json.Marshal(Document{NavTree: tree})
	require.NoError(t, err)
	assert.JSONEq(t, `{"navTree":[{"label":"solo","pathSegment":"solo","kind":"Page","id":"p","navsort":0}]}`, string(b))
}

func TestBuildIsPermutationInvariant(t *testing.T) {
	entries := []Entry{
		{ID: "1", Path: "a/x", NavSort: 3},
		{ID: "2", Path: "a/y", NavSort: 1},
		{ID: "3", Path: "a/z", NavSort: 1},
		{ID: "4", Path: "b", NavSort: -1},
		{ID: "5", Path: "a", NavSort: 2},
		{ID: "6", Path: "c/d/e/f"},
		{ID: "7", Path: "c/d"},
		{ID: "8", Path: "a/x"},
	}
	want := Build(entries)

	r := rand.New(rand.NewSource(42))
	for range 25 {
		shuffled := append([]Entry(nil), entries...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, Build(shuffled))
	}
	// Rebuilding from the output order is stable too.
	assert.Equal(t, want, Build(entries))
	assert.Equal(t, "1", want[2].Children[2].ID, "duplicate path keeps the smallest id")
}

func TestBuildEmpty(t *testing.T) {
	assert.Nil(t, Build(nil))
}
