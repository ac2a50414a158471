package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"
)

func buildNodes(ids ...string) []Node {
	b := defaultBuilder()
	nodes := make([]Node, len(ids))
	for i, id := range ids {
		nodes[i] = Node{ID: id, Path: b.URLPath(id, b.Category(id))}
	}
	return nodes
}

func TestTarget(t *testing.T) {
	tests := []struct {
		dest string
		want string
		ok   bool
	}{
		{"./b.md", "./b.md", true},
		{"b.md#section", "b.md", true},
		{"b.md?x=1#y", "b.md", true},
		{"#only-anchor", "", false},
		{"https://example.com", "", false},
		{"http://example.com/docs/a.md", "", false},
		{"//cdn.example.com/x", "", false},
		{"mailto:someone@example.com", "", false},
		{"tel:+123", "", false},
		{"getting%20started.md", "getting started.md", true},
		{"<spaced name.md>", "spaced name.md", true},
		{"  ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.dest, func(t *testing.T) {
			got, ok := target(tt.dest)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestResolver(t *testing.T) {
	nodes := buildNodes(
		"docs/intro.md",
		"docs/guide/index.md",
		"docs/guide/setup.mdx",
		"docs/topic/topic.md",
		"blog/2024/hello.md",
		"src/pages/about.md",
		"a.md",
		"b.md",
	)
	r := newResolver(nodes, testExts)

	tests := []struct {
		name   string
		source string
		dest   string
		want   string
		ok     bool
	}{
		{"exact id", "a.md", "./b.md", "b.md", true},
		{"sibling without ext", "docs/intro.md", "guide/setup", "docs/guide/setup.mdx", true},
		{"parent dir", "docs/guide/setup.mdx", "../intro.md", "docs/intro.md", true},
		{"directory index", "docs/intro.md", "./guide", "docs/guide/index.md", true},
		{"directory index trailing slash", "docs/intro.md", "guide/", "docs/guide/index.md", true},
		{"site rooted id", "blog/2024/hello.md", "/docs/intro.md", "docs/intro.md", true},
		{"site rooted url", "blog/2024/hello.md", "/docs/guide/setup", "docs/guide/setup.mdx", true},
		{"url of hub", "a.md", "/docs/topic/", "docs/topic/topic.md", true},
		{"url with leading slash added", "src/pages/about.md", "docs/intro", "docs/intro.md", true},
		{"page url", "docs/intro.md", "/about", "src/pages/about.md", true},
		{"relative url", "docs/guide/setup.mdx", "../topic", "docs/topic/topic.md", true},
		{"suffix url", "blog/2024/hello.md", "guide/setup", "docs/guide/setup.mdx", true},
		{"suffix needs segment boundary", "a.md", "etup", "", false},
		{"fragment stripped", "a.md", "b.md#part", "b.md", true},
		{"missing", "a.md", "./nope.md", "", false},
		{"escapes root", "a.md", "../../outside.md", "", false},
		{"external", "a.md", "https://example.com/b.md", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.resolve(tt.source, tt.dest)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_UnicodeNormalization(t *testing.T) {
	composed := norm.NFC.String("docs/café.md")
	decomposed := norm.NFD.String("./café.md")
	require.NotEqual(t, composed, norm.NFD.String(composed))

	r := newResolver(buildNodes(composed, "docs/a.md"), testExts)
	got, ok := r.resolve("docs/a.md", decomposed)
	require.True(t, ok)
	require.Equal(t, composed, got)
}

func TestInferReferences(t *testing.T) {
	nodes := buildNodes("a.md", "b.md", "c.md")
	links := map[string][]string{
		"a.md": {"./b.md", "https://example.com", "b.md#again", "a.md", "./missing.md", "#top"},
		"b.md": {"a.md"},
	}
	acc := newAccumulator()
	unresolved := inferReferences(nodes, links, testExts, acc)

	require.Equal(t, []Edge{
		{Source: "a.md", Target: "b.md", Kind: EdgeReferential, Weight: WeightReference},
		{Source: "b.md", Target: "a.md", Kind: EdgeReferential, Weight: WeightReference},
	}, acc.list())
	require.Equal(t, []UnresolvedLink{{Source: "a.md", Target: "./missing.md"}}, unresolved)
}

func TestInferReferences_ExternalOnly(t *testing.T) {
	nodes := buildNodes("a.md", "b.md")
	acc := newAccumulator()
	inferReferences(nodes, map[string][]string{"a.md": {"https://example.com"}}, testExts, acc)
	require.Empty(t, acc.list())
}
