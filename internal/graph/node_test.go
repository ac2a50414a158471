package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docgraph/internal/frontmatter"
)

func defaultBuilder() *NodeBuilder {
	return NewNodeBuilder(DefaultOptions("."))
}

func TestNodeBuilder_Category(t *testing.T) {
	b := defaultBuilder()
	require.Equal(t, CategoryDoc, b.Category("docs/intro.md"))
	require.Equal(t, CategoryDoc, b.Category("docs/a/b/c.mdx"))
	require.Equal(t, CategoryBlog, b.Category("blog/2024-01-01-post.md"))
	require.Equal(t, CategoryPage, b.Category("src/pages/about.md"))
	require.Equal(t, CategoryPage, b.Category("docsextra/x.md"))
	require.Equal(t, CategoryPage, b.Category("notes/blog/x.md"))
}

func TestNodeBuilder_Title(t *testing.T) {
	b := defaultBuilder()

	n := b.Build("docs/a.md", frontmatter.Fields{Title: "Alpha", SidebarLabel: "A"}, []byte("# Heading\n"))
	require.Equal(t, "Alpha", n.Title)

	n = b.Build("docs/a.md", frontmatter.Fields{SidebarLabel: "Side"}, []byte("# Heading\n"))
	require.Equal(t, "Side", n.Title)

	n = b.Build("docs/a.md", frontmatter.Fields{}, []byte("Intro\n\n# Beta\n\n# Later\n"))
	require.Equal(t, "Beta", n.Title)

	n = b.Build("docs/getting-started.mdx", frontmatter.Fields{Title: "   "}, []byte("no heading\n"))
	require.Equal(t, "getting-started", n.Title)
}

func TestNodeBuilder_URLPath(t *testing.T) {
	b := defaultBuilder()
	tests := []struct {
		id   string
		want string
	}{
		{"docs/intro.md", "/docs/intro"},
		{"docs/guide/setup.mdx", "/docs/guide/setup"},
		{"docs/guide/index.md", "/docs/guide"},
		{"docs/guide/README.md", "/docs/guide/README"},
		{"docs/guide/readme.md", "/docs/guide/readme"},
		{"docs/guide/Index.md", "/docs/guide/Index"},
		{"docs/topic/topic.md", "/docs/topic"},
		{"docs/index.md", "/docs"},
		{"docs/docs.md", "/docs/docs"},
		{"blog/2024/hello.md", "/blog/2024/hello"},
		{"blog/index.md", "/blog"},
		{"blog/release/release.md", "/blog/release"},
		{"src/pages/about.md", "/about"},
		{"src/pages/index.md", "/"},
		{"src/pages/team/index.mdx", "/team"},
		{"extra/notes.md", "/extra/notes"},
		{"index.md", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			require.Equal(t, tt.want, b.URLPath(tt.id, b.Category(tt.id)))
		})
	}
}

func TestNodeBuilder_CustomRoots(t *testing.T) {
	b := NewNodeBuilder(Options{DocsRoot: "content/docs/", BlogRoot: "news", PagesRoot: "site"})
	require.Equal(t, CategoryDoc, b.Category("content/docs/x.md"))
	require.Equal(t, "/docs/x", b.URLPath("content/docs/x.md", CategoryDoc))
	require.Equal(t, CategoryBlog, b.Category("news/a.md"))
	require.Equal(t, "/news/a", b.URLPath("news/a.md", CategoryBlog))
	require.Equal(t, "/contact", b.URLPath("site/contact.md", CategoryPage))
}

func TestNodeBuilder_Metadata(t *testing.T) {
	b := defaultBuilder()
	n := b.Build("blog/post.md", frontmatter.Fields{
		Tags:        []string{"go"},
		Category:    "News",
		Description: "d",
		Date:        "2024-01-01",
		Author:      "Ann",
	}, nil)
	require.Equal(t, NodeMetadata{Tags: []string{"go"}, Category: "News", Description: "d", Date: "2024-01-01", Author: "Ann"}, n.Metadata)

	n = b.Build("blog/post.md", frontmatter.Fields{}, nil)
	require.NotNil(t, n.Metadata.Tags)
	require.Empty(t, n.Metadata.Tags)
}
