package graph

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/docgraph/internal/frontmatter"
	"git.home.luguber.info/inful/docgraph/internal/markdown"
)

// NodeBuilder turns one content file into a Node. It never fails: missing
// or malformed attributes fall back to defaults.
type NodeBuilder struct {
	docsRoot   string
	blogRoot   string
	pagesRoot  string
	extensions []string
}

func NewNodeBuilder(opts Options) *NodeBuilder {
	return &NodeBuilder{
		docsRoot:   cleanRoot(opts.DocsRoot),
		blogRoot:   cleanRoot(opts.BlogRoot),
		pagesRoot:  cleanRoot(opts.PagesRoot),
		extensions: opts.extensions(),
	}
}

// Build constructs the node for id from its decoded front matter and body.
func (b *NodeBuilder) Build(id string, fm frontmatter.Fields, body []byte) Node {
	return b.build(id, fm, markdown.FirstHeading(body))
}

func (b *NodeBuilder) build(id string, fm frontmatter.Fields, heading string) Node {
	category := b.Category(id)
	tags := fm.Tags
	if tags == nil {
		tags = []string{}
	}
	return Node{
		ID:       id,
		Title:    b.title(id, fm, heading),
		Path:     b.URLPath(id, category),
		Category: category,
		Metadata: NodeMetadata{
			Tags:        tags,
			Category:    fm.Category,
			Description: fm.Description,
			Date:        fm.Date,
			Author:      fm.Author,
		},
	}
}

// Category classifies id by root prefix. Docs are checked before blog;
// anything outside both is a standalone page.
func (b *NodeBuilder) Category(id string) Category {
	switch {
	case underRoot(id, b.docsRoot):
		return CategoryDoc
	case underRoot(id, b.blogRoot):
		return CategoryBlog
	default:
		return CategoryPage
	}
}

func (b *NodeBuilder) title(id string, fm frontmatter.Fields, heading string) string {
	for _, candidate := range []string{fm.Title, fm.SidebarLabel, heading} {
		if t := strings.TrimSpace(candidate); t != "" {
			return t
		}
	}
	return path.Base(b.stripExt(id))
}

// URLPath derives the site URL of id.
//
//	docs/guide/intro.md        -> /docs/guide/intro
//	docs/guide/index.md        -> /docs/guide
//	docs/topic/topic.md        -> /docs/topic
//	blog/2024/hello.md         -> /blog/2024/hello
//	src/pages/about.mdx        -> /about
//	src/pages/index.md         -> /
func (b *NodeBuilder) URLPath(id string, category Category) string {
	p := b.stripExt(id)
	switch category {
	case CategoryDoc:
		p = stripRoot(p, b.docsRoot)
	case CategoryPage:
		p = stripRoot(p, b.pagesRoot)
	}

	segments := splitSegments(p)
	if n := len(segments); n > 0 {
		last := segments[n-1]
		switch {
		case last == "index":
			segments = segments[:n-1]
		case n > 1 && last == segments[n-2]:
			segments = segments[:n-1]
		}
	}

	rest := strings.Join(segments, "/")
	if category == CategoryDoc {
		if rest == "" {
			return "/docs"
		}
		return "/docs/" + rest
	}
	return "/" + rest
}

func (b *NodeBuilder) stripExt(id string) string {
	ext := path.Ext(id)
	for _, e := range b.extensions {
		if strings.EqualFold(ext, e) {
			return strings.TrimSuffix(id, ext)
		}
	}
	return id
}

func underRoot(id, root string) bool {
	if root == "" {
		return false
	}
	if root == "." {
		return true
	}
	return id == root || strings.HasPrefix(id, root+"/")
}

func stripRoot(p, root string) string {
	if root == "" || root == "." {
		return p
	}
	if p == root {
		return ""
	}
	return strings.TrimPrefix(p, root+"/")
}

func splitSegments(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" && s != "." {
			out = append(out, s)
		}
	}
	return out
}
