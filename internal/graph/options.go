package graph

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/docgraph/internal/discovery"
)

// Default content roots, relative to the site directory.
const (
	DefaultDocsRoot  = "docs"
	DefaultBlogRoot  = "blog"
	DefaultPagesRoot = "src/pages"
	DefaultMaxDepth  = 10
)

// Options is the input bundle of a generation run.
type Options struct {
	SiteDir   string
	DocsRoot  string
	BlogRoot  string
	PagesRoot string

	IncludeDocs  bool
	IncludeBlog  bool
	IncludePages bool

	IncludePatterns []string
	ExcludePatterns []string

	// MaxDepth bounds structural inference; nodes with more path segments
	// than this get no structural edges.
	MaxDepth int
	// Concurrency bounds parallel file reads. Zero or less means one per CPU.
	Concurrency int
	// HTMLLinks also scans raw HTML and JSX anchors for references.
	HTMLLinks bool
	// ExcludeDrafts drops files whose front matter sets draft: true.
	ExcludeDrafts bool
	// Extensions recognized as content; defaults to .md and .mdx.
	Extensions []string
}

// DefaultOptions scans all three roots of the site in siteDir.
func DefaultOptions(siteDir string) Options {
	return Options{
		SiteDir:      siteDir,
		DocsRoot:     DefaultDocsRoot,
		BlogRoot:     DefaultBlogRoot,
		PagesRoot:    DefaultPagesRoot,
		IncludeDocs:  true,
		IncludeBlog:  true,
		IncludePages: true,
		MaxDepth:     DefaultMaxDepth,
	}
}

func (o Options) extensions() []string {
	if len(o.Extensions) == 0 {
		return discovery.DefaultExtensions
	}
	return o.Extensions
}

// roots lists the enabled content roots in scan order.
func (o Options) roots() []string {
	var out []string
	if o.IncludeDocs && o.DocsRoot != "" {
		out = append(out, cleanRoot(o.DocsRoot))
	}
	if o.IncludeBlog && o.BlogRoot != "" {
		out = append(out, cleanRoot(o.BlogRoot))
	}
	if o.IncludePages && o.PagesRoot != "" {
		out = append(out, cleanRoot(o.PagesRoot))
	}
	return out
}

func (o Options) discoveryOptions() discovery.Options {
	return discovery.Options{
		SiteDir:         o.SiteDir,
		Roots:           o.roots(),
		IncludePatterns: o.IncludePatterns,
		ExcludePatterns: o.ExcludePatterns,
		Extensions:      o.extensions(),
	}
}

func cleanRoot(root string) string {
	if strings.TrimSpace(root) == "" {
		return ""
	}
	return strings.Trim(path.Clean(strings.ReplaceAll(root, "\\", "/")), "/")
}
