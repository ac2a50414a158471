// Package markdown extracts the link targets and title heading docgraph
// needs from a Markdown or MDX body.
package markdown

// Options controls how a body is analyzed.
type Options struct {
	// HTMLLinks also collects href targets of <a> elements found in raw HTML
	// and JSX blocks.
	HTMLLinks bool
}

type LinkKind string

const (
	LinkKindInline LinkKind = "inline"
	LinkKindImage  LinkKind = "image"
	LinkKindAuto   LinkKind = "auto"
	LinkKindHTML   LinkKind = "html"
)

type Link struct {
	Kind        LinkKind
	Destination string
}

// References reports whether the link can point at another content file.
// Images and autolinks never do.
func (l Link) References() bool {
	return l.Kind == LinkKindInline || l.Kind == LinkKindHTML
}

// Analysis is the result of a single parse of a body.
type Analysis struct {
	// Heading is the text of the first level-1 heading, or empty.
	Heading string
	Links   []Link
}
