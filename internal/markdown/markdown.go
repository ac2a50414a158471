package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Analyze parses body (front matter already removed) once and returns its
// first level-1 heading and link-like constructs in document order.
func Analyze(body []byte, opts Options) Analysis {
	root := goldmark.New().Parser().Parse(text.NewReader(body))

	var a Analysis
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *gmast.Heading:
			if node.Level == 1 && a.Heading == "" {
				a.Heading = headingText(node, body)
			}
		case *gmast.AutoLink:
			a.Links = append(a.Links, Link{Kind: LinkKindAuto, Destination: string(node.URL(body))})
		case *gmast.Image:
			a.Links = append(a.Links, Link{Kind: LinkKindImage, Destination: string(node.Destination)})
			return gmast.WalkSkipChildren, nil
		case *gmast.Link:
			// Reference-style links arrive here already resolved.
			a.Links = append(a.Links, Link{Kind: LinkKindInline, Destination: string(node.Destination)})
		case *gmast.RawHTML:
			if opts.HTMLLinks {
				a.Links = append(a.Links, ExtractHTMLLinks(segmentsBytes(node.Segments, body))...)
			}
		case *gmast.HTMLBlock:
			if opts.HTMLLinks {
				a.Links = append(a.Links, ExtractHTMLLinks(linesBytes(node, body))...)
			}
		}
		return gmast.WalkContinue, nil
	})

	a.Links = append(a.Links, extractPermissiveLinks(body)...)
	return a
}

// ExtractLinks returns every link-like construct found in body.
func ExtractLinks(body []byte, opts Options) []Link {
	return Analyze(body, opts).Links
}

// FirstHeading returns the text of the first level-1 heading in body.
func FirstHeading(body []byte) string {
	return Analyze(body, Options{}).Heading
}

func headingText(h *gmast.Heading, source []byte) string {
	var b strings.Builder
	_ = gmast.Walk(h, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func segmentsBytes(segs *text.Segments, source []byte) []byte {
	var buf bytes.Buffer
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.Bytes()
}

func linesBytes(n gmast.Node, source []byte) []byte {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	if hb, ok := n.(*gmast.HTMLBlock); ok && hb.HasClosure() {
		buf.Write(hb.ClosureLine.Value(source))
	}
	return buf.Bytes()
}
