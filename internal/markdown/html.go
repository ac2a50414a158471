package markdown

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// ExtractHTMLLinks returns the href of every <a> start tag in fragment.
// Malformed markup is tolerated; the tokenizer stops at the first error.
func ExtractHTMLLinks(fragment []byte) []Link {
	var out []Link
	z := html.NewTokenizer(bytes.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return out
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			// The tokenizer lowercases names, so JSX <Link to="..."> arrives as "link".
			want := ""
			switch string(name) {
			case "a":
				want = "href"
			case "link":
				want = "to"
			default:
				continue
			}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == want {
					if dest := strings.TrimSpace(string(val)); dest != "" {
						out = append(out, Link{Kind: LinkKindHTML, Destination: dest})
					}
				}
			}
		}
	}
}
