package markdown

import "strings"

// extractPermissiveLinks finds inline links whose destination contains
// whitespace, e.g. [Setup](getting started.md). CommonMark rejects those but
// authors write them and static site generators often accept them.
func extractPermissiveLinks(body []byte) []Link {
	var out []Link
	fence := ""
	for _, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(line)
		if f := fenceMarker(trimmed); f != "" {
			switch fence {
			case "":
				fence = f
			case f:
				fence = ""
			}
			continue
		}
		if fence != "" || strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
			continue
		}
		out = append(out, spacedInlineLinks(stripCodeSpans(line))...)
	}
	return out
}

func fenceMarker(trimmed string) string {
	for _, f := range []string{"```", "~~~"} {
		if strings.HasPrefix(trimmed, f) {
			return f
		}
	}
	return ""
}

func spacedInlineLinks(line string) []Link {
	var out []Link
	for i := 0; i+1 < len(line); i++ {
		if line[i] != ']' || line[i+1] != '(' {
			continue
		}
		open := strings.LastIndexByte(line[:i], '[')
		if open < 0 || (open > 0 && line[open-1] == '!') {
			continue
		}
		end := strings.IndexByte(line[i+2:], ')')
		if end < 0 {
			continue
		}
		dest := line[i+2 : i+2+end]
		if strings.ContainsAny(dest, " \t") && !strings.HasPrefix(dest, "<") && !hasTitle(dest) {
			out = append(out, Link{Kind: LinkKindInline, Destination: strings.TrimSpace(dest)})
		}
		i += 2 + end
	}
	return out
}

// hasTitle reports a CommonMark destination followed by a quoted title, which
// goldmark already handles.
func hasTitle(dest string) bool {
	d := strings.TrimSpace(dest)
	if len(d) == 0 {
		return false
	}
	last := d[len(d)-1]
	return last == '"' || last == '\''
}

func stripCodeSpans(s string) string {
	if !strings.Contains(s, "`") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '`' {
			b.WriteByte(s[i])
			i++
			continue
		}
		run := 1
		for i+run < len(s) && s[i+run] == '`' {
			run++
		}
		marker := s[i : i+run]
		closeAt := strings.Index(s[i+run:], marker)
		if closeAt < 0 {
			b.WriteString(marker)
			i += run
			continue
		}
		i += run + closeAt + run
	}
	return b.String()
}
