package frontmatter

import (
	"fmt"
	"strings"
	"time"
)

// Fields is the typed subset of front matter docgraph reads. Every field is
// optional; the zero value means "not declared".
type Fields struct {
	Title        string
	SidebarLabel string
	Tags         []string
	Category     string
	Description  string
	Date         string
	Author       string
	Draft        bool
}

// dateLayout renders YAML timestamps; bare dates keep their original form.
const dateLayout = "2006-01-02"

// Decode parses raw front matter into Fields. Only malformed YAML is an
// error; fields with unexpected shapes fall back to their zero value.
func Decode(raw []byte) (Fields, error) {
	m, err := ParseYAML(raw)
	if err != nil {
		return Fields{}, err
	}
	return FromMap(m), nil
}

// FromMap extracts Fields from an already parsed front matter map.
func FromMap(m map[string]any) Fields {
	f := Fields{
		Title:        scalar(m["title"]),
		SidebarLabel: scalar(m["sidebar_label"]),
		Tags:         tags(m["tags"]),
		Description:  scalar(m["description"]),
		Date:         date(m["date"]),
		Author:       author(m),
		Draft:        truthy(m["draft"]),
	}

	switch c := m["category"].(type) {
	case []any:
		if len(c) > 0 {
			f.Category = scalar(c[0])
		}
	default:
		f.Category = scalar(c)
	}
	return f
}

func scalar(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case int, int64, float64, uint64:
		return fmt.Sprint(s)
	case bool:
		if s {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	default:
		return false
	}
}

func date(v any) string {
	switch d := v.(type) {
	case time.Time:
		if d.Hour() == 0 && d.Minute() == 0 && d.Second() == 0 && d.Nanosecond() == 0 {
			return d.Format(dateLayout)
		}
		return d.UTC().Format(time.RFC3339)
	default:
		return scalar(d)
	}
}

// tags accepts "a", "a, b", [a, b] or [{label: a}] and returns a de-duplicated
// list in order of first appearance.
func tags(v any) []string {
	var raw []string
	switch t := v.(type) {
	case string:
		raw = strings.Split(t, ",")
	case []any:
		for _, item := range t {
			switch it := item.(type) {
			case map[string]any:
				raw = append(raw, scalar(it["label"]))
			default:
				raw = append(raw, scalar(it))
			}
		}
	}

	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func author(m map[string]any) string {
	if a := authorName(m["author"]); a != "" {
		return a
	}
	switch list := m["authors"].(type) {
	case []any:
		for _, entry := range list {
			if a := authorName(entry); a != "" {
				return a
			}
		}
	default:
		return authorName(list)
	}
	return ""
}

func authorName(v any) string {
	if obj, ok := v.(map[string]any); ok {
		return scalar(obj["name"])
	}
	return scalar(v)
}
