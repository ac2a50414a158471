package discovery

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Pattern is a validated slash-separated glob.
//
// Supported syntax is doublestar's: `*` (any run within one segment), `?`
// (one character within a segment), `**` (any number of segments), `{a,b}`
// (alternation) and `[...]` classes. A pattern without a slash matches the
// base name at any depth.
type Pattern struct {
	raw      string
	baseOnly bool
}

// Compile validates glob and returns a Pattern.
func Compile(glob string) (Pattern, error) {
	glob = strings.TrimPrefix(strings.TrimSpace(glob), "./")
	if glob == "" {
		return Pattern{}, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}
	if !doublestar.ValidatePattern(glob) {
		return Pattern{}, fmt.Errorf("%w: %s", ErrInvalidPattern, glob)
	}
	return Pattern{raw: glob, baseOnly: !strings.Contains(glob, "/")}, nil
}

// CompileAll compiles every glob, failing on the first invalid one.
func CompileAll(globs []string) ([]Pattern, error) {
	out := make([]Pattern, 0, len(globs))
	for _, g := range globs {
		p, err := Compile(g)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Match reports whether the slash-separated relative path matches.
func (p Pattern) Match(rel string) bool {
	if p.raw == "" {
		return false
	}
	if p.baseOnly {
		rel = path.Base(rel)
	}
	// The pattern was validated in Compile, so the error is always nil.
	ok, _ := doublestar.Match(p.raw, rel)
	return ok
}

func (p Pattern) String() string { return p.raw }

func matchAny(patterns []Pattern, rel string) bool {
	for _, p := range patterns {
		if p.Match(rel) {
			return true
		}
	}
	return false
}
