// Package discovery locates the content files a graph is built from.
package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docgraph/internal/logfields"
	"git.home.luguber.info/inful/docgraph/internal/util/sets"
)

// DefaultExtensions are the content file extensions recognized by default.
var DefaultExtensions = []string{".md", ".mdx"}

// File is one discovered content file.
type File struct {
	// ID is the path relative to the site directory, slash separated.
	ID string
	// AbsPath is the location on disk.
	AbsPath string
	// Root is the configured content root the file was found under, or
	// empty when it was found through an include pattern.
	Root string
}

// Options configures a Discoverer.
type Options struct {
	SiteDir string
	// Roots are walked in order; each is relative to SiteDir.
	Roots           []string
	IncludePatterns []string
	ExcludePatterns []string
	// Extensions defaults to DefaultExtensions.
	Extensions []string
}

// Discoverer walks content roots and include patterns.
type Discoverer struct {
	siteDir    string
	roots      []string
	includes   []Pattern
	excludes   []Pattern
	extensions sets.Set[string]
}

// New compiles the configured patterns.
func New(opts Options) (*Discoverer, error) {
	includes, err := CompileAll(opts.IncludePatterns)
	if err != nil {
		return nil, err
	}
	excludes, err := CompileAll(opts.ExcludePatterns)
	if err != nil {
		return nil, err
	}
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	extSet := sets.New[string]()
	for _, e := range exts {
		extSet.Add(strings.ToLower(e))
	}
	return &Discoverer{
		siteDir:    opts.SiteDir,
		roots:      opts.Roots,
		includes:   includes,
		excludes:   excludes,
		extensions: extSet,
	}, nil
}

// Discover returns every eligible file in discovery order: roots in the
// configured order (lexical inside each), then include-pattern matches.
// A file reachable both ways is reported once. An empty result is not an
// error.
func (d *Discoverer) Discover(ctx context.Context) ([]File, error) {
	if info, err := os.Stat(d.siteDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrSiteDirNotFound, d.siteDir)
	}

	seen := sets.New[string]()
	var files []File

	for _, root := range d.roots {
		root = path.Clean(filepath.ToSlash(root))
		rootDir := filepath.Join(d.siteDir, filepath.FromSlash(root))
		if info, err := os.Stat(rootDir); err != nil || !info.IsDir() {
			slog.Warn("Content root not found", logfields.Root(root), logfields.Path(rootDir))
			continue
		}

		before := len(files)
		err := d.walk(ctx, rootDir, func(id, abs string) {
			if seen.Has(id) || matchAny(d.excludes, id) {
				return
			}
			seen.Add(id)
			files = append(files, File{ID: id, AbsPath: abs, Root: root})
		})
		if err != nil {
			return nil, err
		}
		slog.Debug("Content root discovered", logfields.Root(root), slog.Int("files", len(files)-before))
	}

	if len(d.includes) > 0 {
		err := d.walk(ctx, d.siteDir, func(id, abs string) {
			if seen.Has(id) || !matchAny(d.includes, id) || matchAny(d.excludes, id) {
				return
			}
			seen.Add(id)
			files = append(files, File{ID: id, AbsPath: abs})
		})
		if err != nil {
			return nil, err
		}
	}

	slog.Info("Content discovery complete", logfields.Path(d.siteDir), slog.Int("files", len(files)))
	return files, nil
}

// walk visits supported, non-hidden files under dir in lexical order. Errors
// on individual entries are logged and skipped.
func (d *Discoverer) walk(ctx context.Context, dir string, visit func(id, abs string)) error {
	err := filepath.WalkDir(dir, func(p string, entry fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == dir {
				return err
			}
			slog.Warn("Skipping unreadable path", logfields.Path(p), logfields.Error(err))
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		name := entry.Name()
		if entry.IsDir() {
			if p != dir && (isHidden(name) || name == "node_modules") {
				return fs.SkipDir
			}
			return nil
		}
		if isHidden(name) || !d.extensions.Has(strings.ToLower(filepath.Ext(name))) {
			return nil
		}
		if !entry.Type().IsRegular() && entry.Type()&fs.ModeSymlink == 0 {
			return nil
		}

		rel, relErr := filepath.Rel(d.siteDir, p)
		if relErr != nil {
			slog.Warn("Skipping file outside site directory", logfields.Path(p), logfields.Error(relErr))
			return nil
		}
		visit(filepath.ToSlash(rel), p)
		return nil
	})
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %s: %w", ErrRootWalkFailed, dir, err)
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
