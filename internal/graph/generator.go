package graph

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/inful/mdfp"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/docgraph/internal/discovery"
	"git.home.luguber.info/inful/docgraph/internal/frontmatter"
	"git.home.luguber.info/inful/docgraph/internal/logfields"
	"git.home.luguber.info/inful/docgraph/internal/markdown"
	"git.home.luguber.info/inful/docgraph/internal/metrics"
	"git.home.luguber.info/inful/docgraph/internal/util/sets"
)

// SkippedFile is a discovered file left out of the graph.
type SkippedFile struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// Skip reasons.
const (
	ReasonReadFailed        = "read_failed"
	ReasonFrontmatterFailed = "frontmatter_failed"
	ReasonDraft             = "draft"
)

// Report describes what a generation run saw besides the graph itself.
type Report struct {
	Discovered int
	Skipped    []SkippedFile
	Unresolved []UnresolvedLink
	Duration   time.Duration
}

// Failed returns the skipped files that failed to read or parse. Drafts are
// not failures.
func (r *Report) Failed() []SkippedFile {
	var out []SkippedFile
	for _, s := range r.Skipped {
		if s.Reason != ReasonDraft {
			out = append(out, s)
		}
	}
	return out
}

// Generator builds graphs for one site configuration. It holds no per-run
// state; Generate may be called repeatedly and concurrently.
type Generator struct {
	opts     Options
	builder  *NodeBuilder
	now      func() time.Time
	revision func(siteDir string) (string, error)
	recorder metrics.Recorder
}

// GeneratorOption customizes a Generator.
type GeneratorOption func(*Generator)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

// WithRevision sets the function that resolves the site's source revision.
// Its errors are logged and leave the revision empty.
func WithRevision(fn func(siteDir string) (string, error)) GeneratorOption {
	return func(g *Generator) { g.revision = fn }
}

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) GeneratorOption {
	return func(g *Generator) {
		if r != nil {
			g.recorder = r
		}
	}
}

func NewGenerator(opts Options, options ...GeneratorOption) *Generator {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	g := &Generator{
		opts:     opts,
		builder:  NewNodeBuilder(opts),
		now:      time.Now,
		recorder: metrics.NoopRecorder{},
	}
	for _, o := range options {
		o(g)
	}
	return g
}

// fileResult is the per-file output of the read phase.
type fileResult struct {
	file        discovery.File
	fields      frontmatter.Fields
	analysis    markdown.Analysis
	fingerprint string
	skip        *SkippedFile
}

// Generate discovers content, builds every node and infers both edge sets.
//
// Unreadable or unparseable files are skipped and listed in the report. An
// error is returned only for invalid configuration (bad patterns, missing
// site directory) or cancellation; in both cases no graph is produced.
func (g *Generator) Generate(ctx context.Context) (*Graph, *Report, error) {
	start := time.Now()

	files, err := g.discover(ctx)
	if err != nil {
		return nil, nil, err
	}

	results, err := g.read(ctx, files)
	if err != nil {
		return nil, nil, err
	}

	report := &Report{Discovered: len(files)}
	nodes := make([]Node, 0, len(results))
	links := make(map[string][]string, len(results))
	prints := make([]string, 0, len(results))
	for _, res := range results {
		if res.skip != nil {
			report.Skipped = append(report.Skipped, *res.skip)
			continue
		}
		nodes = append(nodes, g.builder.build(res.file.ID, res.fields, res.analysis.Heading))
		for _, l := range res.analysis.Links {
			if l.References() {
				links[res.file.ID] = append(links[res.file.ID], l.Destination)
			}
		}
		prints = append(prints, res.file.ID+":"+res.fingerprint)
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	ids := sets.New[string]()
	for _, n := range nodes {
		ids.Add(n.ID)
	}
	exts := g.opts.extensions()
	acc := newAccumulator()

	stage := time.Now()
	inferStructural(nodes, ids, exts, g.opts.MaxDepth, acc)
	g.recorder.ObserveStageDuration(metrics.StageStructural, time.Since(stage))

	stage = time.Now()
	report.Unresolved = inferReferences(nodes, links, exts, acc)
	g.recorder.ObserveStageDuration(metrics.StageReferences, time.Since(stage))

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	out := New(nodes, acc.list(), g.now())
	out.Metadata.SourceFingerprint = g.digest(prints)
	out.Metadata.SourceRevision = g.sourceRevision()

	report.Duration = time.Since(start)
	for _, u := range report.Unresolved {
		slog.Debug("Unresolved link", logfields.NodeID(u.Source), logfields.Target(u.Target))
	}
	slog.Info("Graph generated",
		logfields.Nodes(out.Metadata.TotalNodes),
		logfields.Links(out.Metadata.TotalLinks),
		logfields.Skipped(len(report.Skipped)),
		logfields.Unresolved(len(report.Unresolved)),
		logfields.DurationMS(float64(report.Duration.Microseconds())/1000))

	g.recorder.SetGraphSize(out.Metadata.TotalNodes, out.Metadata.TotalLinks)
	g.recorder.AddSkippedFiles(len(report.Failed()))
	g.recorder.AddUnresolvedLinks(len(report.Unresolved))
	return out, report, nil
}

func (g *Generator) discover(ctx context.Context) ([]discovery.File, error) {
	start := time.Now()
	defer func() { g.recorder.ObserveStageDuration(metrics.StageDiscover, time.Since(start)) }()

	d, err := discovery.New(g.opts.discoveryOptions())
	if err != nil {
		return nil, err
	}
	return d.Discover(ctx)
}

// read loads and parses every file, in parallel up to the configured
// concurrency. Results keep discovery order.
func (g *Generator) read(ctx context.Context, files []discovery.File) ([]fileResult, error) {
	start := time.Now()
	defer func() { g.recorder.ObserveStageDuration(metrics.StageRead, time.Since(start)) }()

	limit := g.opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]fileResult, len(files))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, f := range files {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			results[i] = g.readFile(f)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (g *Generator) readFile(f discovery.File) fileResult {
	res := fileResult{file: f}

	content, err := os.ReadFile(f.AbsPath)
	if err != nil {
		slog.Warn("Skipping unreadable content file", logfields.File(f.ID), logfields.Error(err))
		res.skip = &SkippedFile{ID: f.ID, Reason: ReasonReadFailed, Err: err}
		return res
	}

	raw, body, _, err := frontmatter.Split(content)
	if err == nil {
		res.fields, err = frontmatter.Decode(raw)
	}
	if err != nil {
		slog.Warn("Skipping file with invalid front matter", logfields.File(f.ID), logfields.Error(err))
		res.skip = &SkippedFile{ID: f.ID, Reason: ReasonFrontmatterFailed, Err: err}
		return res
	}

	if g.opts.ExcludeDrafts && res.fields.Draft {
		slog.Debug("Skipping draft", logfields.File(f.ID))
		res.skip = &SkippedFile{ID: f.ID, Reason: ReasonDraft}
		return res
	}

	res.analysis = markdown.Analyze(body, markdown.Options{HTMLLinks: g.opts.HTMLLinks})
	res.fingerprint = mdfp.CalculateFingerprintFromParts(strings.TrimRight(string(raw), "\r\n"), string(body))
	return res
}

// digest hashes the per-file fingerprints together with the options that
// shape the graph, so a configuration change also changes the digest.
func (g *Generator) digest(prints []string) string {
	sorted := append([]string(nil), prints...)
	sort.Strings(sorted)

	h := sha256.New()
	fmt.Fprintf(h, "roots=%v include=%v exclude=%v depth=%d html=%t drafts=%t exts=%v\n",
		g.opts.roots(), g.opts.IncludePatterns, g.opts.ExcludePatterns, g.opts.MaxDepth,
		g.opts.HTMLLinks, g.opts.ExcludeDrafts, g.opts.extensions())
	for _, p := range sorted {
		h.Write([]byte(p))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (g *Generator) sourceRevision() string {
	if g.revision == nil {
		return ""
	}
	rev, err := g.revision(g.opts.SiteDir)
	if err != nil {
		slog.Debug("Source revision unavailable", logfields.Path(g.opts.SiteDir), logfields.Error(err))
		return ""
	}
	return rev
}
