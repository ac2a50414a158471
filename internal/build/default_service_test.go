package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docgraph/internal/eventstore"
	derrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/graph"
	"git.home.luguber.info/inful/docgraph/internal/metrics"
	"git.home.luguber.info/inful/docgraph/internal/publish"
	"git.home.luguber.info/inful/docgraph/internal/storage"
)

func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	site := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(site, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	return site
}

func basicSite(t *testing.T) string {
	return writeSite(t, map[string]string{
		"docs/index.md":     "# Home\n\n[setup](setup.md)\n",
		"docs/setup.md":     "# Setup\n",
		"docs/broken.md":    "---\ntitle: [oops\n---\n",
		"blog/2024-post.md": "# Post\n\n[home](/docs)\n",
	})
}

func newHistory(t *testing.T) *eventstore.History {
	t.Helper()
	store, err := eventstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	h := eventstore.NewHistory(store, 50)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("run-%d", n)
	}
}

type outcomeRecorder struct {
	metrics.NoopRecorder
	outcomes []metrics.OutcomeLabel
}

func (r *outcomeRecorder) IncGenerationOutcome(o metrics.OutcomeLabel) {
	r.outcomes = append(r.outcomes, o)
}

type fakePublisher struct {
	calls int
	err   error
}

func (f *fakePublisher) Publish(_ context.Context, runID string, g *graph.Graph) (*publish.GraphPublishedEvent, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	evt := publish.NewGraphPublishedEvent(runID, "b", "k", 1, g, time.Now())
	return &evt, nil
}

func (f *fakePublisher) Close() error { return nil }

func TestRun_PersistsAndRecords(t *testing.T) {
	site := basicSite(t)
	out := filepath.Join(t.TempDir(), "graph.json")
	store, err := storage.NewFileStore([]string{out}, false)
	require.NoError(t, err)
	history := newHistory(t)
	rec := &outcomeRecorder{}
	pub := &fakePublisher{}

	svc := NewService(graph.DefaultOptions(site), store).
		WithHistory(history).
		WithPublisher(pub).
		WithRecorder(rec).
		WithRunIDs(sequentialIDs())

	res, err := svc.Run(context.Background(), Request{Trigger: TriggerCLI})
	require.NoError(t, err)
	require.Equal(t, "run-1", res.RunID)
	require.Equal(t, StatusPartial, res.Status)
	require.Equal(t, []string{out}, res.Outputs)
	require.True(t, res.Published)
	require.Equal(t, 1, pub.calls)
	require.Equal(t, []metrics.OutcomeLabel{metrics.OutcomePartial}, rec.outcomes)

	saved, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, res.Graph.Metadata.TotalNodes, saved.Metadata.TotalNodes)
	require.Equal(t, 3, saved.Metadata.TotalNodes)

	run, ok := history.Projection().Run("run-1")
	require.True(t, ok)
	require.Equal(t, eventstore.StatusCompleted, run.Status)
	require.Equal(t, "cli", run.Trigger)
	require.Equal(t, []string{"docs/broken.md"}, run.SkippedFiles)
	require.Equal(t, res.Graph.Metadata.SourceFingerprint, run.Fingerprint)
}

func TestRun_SkipIfUnchanged(t *testing.T) {
	site := basicSite(t)
	out := filepath.Join(t.TempDir(), "graph.json")
	store, err := storage.NewFileStore([]string{out}, true)
	require.NoError(t, err)
	history := newHistory(t)
	rec := &outcomeRecorder{}
	svc := NewService(graph.DefaultOptions(site), store).
		WithHistory(history).
		WithRecorder(rec).
		WithRunIDs(sequentialIDs())

	ctx := context.Background()
	_, err = svc.Run(ctx, Request{SkipIfUnchanged: true})
	require.NoError(t, err)
	before, err := os.Stat(out)
	require.NoError(t, err)

	res, err := svc.Run(ctx, Request{SkipIfUnchanged: true})
	require.NoError(t, err)
	require.Equal(t, StatusUnchanged, res.Status)
	require.Contains(t, res.SkipReason, "run-1")
	after, err := os.Stat(out)
	require.NoError(t, err)
	require.Equal(t, before.ModTime(), after.ModTime())

	run, ok := history.Projection().Run(res.RunID)
	require.True(t, ok)
	require.Equal(t, eventstore.StatusUnchanged, run.Status)

	t.Run("missing output forces a write", func(t *testing.T) {
		require.NoError(t, os.Remove(out))
		res, err := svc.Run(ctx, Request{SkipIfUnchanged: true})
		require.NoError(t, err)
		require.NotEqual(t, StatusUnchanged, res.Status)
		require.FileExists(t, out)
	})

	t.Run("content change forces a write", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(site, "docs", "setup.md"), []byte("# Setup v2\n"), 0o600))
		res, err := svc.Run(ctx, Request{SkipIfUnchanged: true})
		require.NoError(t, err)
		require.Equal(t, StatusPartial, res.Status)
	})

	require.Contains(t, rec.outcomes, metrics.OutcomeUnchanged)
}

func TestRun_SkipIfUnchangedWithoutHistoryAlwaysWrites(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewService(graph.DefaultOptions(basicSite(t)), store)

	for range 2 {
		res, err := svc.Run(context.Background(), Request{SkipIfUnchanged: true})
		require.NoError(t, err)
		require.Equal(t, StatusPartial, res.Status)
	}
	require.Equal(t, 2, store.Calls().Save)
}

func TestRun_DryRun(t *testing.T) {
	store := storage.NewMemoryStore()
	pub := &fakePublisher{}
	svc := NewService(graph.DefaultOptions(basicSite(t)), store).WithPublisher(pub)

	res, err := svc.Run(context.Background(), Request{DryRun: true})
	require.NoError(t, err)
	require.NotNil(t, res.Graph)
	require.Zero(t, store.Calls().Save)
	require.Zero(t, pub.calls)
	require.False(t, res.Published)
}

func TestRun_PublishFailureDoesNotFail(t *testing.T) {
	store := storage.NewMemoryStore()
	pub := &fakePublisher{err: errors.New("nats down")}
	svc := NewService(graph.DefaultOptions(basicSite(t)), store).WithPublisher(pub)

	res, err := svc.Run(context.Background(), Request{})
	require.NoError(t, err)
	require.True(t, res.Status.IsSuccess())
	require.False(t, res.Published)
	require.Equal(t, 1, pub.calls)
}

func TestRun_PersistFailure(t *testing.T) {
	store := storage.NewMemoryStore()
	store.FailSave = errors.New("disk full")
	history := newHistory(t)
	rec := &outcomeRecorder{}
	svc := NewService(graph.DefaultOptions(basicSite(t)), store).
		WithHistory(history).
		WithRecorder(rec).
		WithRunIDs(sequentialIDs())

	res, err := svc.Run(context.Background(), Request{})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrPersist)
	require.True(t, derrors.HasCategory(err, derrors.CategoryFileSystem))
	require.Equal(t, StatusFailed, res.Status)
	require.Equal(t, []metrics.OutcomeLabel{metrics.OutcomeFailed}, rec.outcomes)

	run, ok := history.Projection().Run("run-1")
	require.True(t, ok)
	require.Equal(t, eventstore.StatusFailed, run.Status)
	require.Equal(t, "persist", run.ErrorStage)
}

func TestRun_MissingSiteDir(t *testing.T) {
	svc := NewService(graph.DefaultOptions(filepath.Join(t.TempDir(), "absent")), storage.NewMemoryStore())

	res, err := svc.Run(context.Background(), Request{})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrGenerate)
	require.True(t, derrors.HasCategory(err, derrors.CategoryNotFound))
	require.Equal(t, StatusFailed, res.Status)
	require.Nil(t, res.Graph)
}

func TestRun_Canceled(t *testing.T) {
	history := newHistory(t)
	rec := &outcomeRecorder{}
	svc := NewService(graph.DefaultOptions(basicSite(t)), storage.NewMemoryStore()).
		WithHistory(history).
		WithRecorder(rec).
		WithRunIDs(sequentialIDs())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := svc.Run(ctx, Request{})
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, StatusCanceled, res.Status)
	require.Equal(t, []metrics.OutcomeLabel{metrics.OutcomeCanceled}, rec.outcomes)

	run, ok := history.Projection().Run("run-1")
	require.True(t, ok)
	require.Equal(t, eventstore.StatusFailed, run.Status)
}

func TestRun_RevisionIsRecorded(t *testing.T) {
	history := newHistory(t)
	svc := NewService(graph.DefaultOptions(basicSite(t)), storage.NewMemoryStore()).
		WithHistory(history).
		WithRevision(func(string) (string, error) { return "deadbeef", nil }).
		WithRunIDs(sequentialIDs())

	res, err := svc.Run(context.Background(), Request{})
	require.NoError(t, err)
	require.Equal(t, "deadbeef", res.Graph.Metadata.SourceRevision)

	run, _ := history.Projection().Run("run-1")
	require.Equal(t, "deadbeef", run.Revision)
}
