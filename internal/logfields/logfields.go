package logfields

import "log/slog"

// Canonical log field names shared by every docgraph package.
const (
	KeyRunID        = "run_id"
	KeyStage        = "stage"
	KeyDurationMS   = "duration_ms"
	KeyPath         = "path"
	KeyFile         = "file"
	KeyRoot         = "root"
	KeyNodeID       = "node_id"
	KeyTarget       = "target"
	KeyNodes        = "nodes"
	KeyLinks        = "links"
	KeySkipped      = "skipped"
	KeyUnresolved   = "unresolved"
	KeyFingerprint  = "fingerprint"
	KeyRevision     = "revision"
	KeyMethod       = "method"
	KeyStatus       = "status"
	KeyRemoteAddr   = "remote_addr"
	KeyResponseSize = "response_size"
	KeySubject      = "subject"
	KeyBucket       = "bucket"
	KeyJob          = "job"
	KeyError        = "error"
)

func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Root(r string) slog.Attr         { return slog.String(KeyRoot, r) }
func NodeID(id string) slog.Attr      { return slog.String(KeyNodeID, id) }
func Target(t string) slog.Attr       { return slog.String(KeyTarget, t) }
func Nodes(n int) slog.Attr           { return slog.Int(KeyNodes, n) }
func Links(n int) slog.Attr           { return slog.Int(KeyLinks, n) }
func Skipped(n int) slog.Attr         { return slog.Int(KeySkipped, n) }
func Unresolved(n int) slog.Attr      { return slog.Int(KeyUnresolved, n) }
func Fingerprint(f string) slog.Attr  { return slog.String(KeyFingerprint, f) }
func Revision(r string) slog.Attr     { return slog.String(KeyRevision, r) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func RemoteAddr(a string) slog.Attr   { return slog.String(KeyRemoteAddr, a) }
func ResponseSize(n int) slog.Attr    { return slog.Int(KeyResponseSize, n) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func Bucket(b string) slog.Attr       { return slog.String(KeyBucket, b) }
func Job(name string) slog.Attr       { return slog.String(KeyJob, name) }

// Error renders err as a string attribute; a nil error yields an empty value.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
