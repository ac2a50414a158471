package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestStringHelpers guards key names; dashboards key off them.
func TestStringHelpers(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
		attr slog.Attr
	}{
		{"RunID", KeyRunID, "r1", RunID("r1")},
		{"Stage", KeyStage, "discover", Stage("discover")},
		{"Path", KeyPath, "/tmp/site", Path("/tmp/site")},
		{"File", KeyFile, "docs/a.md", File("docs/a.md")},
		{"Root", KeyRoot, "blog", Root("blog")},
		{"NodeID", KeyNodeID, "docs/a", NodeID("docs/a")},
		{"Target", KeyTarget, "../b.md", Target("../b.md")},
		{"Fingerprint", KeyFingerprint, "abc", Fingerprint("abc")},
		{"Revision", KeyRevision, "deadbeef", Revision("deadbeef")},
		{"Method", KeyMethod, "GET", Method("GET")},
		{"RemoteAddr", KeyRemoteAddr, "1.2.3.4", RemoteAddr("1.2.3.4")},
		{"Subject", KeySubject, "docgraph.graph", Subject("docgraph.graph")},
		{"Bucket", KeyBucket, "docgraph", Bucket("docgraph")},
		{"Job", KeyJob, "refresh", Job("refresh")},
	}
	for _, tc := range cases {
		if tc.attr.Key != tc.key {
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.key, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.val {
			t.Fatalf("%s: expected value %s, got %s", tc.name, tc.val, got)
		}
	}
}

func TestNumericHelpers(t *testing.T) {
	if a := Nodes(3); a.Key != KeyNodes || a.Value.Int64() != 3 {
		t.Fatalf("Nodes mismatch: %v", a)
	}
	if a := Links(4); a.Key != KeyLinks {
		t.Fatalf("Links key mismatch: %s", a.Key)
	}
	if a := Skipped(1); a.Key != KeySkipped {
		t.Fatalf("Skipped key mismatch: %s", a.Key)
	}
	if a := Unresolved(2); a.Key != KeyUnresolved {
		t.Fatalf("Unresolved key mismatch: %s", a.Key)
	}
	if a := Status(200); a.Key != KeyStatus {
		t.Fatalf("Status key mismatch: %s", a.Key)
	}
	if a := ResponseSize(42); a.Key != KeyResponseSize {
		t.Fatalf("ResponseSize key mismatch: %s", a.Key)
	}
	if a := DurationMS(12.5); a.Key != KeyDurationMS || a.Value.Float64() != 12.5 {
		t.Fatalf("DurationMS mismatch: %v", a)
	}
}

func TestErrorHelper(t *testing.T) {
	if a := Error(nil); a.Key != KeyError || a.Value.String() != "" {
		t.Fatalf("nil error attr mismatch: %v", a)
	}
	if a := Error(errors.New("boom")); a.Value.String() != "boom" {
		t.Fatalf("expected boom, got %s", a.Value.String())
	}
}
