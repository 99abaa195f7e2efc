package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"argus/internal/diag"
	"argus/internal/source"
)

func TestSnapshotRoundTrip(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("app/user.vx", []byte("class User {}\n"))
	f := fs.Get(id)

	snap := NewSnapshot()
	snap.RecordFile(f, []string{"User"}, []diag.Diagnostic{{
		Code:     diag.InvalidExtend,
		Severity: diag.SevError,
		Message:  "User cannot extend final class Base",
		Primary:  source.Span{File: id, Start: 6, End: 10},
	}})

	path := filepath.Join(t.TempDir(), "argus.snapshot")
	if err := SaveSnapshot(path, snap); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded == nil {
		t.Fatal("a freshly saved snapshot must load")
	}

	rec, ok := loaded.Files["app/user.vx"]
	if !ok {
		t.Fatal("the recorded file is missing")
	}
	if len(rec.Symbols) != 1 || rec.Symbols[0] != "User" {
		t.Fatalf("symbols lost in the round trip: %v", rec.Symbols)
	}
	if len(rec.Diagnostics) != 1 || rec.Diagnostics[0].Code != uint16(diag.InvalidExtend) {
		t.Fatalf("diagnostics lost in the round trip: %v", rec.Diagnostics)
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	snap, err := LoadSnapshot(filepath.Join(t.TempDir(), "absent.snapshot"))
	if err != nil {
		t.Fatalf("a missing snapshot is a full run, not an error: %v", err)
	}
	if snap != nil {
		t.Fatal("a missing snapshot must yield nil")
	}
}

func TestLoadSnapshotSchemaMismatch(t *testing.T) {
	stale := &Snapshot{Schema: snapshotSchema + 1, Files: map[string]FileRecord{}}
	data, err := msgpack.Marshal(stale)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "stale.snapshot")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	snap, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("a stale schema is a full run, not an error: %v", err)
	}
	if snap != nil {
		t.Fatal("a stale snapshot must yield nil")
	}
}

func TestSafeSymbolsTracksContentHash(t *testing.T) {
	fs := source.NewFileSet()
	stable := fs.Get(fs.AddVirtual("stable.vx", []byte("class Stable {}\n")))
	churn := fs.Get(fs.AddVirtual("churn.vx", []byte("class Churn {}\n")))

	snap := NewSnapshot()
	snap.RecordFile(stable, []string{"Stable"}, nil)
	snap.RecordFile(churn, []string{"Churn"}, nil)

	next := source.NewFileSet()
	next.AddVirtual("stable.vx", []byte("class Stable {}\n"))
	next.AddVirtual("churn.vx", []byte("class Churn { public int $n; }\n"))

	safe := snap.SafeSymbols(next)
	if !safe["Stable"] {
		t.Fatal("an unchanged file's symbols are safe to skip")
	}
	if safe["Churn"] {
		t.Fatal("an edited file's symbols must be re-validated")
	}
}

func TestReplayDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("app.vx", []byte("class App {}\n")))

	snap := NewSnapshot()
	snap.RecordFile(f, nil, []diag.Diagnostic{{
		Code:     diag.RedundantIssetCheck,
		Severity: diag.SevWarning,
		Message:  "value is never null",
		Primary:  source.Span{File: f.ID, Start: 2, End: 7},
	}})

	bag := diag.NewBag(8)
	snap.ReplayDiagnostics(f, bag)
	if bag.Len() != 1 {
		t.Fatalf("expected one replayed finding, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != diag.RedundantIssetCheck || d.Severity != diag.SevWarning {
		t.Fatalf("replay changed the finding: %+v", d)
	}
	if d.Primary.Start != 2 || d.Primary.End != 7 {
		t.Fatalf("replay lost the span: %+v", d.Primary)
	}
}
