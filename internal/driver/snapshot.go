package driver

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"argus/internal/diag"
	"argus/internal/source"
)

// snapshotSchema guards against reading snapshots written by an
// incompatible build.
const snapshotSchema = 2

// StoredDiagnostic is one finding persisted per file, replayable without
// re-analyzing the file.
type StoredDiagnostic struct {
	Code     uint16 `msgpack:"c"`
	Severity uint8  `msgpack:"s"`
	Start    uint32 `msgpack:"a"`
	End      uint32 `msgpack:"b"`
	Message  string `msgpack:"m"`
	Help     string `msgpack:"h,omitempty"`
}

// FileRecord is the per-file snapshot entry.
type FileRecord struct {
	Hash        string             `msgpack:"hash"`
	Symbols     []string           `msgpack:"symbols,omitempty"`
	Diagnostics []StoredDiagnostic `msgpack:"diags,omitempty"`
}

// Snapshot persists the analysis state diff mode needs: per-file content
// hashes, the symbols each file declares, and the findings it produced.
type Snapshot struct {
	Schema int                   `msgpack:"schema"`
	Files  map[string]FileRecord `msgpack:"files"`
}

// NewSnapshot returns an empty snapshot at the current schema.
func NewSnapshot() *Snapshot {
	return &Snapshot{Schema: snapshotSchema, Files: make(map[string]FileRecord)}
}

// LoadSnapshot reads a snapshot; a missing file or a schema mismatch
// yields (nil, nil) so the caller falls back to a full run.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- snapshot path from config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if s.Schema != snapshotSchema {
		return nil, nil
	}
	if s.Files == nil {
		s.Files = make(map[string]FileRecord)
	}
	return &s, nil
}

// SaveSnapshot writes the snapshot with an atomic rename so a crashed
// run never leaves a torn file.
func SaveSnapshot(path string, s *Snapshot) error {
	data, err := msgpack.Marshal(s)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func hashString(f *source.File) string {
	return hex.EncodeToString(f.Hash[:])
}

// RecordFile stores one analyzed file into the snapshot.
func (s *Snapshot) RecordFile(f *source.File, symbols []string, diags []diag.Diagnostic) {
	rec := FileRecord{
		Hash:    hashString(f),
		Symbols: symbols,
	}
	for _, d := range diags {
		rec.Diagnostics = append(rec.Diagnostics, StoredDiagnostic{
			Code:     uint16(d.Code),
			Severity: uint8(d.Severity),
			Start:    d.Primary.Start,
			End:      d.Primary.End,
			Message:  d.Message,
			Help:     d.Help,
		})
	}
	s.Files[f.Path] = rec
}

// SafeSymbols returns the symbols declared by files whose content hash
// matches the snapshot: diff mode skips re-validating them.
func (s *Snapshot) SafeSymbols(fs *source.FileSet) map[string]bool {
	safe := make(map[string]bool)
	for i := 0; i < fs.Len(); i++ {
		f := fs.Get(source.FileID(i)) // #nosec G115 -- bounded by fs.Len
		rec, ok := s.Files[f.Path]
		if !ok || rec.Hash != hashString(f) {
			continue
		}
		for _, sym := range rec.Symbols {
			safe[sym] = true
		}
	}
	return safe
}

// ReplayDiagnostics re-emits the stored findings for an unchanged file.
func (s *Snapshot) ReplayDiagnostics(f *source.File, bag *diag.Bag) {
	rec, ok := s.Files[f.Path]
	if !ok {
		return
	}
	for _, sd := range rec.Diagnostics {
		bag.Add(diag.Diagnostic{
			Severity: diag.Severity(sd.Severity),
			Code:     diag.Code(sd.Code),
			Message:  sd.Message,
			Help:     sd.Help,
			Primary:  source.Span{File: f.ID, Start: sd.Start, End: sd.End},
		})
	}
}
