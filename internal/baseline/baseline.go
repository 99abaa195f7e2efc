// Package baseline persists known findings so existing projects can
// adopt the analyzer incrementally: baselined issues are subtracted from
// the report instead of failing the run.
package baseline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"argus/internal/diag"
	"argus/internal/source"
)

const formatVersion = 1

// Baseline counts accepted findings per file and issue kind.
type Baseline struct {
	Version int                       `yaml:"version"`
	Files   map[string]map[string]int `yaml:"files"`
}

// New returns an empty baseline.
func New() *Baseline {
	return &Baseline{Version: formatVersion, Files: make(map[string]map[string]int)}
}

// Load reads a baseline file.
func Load(path string) (*Baseline, error) {
	// #nosec G304 -- path comes from configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b Baseline
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse baseline %s: %w", path, err)
	}
	if b.Version != formatVersion {
		return nil, fmt.Errorf("baseline %s: unsupported version %d", path, b.Version)
	}
	if b.Files == nil {
		b.Files = make(map[string]map[string]int)
	}
	return &b, nil
}

// Save writes the baseline, replacing the file atomically.
func Save(path string, b *Baseline) error {
	data, err := yaml.Marshal(b)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// FromBag builds a baseline accepting every current finding.
func FromBag(bag *diag.Bag, fs *source.FileSet) *Baseline {
	b := New()
	for _, d := range bag.Items() {
		f := fs.Get(d.Primary.File)
		byCode := b.Files[f.Path]
		if byCode == nil {
			byCode = make(map[string]int)
			b.Files[f.Path] = byCode
		}
		byCode[d.Code.String()]++
	}
	return b
}

// Apply removes baselined findings from the bag, consuming one budget
// slot per match. Findings beyond the recorded count stay in the report.
func (b *Baseline) Apply(bag *diag.Bag, fs *source.FileSet) {
	remaining := make(map[string]map[string]int, len(b.Files))
	for file, byCode := range b.Files {
		cp := make(map[string]int, len(byCode))
		for code, n := range byCode {
			cp[code] = n
		}
		remaining[file] = cp
	}
	bag.Filter(func(d diag.Diagnostic) bool {
		f := fs.Get(d.Primary.File)
		byCode, ok := remaining[f.Path]
		if !ok {
			return true
		}
		if byCode[d.Code.String()] <= 0 {
			return true
		}
		byCode[d.Code.String()]--
		return false
	})
}
