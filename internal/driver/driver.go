// Package driver orchestrates a whole-program run: load configuration,
// populate the codebase, validate every class-like in parallel, fold the
// per-worker reports into one bag, and persist the snapshot diff mode
// reads next time.
package driver

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"argus/internal/baseline"
	"argus/internal/diag"
	"argus/internal/meta"
	"argus/internal/source"
	"argus/internal/validator"
)

// Driver runs the analysis phases over an already-scanned codebase.
type Driver struct {
	Config   Config
	Files    *source.FileSet
	Codebase *meta.Codebase

	// Progress, when set, is called after each validated class-like.
	Progress func(done, total int, name string)

	mu  sync.Mutex
	bag *diag.Bag
}

// New builds a driver over a scanned (not yet populated) codebase.
func New(cfg Config, fs *source.FileSet, cb *meta.Codebase) *Driver {
	return &Driver{
		Config:   cfg,
		Files:    fs,
		Codebase: cb,
		bag:      diag.NewBag(cfg.MaxDiagnostics),
	}
}

// Bag exposes the aggregate report.
func (d *Driver) Bag() *diag.Bag { return d.bag }

// Run populates the codebase, validates class-likes in parallel, and
// applies the configured filters and baseline. The returned error is an
// infrastructure failure; typing findings land in the bag.
func (d *Driver) Run(ctx context.Context) error {
	if !d.Codebase.Populated() {
		d.Codebase.Populate(diag.BagReporter{Bag: d.bag})
	}

	var snap *Snapshot
	safe := map[string]bool{}
	if d.Config.DiffMode && d.Config.Snapshot != "" {
		prev, err := LoadSnapshot(d.Config.Snapshot)
		if err != nil {
			d.bag.Add(diag.Diagnostic{
				Severity: diag.SevWarning,
				Code:     diag.IOSnapshotError,
				Message:  "cannot read snapshot: " + err.Error(),
			})
		} else if prev != nil {
			snap = prev
			safe = prev.SafeSymbols(d.Files)
		}
	}

	if err := d.validateAll(ctx, safe, snap); err != nil {
		return err
	}

	d.Config.FilterBag(d.bag)
	if d.Config.Baseline != "" {
		if bl, err := baseline.Load(d.Config.Baseline); err == nil {
			bl.Apply(d.bag, d.Files)
		}
	}
	d.bag.Sort()
	d.bag.Dedup()

	if d.Config.Snapshot != "" {
		if err := d.saveSnapshot(); err != nil {
			d.bag.Add(diag.Diagnostic{
				Severity: diag.SevWarning,
				Code:     diag.IOSnapshotError,
				Message:  "cannot write snapshot: " + err.Error(),
			})
		}
	}
	return ctx.Err()
}

// validateAll fans the class-like validator out over a bounded worker
// pool. Each worker fills its own bag; the merge takes the driver lock.
func (d *Driver) validateAll(ctx context.Context, safe map[string]bool, snap *Snapshot) error {
	in := d.Codebase.Interner()

	var targets []source.StringID
	for _, name := range d.Codebase.ClassLikeNames() {
		m, ok := d.Codebase.ClassLike(name)
		if !ok || !m.UserDefined {
			continue
		}
		if safe[in.MustLookup(name)] {
			continue
		}
		targets = append(targets, name)
	}
	total := len(targets)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.Config.EffectiveJobs())

	var done int
	for _, name := range targets {
		name := name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			local := diag.NewBag(int(d.bag.Cap()))
			v := validator.New(d.Codebase, diag.BagReporter{Bag: local})
			v.ValidateClassLike(name)

			d.mu.Lock()
			d.bag.Merge(local)
			done++
			n := done
			d.mu.Unlock()
			if d.Progress != nil {
				d.Progress(n, total, in.MustLookup(name))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Unchanged files kept their findings; replay them from the snapshot.
	if snap != nil {
		for i := 0; i < d.Files.Len(); i++ {
			f := d.Files.Get(source.FileID(i)) // #nosec G115 -- bounded by Len
			if fileIsSafe(f, snap) {
				snap.ReplayDiagnostics(f, d.bag)
			}
		}
	}
	return nil
}

func fileIsSafe(f *source.File, snap *Snapshot) bool {
	rec, ok := snap.Files[f.Path]
	if !ok {
		return false
	}
	return rec.Hash == hashString(f)
}

// saveSnapshot records every analyzed file with its findings and symbols.
func (d *Driver) saveSnapshot() error {
	in := d.Codebase.Interner()

	symbolsByFile := make(map[source.FileID][]string)
	for _, name := range d.Codebase.ClassLikeNames() {
		m, ok := d.Codebase.ClassLike(name)
		if !ok || !m.UserDefined {
			continue
		}
		fid := m.Span.File
		symbolsByFile[fid] = append(symbolsByFile[fid], in.MustLookup(name))
	}

	diagsByFile := make(map[source.FileID][]diag.Diagnostic)
	for _, dg := range d.bag.Items() {
		diagsByFile[dg.Primary.File] = append(diagsByFile[dg.Primary.File], dg)
	}

	snap := NewSnapshot()
	for i := 0; i < d.Files.Len(); i++ {
		fid := source.FileID(i) // #nosec G115 -- bounded by Len
		f := d.Files.Get(fid)
		snap.RecordFile(f, symbolsByFile[fid], diagsByFile[fid])
	}
	return SaveSnapshot(d.Config.Snapshot, snap)
}
