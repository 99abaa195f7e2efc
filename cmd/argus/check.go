package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"argus/internal/diagfmt"
	"argus/internal/driver"
	"argus/internal/meta"
	"argus/internal/source"
	"argus/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Validate the codebase and report typing issues",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().Bool("json", false, "emit the report as JSON")
	checkCmd.Flags().Bool("no-progress", false, "disable the progress UI")
	checkCmd.Flags().Int("jobs", 0, "validation parallelism (0 = all cores)")
	checkCmd.Flags().Bool("diff", false, "skip symbols unchanged since the last snapshot")
}

func runCheck(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := driver.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.Paths = args
	}
	if jobs, _ := cmd.Flags().GetInt("jobs"); jobs > 0 {
		cfg.Jobs = jobs
	}
	if diff, _ := cmd.Flags().GetBool("diff"); diff {
		cfg.DiffMode = true
	}

	fs, err := loadFiles(cfg.Paths)
	if err != nil {
		return err
	}

	in := source.NewInterner()
	cb := meta.NewCodebase(in)

	d := driver.New(cfg, fs, cb)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jsonOut, _ := cmd.Flags().GetBool("json")
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	quiet, _ := cmd.Flags().GetBool("quiet")

	showProgress := !jsonOut && !noProgress && !quiet && isTerminal(os.Stderr)
	var uiErr chan error
	if showProgress {
		events := make(chan ui.Event, 64)
		d.Progress = func(done, total int, name string) {
			select {
			case events <- ui.Event{Name: name, Done: done, Total: total}:
			default:
			}
		}
		uiErr = make(chan error, 1)
		go func() {
			uiErr <- ui.RunProgress("validating", 0, events)
		}()
		defer func() {
			close(events)
			<-uiErr
		}()
	}

	if err := d.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	bag := d.Bag()
	if jsonOut {
		if err := diagfmt.JSON(os.Stdout, bag, fs, diagfmt.PathModeRelative); err != nil {
			return err
		}
	} else {
		opts := diagfmt.AutoOpts(os.Stdout)
		if colorFlag, _ := cmd.Flags().GetString("color"); colorFlag == "on" {
			opts.Color = true
		} else if colorFlag == "off" {
			opts.Color = false
		}
		diagfmt.Pretty(os.Stdout, bag, fs, opts)
	}

	if bag.HasErrors() {
		return fmt.Errorf("%d problem(s)", bag.Len())
	}
	return nil
}

// loadFiles walks the configured roots and loads every analyzable source
// file into the set.
func loadFiles(paths []string) (*source.FileSet, error) {
	wd, _ := os.Getwd()
	fs := source.NewFileSetWithBase(wd)
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if _, err := fs.Load(root); err != nil {
				return nil, err
			}
			continue
		}
		err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != ".php" {
				return nil
			}
			_, err = fs.Load(path)
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	return fs, nil
}

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Write the current findings to the baseline file",
	RunE:  runBaseline,
}

func runBaseline(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := driver.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Baseline == "" {
		cfg.Baseline = "argus-baseline.yml"
	}
	if len(args) > 0 {
		cfg.Paths = args
	}

	fs, err := loadFiles(cfg.Paths)
	if err != nil {
		return err
	}

	cb := meta.NewCodebase(source.NewInterner())
	d := driver.New(cfg, fs, cb)
	// Baselining wants the raw findings, not the baselined ones.
	baselinePath := cfg.Baseline
	d.Config.Baseline = ""

	if err := d.Run(context.Background()); err != nil {
		return err
	}
	return writeBaseline(baselinePath, d.Bag(), fs)
}
