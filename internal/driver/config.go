package driver

import (
	"fmt"
	"os"
	"runtime"

	"github.com/BurntSushi/toml"

	"argus/internal/diag"
)

// LanguageVersion gates language features by target runtime.
type LanguageVersion struct {
	Major int `toml:"major"`
	Minor int `toml:"minor"`
}

// AtLeast reports whether the target is v or newer.
func (v LanguageVersion) AtLeast(major, minor int) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

func (v LanguageVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Config is the analyzer configuration, read from argus.toml.
type Config struct {
	// Paths are the source roots to analyze.
	Paths []string `toml:"paths"`

	// DiffMode skips class-likes whose symbols are unchanged since the
	// snapshot was taken.
	DiffMode bool `toml:"diff_mode"`

	// TargetVersion gates features (enums, readonly classes, asymmetric
	// visibility, constants in traits).
	TargetVersion LanguageVersion `toml:"target_version"`

	// ReportMixedInLoop widens mixed-in-loop suppression.
	ReportMixedInLoop bool `toml:"report_mixed_in_loop"`

	FindUnusedDefinitions bool `toml:"find_unused_definitions"`
	FindUnusedExpressions bool `toml:"find_unused_expressions"`

	// IssueAllowList, when non-empty, keeps only the named issue kinds.
	IssueAllowList []string `toml:"issue_allow_list"`
	// IssueDenyList drops the named issue kinds.
	IssueDenyList []string `toml:"issue_deny_list"`

	// Jobs caps validation parallelism; 0 means GOMAXPROCS.
	Jobs int `toml:"jobs"`

	// Baseline is the path to the accepted-findings file, empty to
	// disable.
	Baseline string `toml:"baseline"`

	// Snapshot is the path to the codebase snapshot used by diff mode.
	Snapshot string `toml:"snapshot"`

	// MaxDiagnostics caps the report size.
	MaxDiagnostics int `toml:"max_diagnostics"`
}

// DefaultConfig is what an empty argus.toml means.
func DefaultConfig() Config {
	return Config{
		Paths:          []string{"."},
		TargetVersion:  LanguageVersion{Major: 8, Minor: 3},
		MaxDiagnostics: 10000,
	}
}

// LoadConfig reads and validates a TOML config file. A missing file
// yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path) // #nosec G304 -- config path from CLI
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("%s: unknown option %q", path, undecoded[0].String())
	}
	return cfg, cfg.Validate()
}

// Validate rejects configs the driver cannot honor.
func (c *Config) Validate() error {
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must be >= 0, got %d", c.Jobs)
	}
	if c.MaxDiagnostics <= 0 {
		c.MaxDiagnostics = 10000
	}
	if len(c.Paths) == 0 {
		c.Paths = []string{"."}
	}
	for _, name := range c.IssueAllowList {
		if _, ok := diag.CodeByName(name); !ok {
			return fmt.Errorf("issue_allow_list: unknown issue kind %q", name)
		}
	}
	for _, name := range c.IssueDenyList {
		if _, ok := diag.CodeByName(name); !ok {
			return fmt.Errorf("issue_deny_list: unknown issue kind %q", name)
		}
	}
	return nil
}

// EffectiveJobs resolves the worker count.
func (c *Config) EffectiveJobs() int {
	if c.Jobs > 0 {
		return c.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

// FilterBag applies the allow and deny lists to a report.
func (c *Config) FilterBag(bag *diag.Bag) {
	if len(c.IssueAllowList) > 0 {
		allowed := make(map[diag.Code]bool, len(c.IssueAllowList))
		for _, name := range c.IssueAllowList {
			if code, ok := diag.CodeByName(name); ok {
				allowed[code] = true
			}
		}
		bag.Filter(func(d diag.Diagnostic) bool { return allowed[d.Code] })
	}
	if len(c.IssueDenyList) > 0 {
		denied := make(map[diag.Code]bool, len(c.IssueDenyList))
		for _, name := range c.IssueDenyList {
			if code, ok := diag.CodeByName(name); ok {
				denied[code] = true
			}
		}
		bag.Filter(func(d diag.Diagnostic) bool { return !denied[d.Code] })
	}
}
