package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"argus/internal/diag"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "argus.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("a missing config is not an error: %v", err)
	}
	if len(cfg.Paths) != 1 || cfg.Paths[0] != "." {
		t.Fatalf("default paths should be the working directory, got %v", cfg.Paths)
	}
	if !cfg.TargetVersion.AtLeast(8, 3) {
		t.Fatalf("default target should be 8.3, got %s", cfg.TargetVersion)
	}
	if cfg.MaxDiagnostics != 10000 {
		t.Fatalf("unexpected diagnostic cap %d", cfg.MaxDiagnostics)
	}
}

func TestLoadConfigParsesFields(t *testing.T) {
	path := writeConfig(t, `
paths = ["src", "lib"]
diff_mode = true
jobs = 4

[target_version]
major = 8
minor = 1
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Paths) != 2 || cfg.Paths[0] != "src" {
		t.Fatalf("paths not decoded: %v", cfg.Paths)
	}
	if !cfg.DiffMode {
		t.Fatal("diff_mode not decoded")
	}
	if cfg.TargetVersion.AtLeast(8, 2) {
		t.Fatalf("target 8.1 is below 8.2, got %s", cfg.TargetVersion)
	}
	if cfg.EffectiveJobs() != 4 {
		t.Fatalf("jobs not honored, got %d", cfg.EffectiveJobs())
	}
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, "no_such_option = true\n")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "no_such_option") {
		t.Fatalf("unknown keys must be rejected by name, got %v", err)
	}
}

func TestValidateRejectsUnknownIssueKind(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IssueAllowList = []string{"NoSuchIssue"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("an unknown allow-list entry must fail validation")
	}
	cfg = DefaultConfig()
	cfg.IssueAllowList = []string{"RedundantTypeComparison"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("a real issue kind should validate: %v", err)
	}
}

func TestValidateRejectsNegativeJobs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Jobs = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative jobs must fail validation")
	}
}

func TestEffectiveJobsDefaultsToProcs(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.EffectiveJobs() < 1 {
		t.Fatalf("worker count must be positive, got %d", cfg.EffectiveJobs())
	}
}

func TestFilterBagAllowAndDeny(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IssueDenyList = []string{"RedundantIssetCheck"}

	bag := diag.NewBag(16)
	bag.Add(diag.Diagnostic{Code: diag.RedundantIssetCheck, Severity: diag.SevWarning})
	bag.Add(diag.Diagnostic{Code: diag.InvalidExtend, Severity: diag.SevError})
	cfg.FilterBag(bag)
	if bag.Len() != 1 || bag.Items()[0].Code != diag.InvalidExtend {
		t.Fatalf("deny list should drop only its kind, got %d left", bag.Len())
	}

	cfg = DefaultConfig()
	cfg.IssueAllowList = []string{"InvalidExtend"}
	bag = diag.NewBag(16)
	bag.Add(diag.Diagnostic{Code: diag.RedundantIssetCheck, Severity: diag.SevWarning})
	bag.Add(diag.Diagnostic{Code: diag.InvalidExtend, Severity: diag.SevError})
	cfg.FilterBag(bag)
	if bag.Len() != 1 || bag.Items()[0].Code != diag.InvalidExtend {
		t.Fatalf("allow list should keep only its kind, got %d left", bag.Len())
	}
}
