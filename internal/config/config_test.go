package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aldemir/schelling-explorer/internal/engine"
	"github.com/aldemir/schelling-explorer/internal/grid"
)

func TestDefaultBuilds(t *testing.T) {
	m, err := Default().Build()
	if err != nil {
		t.Fatal(err)
	}

	groups := m.Groups()
	if len(groups) != 2 {
		t.Fatalf("%d groups, want 2", len(groups))
	}
	if groups[0].Name() != "Group A" || groups[1].Name() != "Group B" {
		t.Fatalf("group names %q, %q", groups[0].Name(), groups[1].Name())
	}
	if groups[0].Tolerance() != 0.5 || groups[0].PopulationPercent() != 0.5 {
		t.Fatal("default group configuration wrong")
	}

	p := m.Params()
	if p.Width() != engine.DefaultWidth || p.Height() != engine.DefaultHeight {
		t.Fatalf("size %dx%d, want defaults", p.Width(), p.Height())
	}
	if p.Dynamics() != engine.Liquid || p.Utility() != engine.Absolute || p.Updater() != engine.Single {
		t.Fatal("default variants wrong")
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	doc := `
seed: 7
width: 40
height: 30
dynamics: swap
utility: relative
updater: batch
stop_on_equilibrium: true
groups:
  - name: Reds
    population_percent: 0.7
    tolerance: 0.3
  - name: Blues
    population_percent: 0.3
    tolerance: 0.6
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	m, err := cfg.Build()
	if err != nil {
		t.Fatal(err)
	}

	p := m.Params()
	if m.Seed() != 7 {
		t.Fatalf("seed = %d", m.Seed())
	}
	if p.Width() != 40 || p.Height() != 30 {
		t.Fatalf("size %dx%d", p.Width(), p.Height())
	}
	if p.Dynamics() != engine.SwapDynamics || p.Utility() != engine.Relative || p.Updater() != engine.Batch {
		t.Fatal("variant strings not applied")
	}
	if !p.StopOnEquilibrium() {
		t.Fatal("stop_on_equilibrium not applied")
	}
	// Fields absent from the file keep their defaults.
	if p.SearchLimit() != engine.DefaultSearchLimit {
		t.Fatalf("search limit = %d", p.SearchLimit())
	}

	groups := m.Groups()
	if groups[0].Name() != "Reds" || groups[0].PopulationPercent() != 0.7 {
		t.Fatal("group override not applied")
	}
	if groups[1].Tolerance() != 0.6 {
		t.Fatal("group tolerance not applied")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestParseVariants(t *testing.T) {
	if b, err := ParseBounds("Bounded"); err != nil || b != grid.Bounded {
		t.Errorf("ParseBounds(Bounded) = %v, %v", b, err)
	}
	if b, err := ParseBounds(""); err != nil || b != grid.Toroidal {
		t.Errorf("ParseBounds empty = %v, %v", b, err)
	}
	if _, err := ParseBounds("spherical"); err == nil {
		t.Error("unknown bounds accepted")
	}

	if d, err := ParseDynamics("SOLID"); err != nil || d != engine.Solid {
		t.Errorf("ParseDynamics(SOLID) = %v, %v", d, err)
	}
	if _, err := ParseDynamics("gas"); err == nil {
		t.Error("unknown dynamics accepted")
	}
	if u, err := ParseUtility("relative"); err != nil || u != engine.Relative {
		t.Errorf("ParseUtility = %v, %v", u, err)
	}
	if u, err := ParseUpdater("batch"); err != nil || u != engine.Batch {
		t.Errorf("ParseUpdater = %v, %v", u, err)
	}
}

func TestBuildRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Dynamics = "gas"
	if _, err := cfg.Build(); !errors.Is(err, engine.ErrInvalidArgument) {
		t.Fatalf("bad dynamics: err = %v", err)
	}

	cfg = Default()
	cfg.Groups[0].Tolerance = 2.0
	if _, err := cfg.Build(); err == nil {
		t.Fatal("tolerance above 1 accepted")
	}

	cfg = Default()
	cfg.Groups = nil
	if _, err := cfg.Build(); err == nil {
		t.Fatal("groupless config accepted")
	}
}
