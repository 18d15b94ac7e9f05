package engine

import (
	"math/rand"
	"testing"

	"github.com/aldemir/schelling-explorer/internal/agents"
)

func testGroups(t *testing.T, shares ...float64) []*agents.Group {
	t.Helper()
	groups := make([]*agents.Group, len(shares))
	for i, share := range shares {
		g, err := agents.NewGroup(string(rune('A'+i)), i)
		if err != nil {
			t.Fatal(err)
		}
		if err := g.SetPopulationPercent(share); err != nil {
			t.Fatal(err)
		}
		groups[i] = g
	}
	return groups
}

func drainDispenser(d *PopulationDispenser, rng *rand.Rand, nGroups int) []int {
	totals := make([]int, nGroups)
	for d.HasMore() {
		totals[d.NextAgent(rng)]++
	}
	return totals
}

func TestDispenserExactTotals(t *testing.T) {
	groups := testGroups(t, 0.5, 0.5)
	var d PopulationDispenser
	if err := d.Initialize(groups, 1000, false); err != nil {
		t.Fatal(err)
	}

	totals := drainDispenser(&d, rand.New(rand.NewSource(1)), 2)
	if totals[0] != 500 || totals[1] != 500 {
		t.Fatalf("totals = %v, want [500 500]", totals)
	}
}

func TestDispenserRemainderRoundRobin(t *testing.T) {
	// floor(10/3) = 3 each, remainder 1 goes to the first group.
	groups := testGroups(t, 1.0/3, 1.0/3, 1.0/3)
	var d PopulationDispenser
	if err := d.Initialize(groups, 10, false); err != nil {
		t.Fatal(err)
	}

	totals := drainDispenser(&d, rand.New(rand.NewSource(1)), 3)
	if totals[0] != 4 || totals[1] != 3 || totals[2] != 3 {
		t.Fatalf("totals = %v, want [4 3 3]", totals)
	}
}

func TestDispenserExcludesZeroQuota(t *testing.T) {
	groups := testGroups(t, 1.0, 0.0)
	var d PopulationDispenser
	if err := d.Initialize(groups, 100, false); err != nil {
		t.Fatal(err)
	}

	totals := drainDispenser(&d, rand.New(rand.NewSource(1)), 2)
	if totals[1] != 0 {
		t.Fatalf("zero-share group dispensed %d agents", totals[1])
	}
	if totals[0] != 100 {
		t.Fatalf("totals = %v", totals)
	}
}

func TestDispenserRequireAtLeastOne(t *testing.T) {
	groups := testGroups(t, 1.0, 0.0)
	var d PopulationDispenser
	if err := d.Initialize(groups, 100, true); err != nil {
		t.Fatal(err)
	}

	totals := drainDispenser(&d, rand.New(rand.NewSource(1)), 2)
	if totals[1] < 1 {
		t.Fatalf("forced group dispensed %d agents, want at least 1", totals[1])
	}
	if totals[0]+totals[1] != 100 {
		t.Fatalf("grand total %d, want 100", totals[0]+totals[1])
	}
}

func TestDispenserInitializeErrors(t *testing.T) {
	var d PopulationDispenser
	if err := d.Initialize(nil, 10, false); err == nil {
		t.Error("empty group list accepted")
	}
	if err := d.Initialize(testGroups(t, 1.0), 0, false); err == nil {
		t.Error("zero population accepted")
	}
}

func TestDispenserClear(t *testing.T) {
	groups := testGroups(t, 1.0)
	var d PopulationDispenser
	if err := d.Initialize(groups, 10, false); err != nil {
		t.Fatal(err)
	}
	d.Clear()
	if d.HasMore() {
		t.Fatal("dispenser still has quota after Clear")
	}
}
