package sched

import (
	"math/rand"
	"testing"

	arena "ugi-arena"
)

func TestProximity(t *testing.T) {
	if p := proximity(1500, 1500); p != 1 {
		t.Errorf("proximity of equals = %v, want 1", p)
	}
	if proximity(1500, 1600) <= proximity(1500, 1800) {
		t.Error("proximity does not decay with the rating gap")
	}
	if proximity(1400, 1600) != proximity(1600, 1400) {
		t.Error("proximity is not symmetric")
	}
}

func TestPreference(t *testing.T) {
	if p := preference(2500, 2500); p != 1 {
		t.Errorf("preference = %v, want the cap of 1", p)
	}
	if preference(1200, 1200) >= preference(1800, 1800) {
		t.Error("preference does not prefer stronger pairs")
	}
}

func TestFrequency(t *testing.T) {
	if f := frequency(0); f != 1 {
		t.Errorf("frequency(0) = %v, want 1", f)
	}
	if f := frequency(1000); f != 0.1 {
		t.Errorf("frequency floor = %v, want 0.1", f)
	}
	if frequency(10) <= frequency(40) {
		t.Error("frequency does not decay with played games")
	}
}

func TestUncertainty(t *testing.T) {
	fresh := &arena.Engine{Rating: 1500, Games: 0}
	veteran := &arena.Engine{Rating: 1500, Games: 500}

	if u := uncertainty(fresh, nil); u != 1 {
		t.Errorf("fresh engine uncertainty = %v, want 1", u)
	}
	if u := uncertainty(veteran, nil); u != 0.1 {
		t.Errorf("veteran uncertainty floor = %v, want 0.1", u)
	}

	// A veteran whose rating swings stays interesting.
	swinging := uncertainty(&arena.Engine{Rating: 1560, Games: 500},
		[]int{1500, 1520, 1540})
	if swinging != 0.1+0.2 {
		t.Errorf("volatile veteran uncertainty = %v, want 0.3", swinging)
	}

	// A single recent game is not enough to call a rating volatile.
	if u := uncertainty(&arena.Engine{Rating: 1560, Games: 500},
		[]int{1500}); u != 0.1 {
		t.Errorf("one-sample volatility = %v, want 0.1", u)
	}
}

func TestWeigh(t *testing.T) {
	engines := []*arena.Engine{
		{Id: 1, Name: "a", Rating: 1500},
		{Id: 2, Name: "b", Rating: 1520},
		{Id: 3, Name: "c", Rating: 1800},
	}
	cands := weigh(engines, nil, nil)

	if len(cands) != 3 {
		t.Fatalf("%d candidates, want 3", len(cands))
	}
	for _, c := range cands {
		if c.e1.Id == c.e2.Id {
			t.Errorf("self-pair %s vs. %s", c.e1.Name, c.e2.Name)
		}
		if c.weight <= 0 {
			t.Errorf("pair %s-%s has weight %v",
				c.e1.Name, c.e2.Name, c.weight)
		}
	}

	// The close pair a-b should outweigh the distant a-c: every
	// criterion except preference favors it, and preference is
	// nearly equal.
	byPair := make(map[[2]int64]float64)
	for _, c := range cands {
		byPair[pairKey(c.e1.Id, c.e2.Id)] = c.weight
	}
	if byPair[pairKey(1, 2)] <= byPair[pairKey(1, 3)] {
		t.Error("distant pair outweighs the close pair")
	}
}

// Played pairs lose weight relative to unplayed ones.
func TestWeighFrequency(t *testing.T) {
	engines := []*arena.Engine{
		{Id: 1, Name: "a", Rating: 1500},
		{Id: 2, Name: "b", Rating: 1500},
		{Id: 3, Name: "c", Rating: 1500},
	}
	pairs := map[[2]int64]int{pairKey(1, 2): 40}
	cands := weigh(engines, nil, pairs)

	byPair := make(map[[2]int64]float64)
	for _, c := range cands {
		byPair[pairKey(c.e1.Id, c.e2.Id)] = c.weight
	}
	if byPair[pairKey(1, 2)] >= byPair[pairKey(1, 3)] {
		t.Error("well-played pair does not lose weight")
	}
}

func TestPick(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	if p := pick(nil, rng); p != nil {
		t.Errorf("pick of nothing = %v, want nil", p)
	}

	zero := []candidate{{weight: 0}, {weight: -1}}
	if p := pick(zero, rng); p != nil {
		t.Errorf("pick without positive weights = %v, want nil", p)
	}

	one := []candidate{{e1: &arena.Engine{Name: "a"}, weight: 0.5}}
	if p := pick(one, rng); p == nil || p.e1.Name != "a" {
		t.Error("single candidate not picked")
	}
}

// Only the heaviest candidates make the shortlist.
func TestPickShortlist(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	cands := []candidate{
		{weight: 10}, {weight: 9}, {weight: 8},
		{weight: 7}, {weight: 6}, {weight: 0.001},
	}
	for i := 0; i < 50; i++ {
		p := pick(cands, rng)
		if p == nil {
			t.Fatal("no candidate picked")
		}
		if p.weight == 0.001 {
			t.Fatal("candidate outside the shortlist picked")
		}
	}
}
