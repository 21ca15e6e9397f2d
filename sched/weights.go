// Pair weighting
//
// Copyright (c) 2025, 2026  The ugi-arena authors
//
// This file is part of ugi-arena.
//
// ugi-arena is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License,
// version 3, as published by the Free Software Foundation.
//
// ugi-arena is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public
// License, version 3, along with ugi-arena. If not, see
// <http://www.gnu.org/licenses/>

package sched

import (
	"math/rand"
	"sort"

	arena "ugi-arena"
)

// Relative shares of the pairing criteria.
const (
	uncertaintyShare = 0.4
	proximityShare   = 0.3
	preferenceShare  = 0.2
	frequencyShare   = 0.1
)

// At most this many of the heaviest candidates enter the random
// selection.
const shortlist = 5

type candidate struct {
	e1, e2 *arena.Engine
	weight float64
}

func pairKey(a, b int64) [2]int64 {
	if a > b {
		a, b = b, a
	}
	return [2]int64{a, b}
}

// uncertainty grows for engines with few games and for engines whose
// rating recently moved a lot.  HISTORY holds the engine's
// chronological rating-before values from the volatility window,
// capped to the last ten.
func uncertainty(e *arena.Engine, history []int) float64 {
	u := 1 - float64(e.Games)/100
	if u < 0.1 {
		u = 0.1
	}

	if len(history) >= 2 {
		seq := append(append([]int{}, history...), e.Rating)
		var sum float64
		for i := 1; i < len(seq); i++ {
			d := seq[i] - seq[i-1]
			if d < 0 {
				d = -d
			}
			sum += float64(d)
		}
		vol := sum / float64(len(seq)-1) / 100
		if vol > 0.5 {
			vol = 0.5
		}
		u += vol
	}
	return u
}

// proximity prefers pairs of comparable strength.
func proximity(r1, r2 int) float64 {
	d := r1 - r2
	if d < 0 {
		d = -d
	}
	return 1 / (1 + float64(d)/200)
}

// preference prefers stronger pairs, so the top of the table keeps
// getting refined.
func preference(r1, r2 int) float64 {
	p := float64(r1+r2) / 2 / 2000
	if p > 1 {
		p = 1
	}
	return p
}

// frequency decays with the number of games the pair already has on
// record.
func frequency(between int) float64 {
	f := 1 - float64(between)/50
	if f < 0.1 {
		f = 0.1
	}
	return f
}

// weigh builds every unordered engine pair with its selection weight.
// RECENT must be ordered by play time, ascending.
func weigh(engines []*arena.Engine, recent []*arena.Game, pairs map[[2]int64]int) []candidate {
	hist := make(map[int64][]int)
	for _, g := range recent {
		if g.Outcome == arena.ERROR {
			continue
		}
		hist[g.Engine1.Id] = append(hist[g.Engine1.Id], g.Rating1)
		hist[g.Engine2.Id] = append(hist[g.Engine2.Id], g.Rating2)
	}
	for id, h := range hist {
		if len(h) > 10 {
			hist[id] = h[len(h)-10:]
		}
	}

	var cands []candidate
	for i := 0; i < len(engines); i++ {
		for j := i + 1; j < len(engines); j++ {
			a, b := engines[i], engines[j]
			u := (uncertainty(a, hist[a.Id]) + uncertainty(b, hist[b.Id])) / 2
			w := uncertaintyShare*u +
				proximityShare*proximity(a.Rating, b.Rating) +
				preferenceShare*preference(a.Rating, b.Rating) +
				frequencyShare*frequency(pairs[pairKey(a.Id, b.Id)])
			cands = append(cands, candidate{a, b, w})
		}
	}
	return cands
}

// pick samples a pair from the heaviest candidates, proportionally to
// their weights.  Ties keep the earlier pair in front.  Without a
// positive candidate there is nothing to play and pick returns nil.
func pick(cands []candidate, rng *rand.Rand) *candidate {
	var pos []candidate
	for _, c := range cands {
		if c.weight > 0 {
			pos = append(pos, c)
		}
	}
	if len(pos) == 0 {
		return nil
	}

	sort.SliceStable(pos, func(i, j int) bool {
		return pos[i].weight > pos[j].weight
	})
	if len(pos) > shortlist {
		pos = pos[:shortlist]
	}

	var total float64
	for _, c := range pos {
		total += c.weight
	}
	r := rng.Float64() * total
	for i := range pos {
		r -= pos[i].weight
		if r <= 0 {
			return &pos[i]
		}
	}
	return &pos[len(pos)-1]
}
