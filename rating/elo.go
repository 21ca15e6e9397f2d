// Elo calculation
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

package rating

import (
	"log"
	"math"
)

const (
	MaxDiff  = 400
	DefaultK = 32
	eps      = 0.0001
)

// Expected returns both engines' expected scores according to
// https://en.wikipedia.org/wiki/Elo_rating_system#Mathematical_details
func Expected(r1, r2 int) (float64, float64) {
	diff := math.Max(-MaxDiff, math.Min(float64(r2-r1), MaxDiff))

	e1 := 1 / (1 + math.Pow(10, diff/MaxDiff))
	e2 := 1 / (1 + math.Pow(10, -diff/MaxDiff))

	if math.Abs((e1+e2)-1) > eps {
		log.Printf("Numerical instability detected: %f + %f = %f != 1.0",
			e1, e2, e1+e2)
		return 0.5, 0.5
	}
	return e1, e2
}

// Deltas computes the aggregate rating change of a match set with n
// scored games.  Rounding is independent per engine, so the total
// rating is preserved to within one point.
func Deltas(k, r1, r2 int, score1, score2 float64, n int) (int, int) {
	if n <= 0 {
		return 0, 0
	}
	if k <= 0 {
		k = DefaultK
	}

	e1, e2 := Expected(r1, r2)
	a1 := score1 / float64(n)
	a2 := score2 / float64(n)

	d1 := int(math.Round(float64(k) * (a1 - e1)))
	d2 := int(math.Round(float64(k) * (a2 - e2)))
	return d1, d2
}
