// Transactional rating updates
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
	"context"

	arena "ugi-arena"
	"ugi-arena/cmd"
)

// Apply persists a match set and applies the aggregate rating change
// inside a single transaction.  On any failure everything rolls back:
// no game rows and no rating change become visible.  Error games are
// stored but stay out of the score denominator and the counters.
func Apply(ctx context.Context, db cmd.Database, res *arena.MatchSetResult, k int) (delta1, delta2 int, err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			delta1, delta2 = 0, 0
		}
	}()

	// Ratings are read inside the transaction, before the first
	// insert; every game row carries them as rating_before.
	r1, err := tx.Rating(res.Engine1.Id)
	if err != nil {
		return 0, 0, err
	}
	r2, err := tx.Rating(res.Engine2.Id)
	if err != nil {
		return 0, 0, err
	}

	var w1, l1, dr1 int
	for _, g := range res.Games {
		g.Rating1, g.Rating2 = r1, r2
		if err = tx.InsertGame(g); err != nil {
			return 0, 0, err
		}
		switch g.Outcome {
		case arena.WIN:
			w1++
		case arena.LOSS:
			l1++
		case arena.DRAW:
			dr1++
		}
	}

	n := res.Played()
	if n == 0 {
		err = tx.Commit()
		return 0, 0, err
	}

	delta1, delta2 = Deltas(k, r1, r2, res.Score1, res.Score2, n)

	err = tx.UpdateEngine(res.Engine1.Id, r1+delta1, n, w1, l1, dr1)
	if err != nil {
		return 0, 0, err
	}
	// Engine2's wins are engine1's losses and vice versa.
	err = tx.UpdateEngine(res.Engine2.Id, r2+delta2, n, l1, w1, dr1)
	if err != nil {
		return 0, 0, err
	}

	err = tx.Commit()
	return delta1, delta2, err
}
