// Game driver
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

package game

import (
	"encoding/json"
	"fmt"
	"time"

	arena "ugi-arena"
	"ugi-arena/ugi"
)

const defaultMoveCap = 500

// Driver plays exactly one game between two already-handshaked
// sessions.  Session1 belongs to Engine1; Color1 is the color Engine1
// plays.  Player 1 in the protocol sense is always the white side.
type Driver struct {
	Session1 *ugi.Session
	Session2 *ugi.Session
	Engine1  *arena.Engine
	Engine2  *arena.Engine
	Color1   arena.Color
	Position *arena.StartingPosition
	MatchSet string
	TC       arena.TimeControl
	MoveCap  int
}

// white returns the session playing the white pieces, i.e. owning
// protocol player 1.
func (d *Driver) player(p int) *ugi.Session {
	white, black := d.Session1, d.Session2
	if d.Color1 == arena.Black {
		white, black = black, white
	}
	if p == 1 {
		return white
	}
	return black
}

// Play drives the game to completion.  Both sessions are torn down on
// every exit path.
func (d *Driver) Play() *arena.Game {
	g := &arena.Game{
		Engine1:  d.Engine1,
		Engine2:  d.Engine2,
		Outcome:  arena.ONGOING,
		Rating1:  d.Engine1.Rating,
		Rating2:  d.Engine2.Rating,
		MatchSet: d.MatchSet,
		Color1:   d.Color1,
		Color2:   d.Color1.Other(),
		Played:   time.Now(),
	}
	if d.Position != nil {
		g.Position = d.Position.Name
	}

	start := time.Now()
	defer func() { g.Duration = time.Since(start) }()
	defer d.Session1.Shutdown()
	defer d.Session2.Shutdown()

	if err := d.setup(); err != nil {
		return d.fail(g, err)
	}

	cap := d.MoveCap
	if cap <= 0 {
		cap = defaultMoveCap
	}
	clk := newClock(d.TC, d.Session1.Timeouts.Move)

	// The first engine's session is authoritative for the game
	// state.
	st, err := d.Session1.QueryStatus()
	if err != nil {
		return d.fail(g, err)
	}

	for st.InProgress {
		if len(g.Moves) >= cap {
			g.Outcome = arena.DRAW
			g.IsDraw = true
			g.Error = "move-cap"
			d.snapshot(g, st)
			return g
		}

		p := st.PlayerToMove
		if p != 1 && p != 2 {
			return d.fail(g, fmt.Errorf("%w: playertomove %d",
				ugi.ErrBadResponse, p))
		}

		sess := d.player(p)
		before := time.Now()
		move, err := sess.RequestMove(clk.deadline(p))
		clk.spend(p, time.Since(before))
		if err != nil {
			return d.fail(g, fmt.Errorf("%s: %w", sess, err))
		}
		g.Moves = append(g.Moves, move)

		if err := d.Session1.ApplyMove(move); err != nil {
			return d.fail(g, err)
		}
		if err := d.Session2.ApplyMove(move); err != nil {
			return d.fail(g, err)
		}

		if st, err = d.Session1.QueryStatus(); err != nil {
			return d.fail(g, err)
		}
	}

	d.translate(g, st)
	d.snapshot(g, st)
	arena.Debug.Println("Finished", g)
	return g
}

// setup replays the starting position into both sessions.
func (d *Driver) setup() error {
	if d.Position == nil {
		return nil
	}
	if fen := d.Position.Fen; fen != "" {
		if err := d.Session1.Setup(fen); err != nil {
			return err
		}
		if err := d.Session2.Setup(fen); err != nil {
			return err
		}
	}
	for _, mv := range d.Position.Moves {
		if err := d.Session1.ApplyMove(mv); err != nil {
			return err
		}
		if err := d.Session2.ApplyMove(mv); err != nil {
			return err
		}
	}
	return nil
}

// translate maps the per-player result tokens to an outcome from
// Engine1's perspective.  Conflicting claims are protocol violations;
// draw is the default when the tokens are ambiguous but the game is
// over.
func (d *Driver) translate(g *arena.Game, st *arena.GameStatus) {
	i1 := 0
	if d.Color1 == arena.Black {
		i1 = 1
	}
	r1, r2 := st.Result[i1], st.Result[1-i1]

	switch {
	case r1 == "win" && r2 == "win":
		g.Outcome = arena.ERROR
		g.Error = "both engines report a win"
	case r1 == "loss" && r2 == "loss":
		g.Outcome = arena.ERROR
		g.Error = "both engines report a loss"
	case r1 == "win" || r2 == "loss":
		g.Outcome = arena.WIN
		g.Winner = d.Engine1
	case r2 == "win" || r1 == "loss":
		g.Outcome = arena.LOSS
		g.Winner = d.Engine2
	default:
		g.Outcome = arena.DRAW
		g.IsDraw = true
	}
}

func (d *Driver) snapshot(g *arena.Game, st *arena.GameStatus) {
	if blob, err := json.Marshal(st); err == nil {
		g.FinalStatus = string(blob)
	}
}

func (d *Driver) fail(g *arena.Game, err error) *arena.Game {
	g.Outcome = arena.ERROR
	g.Error = err.Error()
	arena.Debug.Println("Aborted", g, err)
	return g
}
