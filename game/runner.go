// Match-set runner
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
	"time"

	arena "ugi-arena"
	"ugi-arena/ugi"
)

// Runner plays one match set for one engine pair: every starting
// position is played with both color assignments, sequentially.
// Fresh sessions are launched per game.
type Runner struct {
	Engine1 *arena.Engine
	Engine2 *arena.Engine
	Config1 *arena.EngineConfig
	Config2 *arena.EngineConfig
	Set     *arena.MatchSet
	TC      arena.TimeControl
	MoveCap int

	// Settle is the pause between games of a set, giving restarted
	// engines time to release their resources.
	Settle time.Duration

	// Launch starts a session for an engine; defaults to
	// StartSession.  Injected by tests.
	Launch func(*arena.EngineConfig) (*ugi.Session, error)
}

// Play runs the whole match set.  The result always comes back, with
// Completed false as soon as any game ended in an error.
func (r *Runner) Play() *arena.MatchSetResult {
	res := &arena.MatchSetResult{
		Engine1:   r.Engine1,
		Engine2:   r.Engine2,
		Name:      r.Set.Name,
		Completed: true,
	}

	settle := r.Settle
	if settle == 0 {
		settle = time.Second
	}

	games := r.Set.GamesPerPosition
	if games <= 0 {
		games = 2
	}

	for _, pos := range r.Set.Positions {
		for i := 0; i < games; i++ {
			if len(res.Games) > 0 {
				time.Sleep(settle)
			}

			color1 := arena.White
			if i%2 == 1 {
				color1 = arena.Black
			}

			g := r.playOne(pos, color1)
			if g.Outcome == arena.ERROR {
				res.Completed = false
			}
			res.Record(g)
		}
	}
	return res
}

func (r *Runner) playOne(pos *arena.StartingPosition, color1 arena.Color) *arena.Game {
	launch := r.Launch
	if launch == nil {
		launch = StartSession
	}

	fail := func(err error) *arena.Game {
		g := &arena.Game{
			Engine1:  r.Engine1,
			Engine2:  r.Engine2,
			Outcome:  arena.ERROR,
			Error:    err.Error(),
			Rating1:  r.Engine1.Rating,
			Rating2:  r.Engine2.Rating,
			Position: pos.Name,
			MatchSet: r.Set.Name,
			Color1:   color1,
			Color2:   color1.Other(),
			Played:   time.Now(),
		}
		arena.Debug.Println("Aborted", g, err)
		return g
	}

	s1, err := launch(r.Config1)
	if err != nil {
		return fail(err)
	}
	s2, err := launch(r.Config2)
	if err != nil {
		s1.Shutdown()
		return fail(err)
	}

	if err := s1.Handshake(); err != nil {
		s1.Shutdown()
		s2.Shutdown()
		return fail(err)
	}
	if err := s2.Handshake(); err != nil {
		s1.Shutdown()
		s2.Shutdown()
		return fail(err)
	}

	d := &Driver{
		Session1: s1,
		Session2: s2,
		Engine1:  r.Engine1,
		Engine2:  r.Engine2,
		Color1:   color1,
		Position: pos,
		MatchSet: r.Set.Name,
		TC:       r.TC,
		MoveCap:  r.MoveCap,
	}
	return d.Play()
}
