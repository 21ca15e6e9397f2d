// Common types and constants
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

package arena

import (
	"fmt"
	"time"
)

type (
	Color   bool
	Outcome uint8
)

const (
	// The two sides of a game
	White, Black Color = false, true
)

// Game outcomes, always from the first engine's perspective.
const (
	ONGOING Outcome = iota
	WIN
	LOSS
	DRAW
	ERROR
)

func (o Outcome) String() string {
	switch o {
	case ONGOING:
		return "ongoing"
	case WIN:
		return "win"
	case LOSS:
		return "loss"
	case DRAW:
		return "draw"
	case ERROR:
		return "error"
	default:
		panic(fmt.Sprintf("Illegal outcome: %d", o))
	}
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	}
	panic("Illegal color")
}

func (c Color) Other() Color { return !c }

// Engine is a persistent tournament participant.  Only the rating
// updater mutates the rating and the counters, and only inside the
// transaction that appends the engine's games.
type Engine struct {
	Id      int64
	Name    string
	Descr   string
	Rating  int
	Games   uint64
	Wins    uint64
	Losses  uint64
	Draws   uint64
	Created time.Time
}

func (e *Engine) String() string {
	return fmt.Sprintf("%s (%d)", e.Name, e.Rating)
}

// EngineConfig describes how to launch an engine.  It is loaded from
// the configuration document and never persisted.
type EngineConfig struct {
	Name    string
	Exec    string
	Image   string
	Dir     string
	Args    []string
	Options map[string]string
	Env     map[string]string
	Rating  int
	Enabled bool
	Descr   string
}

// StartingPosition is replayed into both engines before the first
// move request.  If Fen is set it is applied first and the move
// prefix replayed after it.
type StartingPosition struct {
	Name  string
	Descr string
	Moves []string
	Fen   string
}

// MatchSet bundles the starting positions one engine pair plays
// through.  Every position is played GamesPerPosition times with
// colors rotated, so GamesPerPosition must be even.
type MatchSet struct {
	Name             string
	Descr            string
	Positions        []*StartingPosition
	GamesPerPosition int
}

// GameStatus is the game state as reported by an engine.  Result and
// Score are indexed by player (0 for player 1, 1 for player 2) and
// empty until the engine reports them.
type GameStatus struct {
	InProgress   bool
	PlayerToMove int
	Result       [2]string
	Score        [2]string
}

// Complete reports whether both players' result tokens were seen.
func (st *GameStatus) Complete() bool {
	return st.Result[0] != "" && st.Result[1] != ""
}

// Game is a single played (or failed) game.  Rating1 and Rating2 hold
// the ratings before the match set's update was applied; the ratings
// after are derived by the updater.
type Game struct {
	Id          int64
	Engine1     *Engine
	Engine2     *Engine
	Winner      *Engine
	IsDraw      bool
	Outcome     Outcome
	Rating1     int
	Rating2     int
	Moves       []string
	Duration    time.Duration
	Error       string
	FinalStatus string
	Position    string
	MatchSet    string
	Color1      Color
	Color2      Color
	Played      time.Time
}

func (g *Game) String() string {
	return fmt.Sprintf("%s (%s) vs. %s (%s): %s",
		g.Engine1.Name, g.Color1, g.Engine2.Name, g.Color2, g.Outcome)
}

// MatchSetResult aggregates the games of one match set.  Error games
// are recorded but contribute to neither score.
type MatchSetResult struct {
	Run       string
	Engine1   *Engine
	Engine2   *Engine
	Name      string
	Games     []*Game
	Score1    float64
	Score2    float64
	Total     int
	Completed bool
}

// Record appends a game and accounts for its score contribution.
func (r *MatchSetResult) Record(g *Game) {
	r.Games = append(r.Games, g)
	r.Total++
	switch g.Outcome {
	case WIN:
		r.Score1 += 1
	case LOSS:
		r.Score2 += 1
	case DRAW:
		r.Score1 += 0.5
		r.Score2 += 0.5
	}
}

// Played returns the number of non-error games, the denominator of
// the rating update.
func (r *MatchSetResult) Played() int {
	n := 0
	for _, g := range r.Games {
		if g.Outcome != ERROR {
			n++
		}
	}
	return n
}
