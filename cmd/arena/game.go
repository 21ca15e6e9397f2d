// The play-game and test-engine subcommands
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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	arena "ugi-arena"
	"ugi-arena/bot"
	"ugi-arena/cmd"
	"ugi-arena/game"
	"ugi-arena/rating"
)

// ensureEngine resolves a configured engine to its database row,
// creating the row on first contact.
func ensureEngine(st *cmd.State, conf *cmd.Conf, name string) (*arena.Engine, *arena.EngineConfig, error) {
	ec := conf.EngineConfig(name)
	if ec == nil {
		return nil, nil, fmt.Errorf("engine %q is not configured", name)
	}

	ctx := context.Background()
	e, err := st.Database.QueryEngineName(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	if e == nil {
		e, err = st.Database.AddEngine(ctx, name, ec.Rating, ec.Descr)
		if err != nil {
			return nil, nil, err
		}
	}
	return e, ec, nil
}

func playGame(args []string) int {
	fs := flag.NewFlagSet("play-game", flag.ExitOnError)
	var (
		name1 = fs.String("engine1", "", "First engine (plays white)")
		name2 = fs.String("engine2", "", "Second engine (plays black)")
		tc    = fs.String("time-control", "",
			"Override the time control (base+increment, in seconds)")
	)
	st, conf, err := setup(fs, args)
	if err != nil {
		return fail(err)
	}
	defer st.Database.Shutdown()

	if *name1 == "" || *name2 == "" {
		return fail(errors.New("play-game requires -engine1 and -engine2"))
	}
	if *name1 == *name2 {
		return fail(errors.New("an engine cannot play against itself"))
	}
	if *tc != "" {
		if _, err := arena.ParseTimeControl(*tc); err != nil {
			return fail(err)
		}
		conf.Tournament.TimeControl = *tc
	}

	e1, ec1, err := ensureEngine(st, conf, *name1)
	if err != nil {
		return fail(err)
	}
	e2, ec2, err := ensureEngine(st, conf, *name2)
	if err != nil {
		return fail(err)
	}

	// A single game is rated as a one-game match set.
	set := conf.MatchSet()
	r := &game.Runner{
		Engine1: e1,
		Engine2: e2,
		Config1: ec1,
		Config2: ec2,
		Set: &arena.MatchSet{
			Name:             set.Name,
			Positions:        set.Positions[:1],
			GamesPerPosition: 1,
		},
		TC: conf.TimeControl(),
	}
	res := r.Play()

	d1, d2, err := rating.Apply(context.Background(), st.Database, res, conf.KFactor())
	if err != nil {
		return fail(err)
	}

	g := res.Games[0]
	fmt.Println(g)
	if g.Outcome == arena.ERROR {
		fmt.Println("Error:", g.Error)
		return 1
	}
	fmt.Printf("Rating: %s %d%+d, %s %d%+d\n",
		e1.Name, g.Rating1, d1, e2.Name, g.Rating2, d2)
	return 0
}

func testEngine(args []string) int {
	fs := flag.NewFlagSet("test-engine", flag.ExitOnError)
	name := fs.String("engine", "",
		"Configured engine to probe (default: built-in mock)")
	conf := cmd.MakeConf()
	conf.Flags(fs)
	if err := fs.Parse(args); err != nil {
		return fail(err)
	}
	if err := conf.Load(); err != nil {
		return fail(err)
	}

	if *name == "" {
		return testMock()
	}

	ec := conf.EngineConfig(*name)
	if ec == nil {
		return fail(fmt.Errorf("engine %q is not configured", *name))
	}

	s, err := game.StartSession(ec)
	if err != nil {
		return fail(err)
	}
	defer s.Shutdown()

	if err := s.Handshake(); err != nil {
		return fail(fmt.Errorf("%s: %w", *name, err))
	}
	id, author := s.Ident()
	fmt.Printf("%s: ok (name %q, author %q)\n", *name, id, author)
	return 0
}

// testMock plays one game between two built-in engines, validating the
// whole driver path without external binaries.
func testMock() int {
	s1 := (&bot.Mock{Name: "mock-1", Winner: 1}).Session()
	s2 := (&bot.Mock{Name: "mock-2", Winner: 1}).Session()

	if err := s1.Handshake(); err != nil {
		return fail(err)
	}
	if err := s2.Handshake(); err != nil {
		return fail(err)
	}

	tc, _ := arena.ParseTimeControl("5+0")
	d := &game.Driver{
		Session1: s1,
		Session2: s2,
		Engine1:  &arena.Engine{Name: "mock-1", Rating: 1500},
		Engine2:  &arena.Engine{Name: "mock-2", Rating: 1500},
		Position: &arena.StartingPosition{Name: "initial"},
		TC:       tc,
	}
	g := d.Play()
	fmt.Println(g)
	if g.Outcome == arena.ERROR {
		fmt.Println("Error:", g.Error)
		return 1
	}
	return 0
}
