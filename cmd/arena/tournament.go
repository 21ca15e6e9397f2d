// The run-tournament subcommand
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
	"flag"

	arena "ugi-arena"
	"ugi-arena/sched"
	"ugi-arena/web"
)

func runTournament(args []string) int {
	fs := flag.NewFlagSet("run-tournament", flag.ExitOnError)
	var (
		rounds = fs.Int("rounds", 0,
			"Stop after N match sets (default from the document, 0 = run until interrupted)")
		concurrency = fs.Int("concurrency", 0,
			"Maximum concurrent match sets")
		tc = fs.String("time-control", "",
			"Override the time control (base+increment, in seconds)")
	)
	st, conf, err := setup(fs, args)
	if err != nil {
		return fail(err)
	}

	if *concurrency > 0 {
		conf.Tournament.Concurrency = *concurrency
	}
	if *tc != "" {
		if _, err := arena.ParseTimeControl(*tc); err != nil {
			return fail(err)
		}
		conf.Tournament.TimeControl = *tc
	}

	if _, _, err := syncEngines(st, conf, false); err != nil {
		return fail(err)
	}

	st.Register(sched.MakeTournament(conf.Rounds(*rounds)))
	web.Register(st, conf)

	st.Start(conf)
	return 0
}
