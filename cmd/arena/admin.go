// Administrative subcommands
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
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"ugi-arena/cmd"
	"ugi-arena/db"
)

// The schema statements run while connecting, so init-db only has to
// verify the result.
func initDB(args []string) int {
	fs := flag.NewFlagSet("init-db", flag.ExitOnError)
	st, conf, err := setup(fs, args)
	if err != nil {
		return fail(err)
	}
	defer st.Database.Shutdown()

	if err := st.Database.Ping(context.Background()); err != nil {
		return fail(err)
	}
	fmt.Printf("Database schema ready (%s)\n", conf.Dialect())
	return 0
}

func loadConfig(args []string) int {
	fs := flag.NewFlagSet("load-config", flag.ExitOnError)
	var (
		file    = fs.String("file", "", "Alternative configuration document")
		replace = fs.Bool("replace", false,
			"Update rating and description of known engines")
	)
	conf := cmd.MakeConf()
	conf.Flags(fs)
	if err := fs.Parse(args); err != nil {
		return fail(err)
	}
	if *file != "" {
		conf.SetPath(*file)
	}
	if err := conf.Load(); err != nil {
		return fail(err)
	}

	st := cmd.MakeState()
	db.Register(st, conf)
	defer st.Database.Shutdown()

	added, updated, err := syncEngines(st, conf, *replace)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("%d engine(s) added, %d updated\n", added, updated)
	return 0
}

func testDB(args []string) int {
	fs := flag.NewFlagSet("test-db", flag.ExitOnError)
	st, conf, err := setup(fs, args)
	if err != nil {
		return fail(err)
	}
	defer st.Database.Shutdown()

	ctx := context.Background()
	if err := st.Database.Ping(ctx); err != nil {
		return fail(err)
	}
	engines, err := st.Database.QueryEngines(ctx)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Connection ok (%s), %d engine(s) on record\n",
		conf.Dialect(), len(engines))
	return 0
}

func rankings(args []string) int {
	fs := flag.NewFlagSet("rankings", flag.ExitOnError)
	var (
		limit    = fs.Int("limit", 0, "Show only the top N engines")
		detailed = fs.Bool("detailed", false, "Include per-engine statistics")
	)
	st, _, err := setup(fs, args)
	if err != nil {
		return fail(err)
	}
	defer st.Database.Shutdown()

	engines, err := st.Database.QueryEngines(context.Background())
	if err != nil {
		return fail(err)
	}
	if *limit > 0 && len(engines) > *limit {
		engines = engines[:*limit]
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 8, 2, ' ', 0)
	if *detailed {
		fmt.Fprintln(w, "#\tEngine\tRating\tGames\tWins\tLosses\tDraws\tSince")
		for i, e := range engines {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
				i+1, e.Name, e.Rating, e.Games,
				e.Wins, e.Losses, e.Draws,
				e.Created.Format("2006-01-02"))
		}
	} else {
		fmt.Fprintln(w, "#\tEngine\tRating")
		for i, e := range engines {
			fmt.Fprintf(w, "%d\t%s\t%d\n", i+1, e.Name, e.Rating)
		}
	}
	return failIf(w.Flush())
}

func listEngines(args []string) int {
	fs := flag.NewFlagSet("list-engines", flag.ExitOnError)
	conf := cmd.MakeConf()
	conf.Flags(fs)
	if err := fs.Parse(args); err != nil {
		return fail(err)
	}
	if err := conf.Load(); err != nil {
		return fail(err)
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 8, 2, ' ', 0)
	fmt.Fprintln(w, "Engine\tTarget\tRating\tEnabled")
	for i := range conf.Engines {
		ec := conf.Engines[i].Config()
		target := ec.Exec
		if ec.Image != "" {
			target = "image:" + ec.Image
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%t\n",
			ec.Name, target, ec.Rating, ec.Enabled)
	}
	return failIf(w.Flush())
}

func dumpConfig(args []string) int {
	fs := flag.NewFlagSet("dump-config", flag.ExitOnError)
	conf := cmd.MakeConf()
	conf.Flags(fs)
	if err := fs.Parse(args); err != nil {
		return fail(err)
	}
	if err := conf.Load(); err != nil {
		return fail(err)
	}
	return failIf(conf.Dump(os.Stdout))
}

func failIf(err error) int {
	if err != nil {
		return fail(err)
	}
	return 0
}
