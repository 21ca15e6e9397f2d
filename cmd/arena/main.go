// Entry point
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

	"github.com/joho/godotenv"

	"ugi-arena/cmd"
	"ugi-arena/db"
)

type command struct {
	name  string
	descr string
	run   func(args []string) int
}

var commands = []command{
	{"init-db", "Create the database schema", initDB},
	{"load-config", "Register configured engines", loadConfig},
	{"run-tournament", "Run the continuous tournament", runTournament},
	{"play-game", "Play a single game between two engines", playGame},
	{"rankings", "Show the current standings", rankings},
	{"list-engines", "List the configured engines", listEngines},
	{"test-db", "Check the database connection", testDB},
	{"test-engine", "Check an engine installation", testEngine},
	{"dump-config", "Print the effective configuration", dumpConfig},
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s COMMAND [flags]\n\nCommands:\n",
		os.Args[0])
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-16s %s\n", c.name, c.descr)
	}
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, err)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	for _, c := range commands {
		if c.name == os.Args[1] {
			os.Exit(c.run(os.Args[2:]))
		}
	}
	fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", os.Args[1])
	usage()
	os.Exit(2)
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, err)
	return 1
}

// setup parses the shared flags, loads the configuration and connects
// the database.
func setup(fs *flag.FlagSet, args []string) (*cmd.State, *cmd.Conf, error) {
	conf := cmd.MakeConf()
	conf.Flags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if err := conf.Load(); err != nil {
		return nil, nil, err
	}

	st := cmd.MakeState()
	db.Register(st, conf)
	return st, conf, nil
}

// syncEngines makes sure every enabled engine from the configuration
// has a database row.  With REPLACE, rating and description of known
// engines are overwritten from the document.
func syncEngines(st *cmd.State, conf *cmd.Conf, replace bool) (added, updated int, err error) {
	ctx := context.Background()
	for _, ec := range conf.EngineConfigs() {
		e, err := st.Database.QueryEngineName(ctx, ec.Name)
		if err != nil {
			return added, updated, err
		}
		if e == nil {
			if _, err := st.Database.AddEngine(ctx, ec.Name, ec.Rating, ec.Descr); err != nil {
				return added, updated, err
			}
			added++
		} else if replace {
			if err := st.Database.UpdateEngineInfo(ctx, e.Id, ec.Rating, ec.Descr); err != nil {
				return added, updated, err
			}
			updated++
		}
	}
	return added, updated, nil
}
