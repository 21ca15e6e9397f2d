// UGI line parsing
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

package ugi

import (
	"strconv"
	"strings"
)

type kind uint8

const (
	// Anything unrecognised is informational and never an error.
	unknown kind = iota
	comment
	ugiok
	readyok
	bestmove
	status
	infoPlayer
	ident
)

type message struct {
	kind   kind
	move   string
	state  string
	toMove int
	player int
	result string
	score  string
	key    string
	value  string
	raw    string
}

// parse interprets one line from an engine.  Trailing whitespace is
// ignored, lines starting with # are comments.
func parse(line string) message {
	m := message{kind: unknown, raw: strings.TrimRight(line, " \t\r")}

	if m.raw == "" || strings.HasPrefix(m.raw, "#") {
		m.kind = comment
		return m
	}

	fields := strings.Fields(m.raw)
	switch fields[0] {
	case "ugiok":
		m.kind = ugiok
	case "readyok":
		m.kind = readyok
	case "bestmove":
		if len(fields) < 2 {
			return m
		}
		m.kind = bestmove
		m.move = fields[1]
	case "status":
		if len(fields) < 2 {
			return m
		}
		m.kind = status
		m.state = fields[1]
		for i := 2; i+1 < len(fields); i += 2 {
			if fields[i] == "playertomove" {
				m.toMove, _ = strconv.Atoi(fields[i+1])
			}
		}
	case "info":
		if len(fields) < 3 || fields[1] != "player" {
			return m
		}
		n, err := strconv.Atoi(fields[2])
		if err != nil || (n != 1 && n != 2) {
			return m
		}
		m.kind = infoPlayer
		m.player = n
		for i := 3; i+1 < len(fields); i += 2 {
			switch fields[i] {
			case "result":
				m.result = fields[i+1]
			case "score":
				m.score = fields[i+1]
			}
		}
	case "id":
		if len(fields) < 3 {
			return m
		}
		m.kind = ident
		m.key = fields[1]
		m.value = strings.Join(fields[2:], " ")
	}
	return m
}
