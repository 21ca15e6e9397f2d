// Built-in mock engine
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

// Package bot provides a deterministic in-process UGI engine.  It
// plays a trivial game that ends after a fixed number of plies with a
// scripted result, which is all the orchestrator ever observes.
package bot

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"ugi-arena/ugi"
)

type Mock struct {
	Name string

	// Winner is the player (1 or 2) reported as the winner once
	// Plies moves were played; 0 scripts a draw.
	Winner int
	Plies  int

	// Delay is the thinking time per move request, to exercise
	// deadlines.
	Delay time.Duration

	// DieAt makes the engine exit without replying once that many
	// moves were applied.  Zero disables it.
	DieAt int
}

func (m *Mock) name() string {
	if m.Name == "" {
		return "mock"
	}
	return m.Name
}

func (m *Mock) plies() int {
	if m.Plies <= 0 {
		return 6
	}
	return m.Plies
}

// Transport starts a fresh engine instance and returns the driver's
// end of its line channel.
func (m *Mock) Transport() ugi.Transport {
	ours, theirs := net.Pipe()
	t := &pipet{Conn: ours, done: make(chan struct{})}
	go m.run(theirs, t.done)
	return t
}

type pipet struct {
	net.Conn
	done chan struct{}
}

func (t *pipet) Stderr() io.Reader { return nil }
func (t *pipet) Kill() error       { return t.Conn.Close() }

func (t *pipet) Wait() error {
	<-t.done
	return nil
}

func (m *Mock) run(conn net.Conn, done chan struct{}) {
	defer close(done)
	defer conn.Close()

	moves := 0
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "ugi":
			fmt.Fprintf(conn, "id name %s\n", m.name())
			fmt.Fprint(conn, "id author ugi-arena\n")
			fmt.Fprint(conn, "ugiok\n")
		case "isready":
			fmt.Fprint(conn, "readyok\n")
		case "setoption", "position", "makemove":
			if fields[0] == "makemove" {
				moves++
			}
		case "go":
			if m.DieAt > 0 && moves >= m.DieAt {
				return
			}
			if m.Delay > 0 {
				time.Sleep(m.Delay)
			}
			fmt.Fprintf(conn, "bestmove m%d\n", moves+1)
		case "status":
			if moves < m.plies() {
				fmt.Fprintf(conn, "status inprogress playertomove %d\n",
					moves%2+1)
				continue
			}
			fmt.Fprint(conn, "status finished playertomove 1\n")
			switch m.Winner {
			case 1:
				fmt.Fprint(conn, "info player 1 result win score 1\n")
				fmt.Fprint(conn, "info player 2 result loss score 0\n")
			case 2:
				fmt.Fprint(conn, "info player 1 result loss score 0\n")
				fmt.Fprint(conn, "info player 2 result win score 1\n")
			default:
				fmt.Fprint(conn, "info player 1 result draw score 0.5\n")
				fmt.Fprint(conn, "info player 2 result draw score 0.5\n")
			}
		case "quit":
			return
		}
	}
}

// Session attaches a ready-to-handshake session to a fresh instance.
func (m *Mock) Session() *ugi.Session {
	s := ugi.Attach(m.name(), m.Transport(), nil)
	s.Timeouts.Settle = 0
	return s
}
