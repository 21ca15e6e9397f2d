// Websocket result feed
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

package web

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	arena "ugi-arena"
	"ugi-arena/cmd"
)

// feedGame is the JSON shape of a finished game on the live feed.
type feedGame struct {
	Engine1  string    `json:"engine1"`
	Engine2  string    `json:"engine2"`
	Outcome  string    `json:"outcome"`
	Moves    int       `json:"moves"`
	Position string    `json:"position"`
	MatchSet string    `json:"matchSet"`
	Duration int64     `json:"durationMs"`
	Played   time.Time `json:"played"`
}

type hub struct {
	lock  sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func makeHub() *hub {
	return &hub{conns: make(map[*websocket.Conn]struct{})}
}

// run forwards finished games to every connected client until
// shutdown.
func (h *hub) run(st *cmd.State) {
	for {
		select {
		case <-st.Context.Done():
			return
		case g := <-st.Results:
			h.broadcast(g)
		}
	}
}

func (h *hub) broadcast(g *arena.Game) {
	data, err := json.Marshal(feedGame{
		Engine1:  g.Engine1.Name,
		Engine2:  g.Engine2.Name,
		Outcome:  g.Outcome.String(),
		Moves:    len(g.Moves),
		Position: g.Position,
		MatchSet: g.MatchSet,
		Duration: g.Duration.Milliseconds(),
		Played:   g.Played,
	})
	if err != nil {
		log.Print(err)
		return
	}

	h.lock.Lock()
	defer h.lock.Unlock()
	for conn := range h.conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			arena.Debug.Printf("Dropping feed client %s: %s",
				conn.RemoteAddr(), err)
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// Upgrade a HTTP connection to a WebSocket and add it to the feed
func (h *hub) upgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := (&websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}).Upgrade(w, r, nil)
	if err != nil {
		arena.Debug.Printf("Unable to upgrade connection: %s", err)
		return
	}
	log.Printf("New feed connection from %s", conn.RemoteAddr())

	h.lock.Lock()
	h.conns[conn] = struct{}{}
	h.lock.Unlock()

	// Clients only listen; the reader just notices when they leave.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.lock.Lock()
				conn.Close()
				delete(h.conns, conn)
				h.lock.Unlock()
				return
			}
		}
	}()
}
