// Web interface
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
	"context"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"embed"

	arena "ugi-arena"
	"ugi-arena/cmd"
)

//go:embed *.tmpl
var html embed.FS

var (
	// Template manager
	tmpl *template.Template

	// Custom template functions
	funcs = template.FuncMap{
		"inc": func(i int) int {
			return i + 1
		},
		"timefmt": func(t time.Time) string {
			s := time.Since(t).Round(time.Second)
			switch {
			case s < 5*time.Second:
				return "now"
			case s < time.Minute:
				return fmt.Sprintf("%.0fs ago", s.Seconds())
			case s < time.Hour:
				return fmt.Sprintf("%.0fm ago", s.Minutes())
			default:
				return t.Format(time.Stamp)
			}
		},
		"now": func() string {
			return time.Now().Format(time.RFC3339)
		},
		"result": func(g *arena.Game) template.HTML {
			var msg string
			switch g.Outcome {
			case arena.WIN:
				msg = `<span class="won">` + g.Engine1.Name + ` won</span>`
			case arena.LOSS:
				msg = `<span class="won">` + g.Engine2.Name + ` won</span>`
			case arena.DRAW:
				msg = `<span class="draw">Draw</span>`
			case arena.ERROR:
				msg = `<span class="error">Aborted</span>`
			default:
				msg = "Ongoing"
			}
			return template.HTML(msg)
		},
		"score": func(e *arena.Engine) string {
			return fmt.Sprintf("%d/%d/%d", e.Wins, e.Losses, e.Draws)
		},
	}
)

type web struct {
	st   *cmd.State
	conf *cmd.Conf
	mux  *http.ServeMux
	srv  *http.Server
	hub  *hub
}

func (s *web) Start(st *cmd.State, conf *cmd.Conf) {
	s.st, s.conf = st, conf

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/games", s.games)
	s.mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /")
	})
	s.mux.HandleFunc("/", s.index)

	if conf.Web.WebSocket {
		log.Print("Accepting websocket connections on /ws")
		s.hub = makeHub()
		go s.hub.run(st)
		s.mux.HandleFunc("/ws", s.hub.upgrade)
	}

	tmpl = template.Must(template.New("").Funcs(funcs).ParseFS(html, "*.tmpl"))

	addr := fmt.Sprintf(":%d", conf.Web.Port)
	log.Printf("Listening via HTTP on %s", addr)
	s.srv = &http.Server{Addr: addr, Handler: s.mux}
	err := s.srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Print(err)
	}
}

func (s *web) Shutdown() {
	if s.srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		log.Print(err)
	}
}

func (*web) String() string { return "Web Server" }

func Register(st *cmd.State, conf *cmd.Conf) {
	if !conf.Web.Enabled {
		return
	}
	st.Register(&web{})
}
