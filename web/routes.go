// Web request handlers
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
	"log"
	"net/http"
	"strconv"
	"time"

	arena "ugi-arena"
)

const dbTimeout = 20 * time.Second // arbitrary choice

// Generate the rankings page
func (s *web) index(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	engines, err := s.st.Database.QueryEngines(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Add("Content-Type", "text/html")
	w.Header().Add("Cache-Control", "max-age=60")
	err = tmpl.ExecuteTemplate(w, "index.tmpl", struct {
		Name    string
		Engines []*arena.Engine
	}{s.conf.Tournament.Name, engines})
	if err != nil {
		log.Print(err)
	}
}

// Generate the recent games page
func (s *web) games(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	games, err := s.st.Database.QueryGames(ctx, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Add("Content-Type", "text/html")
	err = tmpl.ExecuteTemplate(w, "games.tmpl", struct {
		Name  string
		Games []*arena.Game
	}{s.conf.Tournament.Name, games})
	if err != nil {
		log.Print(err)
	}
}
