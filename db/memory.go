// In-memory store
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

package db

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	arena "ugi-arena"
	"ugi-arena/cmd"
)

// Memory is a heap-backed implementation of the store, used by tests
// and as a stand-in when no database is wanted.  Transactions stage
// their writes and apply them atomically on commit.
type Memory struct {
	mu      sync.Mutex
	next    int64
	engines map[int64]*arena.Engine
	games   []*arena.Game

	// FailCommit makes every Commit fail, leaving the store
	// untouched.  Test hook.
	FailCommit bool
}

func NewMemory() *Memory {
	return &Memory{engines: make(map[int64]*arena.Engine)}
}

func (m *Memory) String() string             { return "In-Memory Database" }
func (m *Memory) Start(*cmd.State, *cmd.Conf) {}
func (m *Memory) Shutdown()                  {}

func (m *Memory) Ping(context.Context) error { return nil }

func copyEngine(e *arena.Engine) *arena.Engine {
	c := *e
	return &c
}

func (m *Memory) QueryEngines(context.Context) ([]*arena.Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*arena.Engine, 0, len(m.engines))
	for _, e := range m.engines {
		out = append(out, copyEngine(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *Memory) QueryEngine(_ context.Context, id int64) (*arena.Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.engines[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyEngine(e), nil
}

func (m *Memory) QueryEngineName(_ context.Context, name string) (*arena.Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.engines {
		if e.Name == name {
			return copyEngine(e), nil
		}
	}
	return nil, nil
}

func (m *Memory) QueryGames(_ context.Context, limit int) ([]*arena.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*arena.Game
	for i := len(m.games) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.games[i])
	}
	return out, nil
}

func (m *Memory) QueryRecentGames(_ context.Context, since time.Time) ([]*arena.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*arena.Game
	for _, g := range m.games {
		if !g.Played.Before(since) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *Memory) QueryPairCounts(context.Context) (map[[2]int64]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[[2]int64]int)
	for _, g := range m.games {
		a, b := g.Engine1.Id, g.Engine2.Id
		if a > b {
			a, b = b, a
		}
		counts[[2]int64{a, b}]++
	}
	return counts, nil
}

func (m *Memory) AddEngine(_ context.Context, name string, rating int, descr string) (*arena.Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.engines {
		if e.Name == name {
			return nil, errors.New("engine already exists: " + name)
		}
	}
	m.next++
	e := &arena.Engine{
		Id:      m.next,
		Name:    name,
		Rating:  rating,
		Descr:   descr,
		Created: time.Now(),
	}
	m.engines[e.Id] = e
	return copyEngine(e), nil
}

func (m *Memory) UpdateEngineInfo(_ context.Context, id int64, rating int, descr string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.engines[id]
	if !ok {
		return sql.ErrNoRows
	}
	e.Rating = rating
	e.Descr = descr
	return nil
}

type update struct {
	id                         int64
	rating                     int
	games, wins, losses, draws int
}

type memTx struct {
	m       *Memory
	games   []*arena.Game
	updates []update
	done    bool
}

func (m *Memory) Begin(context.Context) (cmd.Tx, error) {
	return &memTx{m: m}, nil
}

func (t *memTx) Rating(id int64) (int, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	e, ok := t.m.engines[id]
	if !ok {
		return 0, sql.ErrNoRows
	}
	return e.Rating, nil
}

func (t *memTx) InsertGame(g *arena.Game) error {
	if t.done {
		return errors.New("transaction finished")
	}
	t.games = append(t.games, g)
	return nil
}

func (t *memTx) UpdateEngine(id int64, rating int, games, wins, losses, draws int) error {
	if t.done {
		return errors.New("transaction finished")
	}
	t.updates = append(t.updates, update{id, rating, games, wins, losses, draws})
	return nil
}

func (t *memTx) Commit() error {
	if t.done {
		return errors.New("transaction finished")
	}
	t.done = true

	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	if t.m.FailCommit {
		return errors.New("commit failed")
	}
	for _, u := range t.updates {
		e, ok := t.m.engines[u.id]
		if !ok {
			return sql.ErrNoRows
		}
		e.Rating = u.rating
		e.Games += uint64(u.games)
		e.Wins += uint64(u.wins)
		e.Losses += uint64(u.losses)
		e.Draws += uint64(u.draws)
	}
	t.m.games = append(t.m.games, t.games...)
	return nil
}

func (t *memTx) Rollback() error {
	t.done = true
	t.games, t.updates = nil, nil
	return nil
}
