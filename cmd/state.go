// Shared State
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

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	arena "ugi-arena"
)

type Manager interface {
	fmt.Stringer
	Start(*State, *Conf)
	Shutdown()
}

// Database is the narrow persistence surface the orchestrator
// consumes.  Everything that mutates ratings goes through Tx.
type Database interface {
	Manager

	// Access interface
	QueryEngines(context.Context) ([]*arena.Engine, error)
	QueryEngine(context.Context, int64) (*arena.Engine, error)
	QueryEngineName(context.Context, string) (*arena.Engine, error)
	QueryGames(context.Context, int) ([]*arena.Game, error)
	QueryRecentGames(context.Context, time.Time) ([]*arena.Game, error)
	QueryPairCounts(context.Context) (map[[2]int64]int, error)

	// Store interface
	AddEngine(ctx context.Context, name string, rating int, descr string) (*arena.Engine, error)
	UpdateEngineInfo(ctx context.Context, id int64, rating int, descr string) error

	Begin(context.Context) (Tx, error)
	Ping(context.Context) error
}

// Tx is the transactional slice of the store used by the rating
// updater.  Exactly one of Commit or Rollback must be called.
type Tx interface {
	// Rating reads an engine's current rating inside the
	// transaction.
	Rating(int64) (int, error)
	InsertGame(*arena.Game) error
	// UpdateEngine sets the new absolute rating and applies the
	// counter deltas.
	UpdateEngine(id int64, rating int, games, wins, losses, draws int) error
	Commit() error
	Rollback() error
}

type State struct {
	// Completed games, consumed by the web feed if one is running
	Results chan *arena.Game

	Context context.Context
	Kill    context.CancelFunc
	Running bool

	Database Database
	Managers []Manager
}

func MakeState() *State {
	ctx, kill := context.WithCancel(context.Background())
	return &State{
		Results: make(chan *arena.Game, 8),
		Context: ctx,
		Kill:    kill,
	}
}

func (st *State) Register(m Manager) {
	if st.Running {
		panic(fmt.Sprintf("Late register: %#v", m))
	}

	if d, ok := m.(Database); ok {
		st.Database = d
	}
	st.Managers = append(st.Managers, m)
}

// Start launches all managers and blocks until a shutdown signal or a
// Kill request, then shuts the managers down in reverse order.  A
// second signal forces the shutdown.
func (st *State) Start(c *Conf) {
	for _, m := range st.Managers {
		arena.Debug.Printf("Starting %s", m)
		go m.Start(st, c)
	}
	st.Running = true

	intr := make(chan os.Signal, 1)
	signal.Notify(intr, os.Interrupt, syscall.SIGTERM)
	select {
	case <-intr:
		log.Println("Caught interrupt")
	case <-st.Context.Done():
		log.Println("Requested shutdown")
	}

	done := make(chan struct{})
	go func() {
		arena.Debug.Println("Waiting for managers to shutdown...")
		for i := len(st.Managers) - 1; i >= 0; i-- {
			m := st.Managers[i]
			arena.Debug.Printf("Shutting %s down", m)
			m.Shutdown()
		}
		done <- struct{}{}
	}()

	select {
	case <-intr:
		log.Println("Forced shutdown")
	case <-done:
		log.Println("Shutting down regularly")
	}
}

// Publish hands a finished game to the result feed without blocking
// the scheduler when nobody consumes it.
func (st *State) Publish(g *arena.Game) {
	select {
	case st.Results <- g:
	default:
	}
}
