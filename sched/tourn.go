// Continuous tournament scheduling
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

package sched

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	arena "ugi-arena"
	"ugi-arena/cmd"
	"ugi-arena/game"
	"ugi-arena/rating"
)

// How long to wait when no pair can be selected, and between retries
// after a persistence failure.
var idle = 5 * time.Second

// Tournament selects engine pairs by weight and plays match sets, at
// most Concurrency at a time.  The same engine may appear in several
// concurrent match sets; the transactional rating update keeps the
// aggregates consistent regardless.
type Tournament struct {
	// Rounds bounds how many match sets are scheduled; zero means
	// no bound.
	Rounds int

	// Play runs one match set; defaults to a Runner over the
	// configured engines.  Injected by tests.
	Play func(e1, e2 *arena.Engine) *arena.MatchSetResult

	rng  *rand.Rand
	grp  errgroup.Group
	shut chan struct{}
	done chan struct{}
	once sync.Once
}

func MakeTournament(rounds int) *Tournament {
	return &Tournament{
		Rounds: rounds,
		// Not a secure source of random values; the seed only makes
		// pair selection non-deterministic across runs.
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		shut: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (*Tournament) String() string { return "Tournament Scheduler" }

func (t *Tournament) Start(st *cmd.State, conf *cmd.Conf) {
	defer close(t.done)

	ctx, cancel := context.WithCancel(st.Context)
	defer cancel()
	go func() {
		select {
		case <-t.shut:
			cancel()
		case <-ctx.Done():
		}
	}()

	sem := semaphore.NewWeighted(int64(conf.Concurrency()))
	scheduled := 0
	for {
		if t.Rounds > 0 && scheduled >= t.Rounds {
			arena.Debug.Println("Round limit reached")
			st.Kill()
			return
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			return
		}

		pair, err := t.selectPair(ctx, st, conf)
		if err != nil {
			log.Print(err)
			sem.Release(1)
			if !t.pause(ctx) {
				return
			}
			continue
		}
		if pair == nil {
			sem.Release(1)
			if !t.pause(ctx) {
				return
			}
			continue
		}

		scheduled++
		e1, e2 := pair.e1, pair.e2
		t.grp.Go(func() error {
			defer sem.Release(1)
			t.playPair(st, conf, e1, e2)
			return nil
		})
	}
}

// pause sleeps for the idle interval, returning false when the
// scheduler should stop instead.
func (t *Tournament) pause(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(idle):
		return true
	}
}

// selectPair re-reads the standings and samples the next pair.  The
// snapshot is taken fresh for every selection, so rating updates from
// finished match sets influence the very next choice.
func (t *Tournament) selectPair(ctx context.Context, st *cmd.State, conf *cmd.Conf) (*candidate, error) {
	engines, err := st.Database.QueryEngines(ctx)
	if err != nil {
		return nil, err
	}
	if t.Play == nil {
		// Only engines we can actually launch take part.
		launchable := engines[:0]
		for _, e := range engines {
			if ec := conf.EngineConfig(e.Name); ec != nil && ec.Enabled {
				launchable = append(launchable, e)
			}
		}
		engines = launchable
	}
	if len(engines) < 2 {
		return nil, nil
	}

	since := time.Now().Add(-conf.VolatilityWindow())
	recent, err := st.Database.QueryRecentGames(ctx, since)
	if err != nil {
		return nil, err
	}
	pairs, err := st.Database.QueryPairCounts(ctx)
	if err != nil {
		return nil, err
	}

	return pick(weigh(engines, recent, pairs), t.rng), nil
}

func (t *Tournament) playPair(st *cmd.State, conf *cmd.Conf, e1, e2 *arena.Engine) {
	play := t.Play
	if play == nil {
		play = func(a, b *arena.Engine) *arena.MatchSetResult {
			r := &game.Runner{
				Engine1: a,
				Engine2: b,
				Config1: conf.EngineConfig(a.Name),
				Config2: conf.EngineConfig(b.Name),
				Set:     conf.MatchSet(),
				TC:      conf.TimeControl(),
			}
			return r.Play()
		}
	}

	run := uuid.NewString()
	log.Printf("Match set %s: %s vs. %s", run[:8], e1, e2)

	res := play(e1, e2)
	res.Run = run

	// Persistence must survive shutdown, so the update runs against
	// the background context and is retried until it lands.
	for {
		d1, d2, err := rating.Apply(context.Background(), st.Database, res, conf.KFactor())
		if err == nil {
			log.Printf("Match set %s: %s %.1f - %.1f %s (%+d/%+d)",
				run[:8], e1.Name, res.Score1, res.Score2, e2.Name, d1, d2)
			break
		}
		log.Printf("Match set %s: %s (retrying)", run[:8], err)
		select {
		case <-t.shut:
			return
		case <-time.After(idle):
		}
	}

	for _, g := range res.Games {
		st.Publish(g)
	}
}

// Shutdown stops selecting new pairs and drains the in-flight match
// sets.
func (t *Tournament) Shutdown() {
	t.once.Do(func() { close(t.shut) })
	<-t.done
	if err := t.grp.Wait(); err != nil {
		log.Print(err)
	}
	arena.Debug.Println("Scheduler drained")
}
