package rating_test

import (
	"context"
	"testing"
	"time"

	arena "ugi-arena"
	"ugi-arena/db"
	"ugi-arena/rating"
)

func twoEngines(t *testing.T, m *db.Memory, r1, r2 int) (*arena.Engine, *arena.Engine) {
	t.Helper()
	ctx := context.Background()
	e1, err := m.AddEngine(ctx, "one", r1, "")
	if err != nil {
		t.Fatal(err)
	}
	e2, err := m.AddEngine(ctx, "two", r2, "")
	if err != nil {
		t.Fatal(err)
	}
	return e1, e2
}

func game(e1, e2 *arena.Engine, o arena.Outcome) *arena.Game {
	g := &arena.Game{
		Engine1: e1,
		Engine2: e2,
		Outcome: o,
		Played:  time.Now(),
	}
	switch o {
	case arena.WIN:
		g.Winner = e1
	case arena.LOSS:
		g.Winner = e2
	case arena.DRAW:
		g.IsDraw = true
	case arena.ERROR:
		g.Error = "engine crashed"
	}
	return g
}

func TestApply(t *testing.T) {
	m := db.NewMemory()
	e1, e2 := twoEngines(t, m, 1500, 1500)

	res := &arena.MatchSetResult{Engine1: e1, Engine2: e2, Name: "t", Completed: true}
	res.Record(game(e1, e2, arena.WIN))
	res.Record(game(e1, e2, arena.WIN))
	res.Record(game(e1, e2, arena.LOSS))
	res.Record(game(e1, e2, arena.DRAW))

	ctx := context.Background()
	d1, d2, err := rating.Apply(ctx, m, res, 32)
	if err != nil {
		t.Fatal(err)
	}
	// 2.5 of 4 against an equal opponent: 32 * 0.125 = 4.
	if d1 != 4 || d2 != -4 {
		t.Fatalf("deltas %d/%d, want 4/-4", d1, d2)
	}

	u1, err := m.QueryEngine(ctx, e1.Id)
	if err != nil {
		t.Fatal(err)
	}
	u2, err := m.QueryEngine(ctx, e2.Id)
	if err != nil {
		t.Fatal(err)
	}
	if u1.Rating != 1504 || u2.Rating != 1496 {
		t.Errorf("ratings %d/%d, want 1504/1496", u1.Rating, u2.Rating)
	}
	if u1.Games != 4 || u1.Wins != 2 || u1.Losses != 1 || u1.Draws != 1 {
		t.Errorf("engine one counters %d/%d/%d/%d, want 4/2/1/1",
			u1.Games, u1.Wins, u1.Losses, u1.Draws)
	}
	if u2.Games != 4 || u2.Wins != 1 || u2.Losses != 2 || u2.Draws != 1 {
		t.Errorf("engine two counters %d/%d/%d/%d, want 4/1/2/1",
			u2.Games, u2.Wins, u2.Losses, u2.Draws)
	}

	games, err := m.QueryGames(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 4 {
		t.Fatalf("%d stored games, want 4", len(games))
	}
	for _, g := range games {
		if g.Rating1 != 1500 || g.Rating2 != 1500 {
			t.Errorf("stored ratings %d/%d, want the pre-update 1500/1500",
				g.Rating1, g.Rating2)
		}
	}
}

// Error games are stored but do not move ratings or counters.
func TestApplyErrorGamesOnly(t *testing.T) {
	m := db.NewMemory()
	e1, e2 := twoEngines(t, m, 1500, 1600)

	res := &arena.MatchSetResult{Engine1: e1, Engine2: e2, Name: "t"}
	res.Record(game(e1, e2, arena.ERROR))
	res.Record(game(e1, e2, arena.ERROR))

	ctx := context.Background()
	d1, d2, err := rating.Apply(ctx, m, res, 32)
	if err != nil {
		t.Fatal(err)
	}
	if d1 != 0 || d2 != 0 {
		t.Errorf("deltas %d/%d, want 0/0", d1, d2)
	}

	u1, _ := m.QueryEngine(ctx, e1.Id)
	if u1.Rating != 1500 || u1.Games != 0 {
		t.Errorf("engine mutated: rating %d, games %d", u1.Rating, u1.Games)
	}
	games, _ := m.QueryGames(ctx, 10)
	if len(games) != 2 {
		t.Errorf("%d stored games, want 2", len(games))
	}
}

// A mixed set counts only the non-error games in the denominator.
func TestApplyMixedErrors(t *testing.T) {
	m := db.NewMemory()
	e1, e2 := twoEngines(t, m, 1500, 1500)

	res := &arena.MatchSetResult{Engine1: e1, Engine2: e2, Name: "t"}
	res.Record(game(e1, e2, arena.WIN))
	res.Record(game(e1, e2, arena.ERROR))

	d1, d2, err := rating.Apply(context.Background(), m, res, 32)
	if err != nil {
		t.Fatal(err)
	}
	// One win of one scored game: a full half-K.
	if d1 != 16 || d2 != -16 {
		t.Errorf("deltas %d/%d, want 16/-16", d1, d2)
	}
}

// A failing commit must leave neither games nor ratings behind.
func TestApplyAtomic(t *testing.T) {
	m := db.NewMemory()
	e1, e2 := twoEngines(t, m, 1500, 1500)
	m.FailCommit = true

	res := &arena.MatchSetResult{Engine1: e1, Engine2: e2, Name: "t"}
	res.Record(game(e1, e2, arena.WIN))

	ctx := context.Background()
	d1, d2, err := rating.Apply(ctx, m, res, 32)
	if err == nil {
		t.Fatal("expected an error")
	}
	if d1 != 0 || d2 != 0 {
		t.Errorf("deltas %d/%d reported despite failure", d1, d2)
	}

	u1, _ := m.QueryEngine(ctx, e1.Id)
	if u1.Rating != 1500 || u1.Games != 0 {
		t.Errorf("engine mutated: rating %d, games %d", u1.Rating, u1.Games)
	}
	games, _ := m.QueryGames(ctx, 10)
	if len(games) != 0 {
		t.Errorf("%d games stored despite failure", len(games))
	}
}
