package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConf(t *testing.T, name, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadJSON(t *testing.T) {
	c := MakeConf()
	c.path = writeConf(t, "arena.json", `{
  "tournament": {
    "name": "smoke",
    "timeControl": "10+0.1",
    "kFactor": 24,
    "matchSets": [{
      "name": "openings",
      "gamesPerPosition": 4,
      "startingPositions": [{"name": "a"}, {"name": "b"}]
    }]
  },
  "engines": [
    {"name": "alpha", "executable": "/usr/bin/alpha"},
    {"name": "beta", "executable": "/usr/bin/beta", "enabled": false}
  ],
  "unknownKey": true
}`)
	if err := c.Load(); err != nil {
		t.Fatal(err)
	}

	if c.Tournament.Name != "smoke" || c.KFactor() != 24 {
		t.Errorf("tournament %q, K %d", c.Tournament.Name, c.KFactor())
	}
	if tc := c.TimeControl(); tc.String() != "10+0.1" {
		t.Errorf("time control %s, want 10+0.1", tc)
	}
	if n := len(c.EngineConfigs()); n != 1 {
		t.Errorf("%d enabled engines, want 1", n)
	}
	if ec := c.EngineConfig("beta"); ec == nil || ec.Enabled {
		t.Error("disabled engine missing or enabled")
	}

	set := c.MatchSet()
	if set.Name != "openings" || set.GamesPerPosition != 4 || len(set.Positions) != 2 {
		t.Errorf("match set %q: %d games per position, %d positions",
			set.Name, set.GamesPerPosition, len(set.Positions))
	}
}

func TestLoadTOML(t *testing.T) {
	c := MakeConf()
	c.path = writeConf(t, "arena.toml", `
[tournament]
name = "smoke"
concurrency = 4

[[engines]]
name = "alpha"
executable = "/usr/bin/alpha"

[engines.options]
Threads = 2
Ponder = false
Contempt = 0.5
Book = "varied.bin"
`)
	if err := c.Load(); err != nil {
		t.Fatal(err)
	}

	if c.Concurrency() != 4 {
		t.Errorf("concurrency %d, want 4", c.Concurrency())
	}
	ec := c.EngineConfig("alpha")
	if ec == nil {
		t.Fatal("engine alpha missing")
	}
	for opt, want := range map[string]string{
		"Threads":  "2",
		"Ponder":   "false",
		"Contempt": "0.5",
		"Book":     "varied.bin",
	} {
		if got := ec.Options[opt]; got != want {
			t.Errorf("option %s = %q, want %q", opt, got, want)
		}
	}
}

func TestLoadOddGames(t *testing.T) {
	c := MakeConf()
	c.path = writeConf(t, "arena.json", `{
  "tournament": {
    "matchSets": [{"name": "odd", "gamesPerPosition": 3}]
  }
}`)
	if err := c.Load(); err == nil {
		t.Error("odd gamesPerPosition accepted")
	}

	c = MakeConf()
	c.path = writeConf(t, "arena.json", `{
  "tournament": {"gamesPerPair": 5}
}`)
	if err := c.Load(); err == nil {
		t.Error("odd gamesPerPair accepted")
	}
}

func TestLoadMissingDefault(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	c := MakeConf()
	c.path = defconf
	if err := c.Load(); err != nil {
		t.Errorf("missing default configuration is an error: %v", err)
	}

	c.path = "explicit.json"
	if err := c.Load(); err == nil {
		t.Error("missing explicit configuration ignored")
	}
}

func TestMatchSetFallback(t *testing.T) {
	c := MakeConf()
	set := c.MatchSet()
	if set.Name != "default" || set.GamesPerPosition != 2 || len(set.Positions) != 1 {
		t.Errorf("synthetic set %q: %d games, %d positions",
			set.Name, set.GamesPerPosition, len(set.Positions))
	}

	c.Tournament.MatchSets = []MatchSetConf{
		{Name: "first"},
		{Name: "second"},
	}
	if set := c.MatchSet(); set.Name != "first" {
		t.Errorf("fallback picked %q, want the first set", set.Name)
	}

	c.Tournament.DefaultMatchSet = "second"
	if set := c.MatchSet(); set.Name != "second" {
		t.Errorf("default picked %q, want second", set.Name)
	}

	// An unknown default falls back to the first set.
	c.Tournament.DefaultMatchSet = "nonesuch"
	if set := c.MatchSet(); set.Name != "first" {
		t.Errorf("unknown default picked %q, want first", set.Name)
	}
}

// A configured match set without positions must still be playable.
func TestMatchSetNoPositions(t *testing.T) {
	c := MakeConf()
	c.Tournament.MatchSets = []MatchSetConf{{Name: "bare"}}

	set := c.MatchSet()
	if len(set.Positions) != 1 || set.Positions[0].Name != "initial" {
		t.Errorf("positions %v, want the initial position", set.Positions)
	}
}

// Sets without their own gamesPerPosition inherit the tournament's
// gamesPerPair; an explicit per-set value wins.
func TestGamesPerPair(t *testing.T) {
	c := MakeConf()
	c.Tournament.GamesPerPair = 4
	c.Tournament.MatchSets = []MatchSetConf{{Name: "inherit"}}

	if set := c.MatchSet(); set.GamesPerPosition != 4 {
		t.Errorf("games per position %d, want the inherited 4",
			set.GamesPerPosition)
	}

	c.Tournament.MatchSets[0].GamesPerPosition = 2
	if set := c.MatchSet(); set.GamesPerPosition != 2 {
		t.Errorf("games per position %d, want the set's own 2",
			set.GamesPerPosition)
	}
}

func TestRounds(t *testing.T) {
	c := MakeConf()
	if r := c.Rounds(0); r != 0 {
		t.Errorf("rounds %d, want 0", r)
	}

	c.Tournament.Rounds = 10
	if r := c.Rounds(0); r != 10 {
		t.Errorf("rounds %d, want the document's 10", r)
	}
	if r := c.Rounds(3); r != 3 {
		t.Errorf("rounds %d, want the flag's 3", r)
	}
}

func TestEngineConfDefaults(t *testing.T) {
	ec := EngineConf{Name: "plain", Executable: "/bin/true"}
	conf := ec.Config()
	if !conf.Enabled {
		t.Error("engine without the enabled key is disabled")
	}
	if conf.Rating != 1500 {
		t.Errorf("default rating %d, want 1500", conf.Rating)
	}
}
