// Configuration
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
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	arena "ugi-arena"

	"github.com/BurntSushi/toml"
)

const defconf = "ugi-arena.json"

type PositionConf struct {
	Name  string   `json:"name" toml:"name"`
	Descr string   `json:"description" toml:"description"`
	Moves []string `json:"moves" toml:"moves"`
	Fen   string   `json:"fen" toml:"fen"`
}

type MatchSetConf struct {
	Name             string         `json:"name" toml:"name"`
	Descr            string         `json:"description" toml:"description"`
	GamesPerPosition int            `json:"gamesPerPosition" toml:"games-per-position"`
	Positions        []PositionConf `json:"startingPositions" toml:"starting-positions"`
}

type TournamentConf struct {
	Name            string         `json:"name" toml:"name"`
	Descr           string         `json:"description" toml:"description"`
	TimeControl     string         `json:"timeControl" toml:"time-control"`
	Rounds          int            `json:"rounds" toml:"rounds"`
	GamesPerPair    int            `json:"gamesPerPair" toml:"games-per-pair"`
	Concurrency     int            `json:"concurrency" toml:"concurrency"`
	DefaultMatchSet string         `json:"defaultMatchSet" toml:"default-match-set"`
	KFactor         int            `json:"kFactor" toml:"k-factor"`
	VolatilityHours int            `json:"volatilityHours" toml:"volatility-hours"`
	MatchSets       []MatchSetConf `json:"matchSets" toml:"match-sets"`
}

type EngineConf struct {
	Name       string                 `json:"name" toml:"name"`
	Executable string                 `json:"executable" toml:"executable"`
	Image      string                 `json:"image" toml:"image"`
	WorkDir    string                 `json:"workingDirectory" toml:"working-directory"`
	Arguments  []string               `json:"arguments" toml:"arguments"`
	Rating     int                    `json:"initialRating" toml:"initial-rating"`
	Enabled    *bool                  `json:"enabled" toml:"enabled"`
	Descr      string                 `json:"description" toml:"description"`
	Options    map[string]interface{} `json:"options" toml:"options"`
	Env        map[string]string      `json:"env" toml:"env"`
}

type WebConf struct {
	Enabled   bool `json:"enabled" toml:"enabled"`
	Port      uint `json:"port" toml:"port"`
	WebSocket bool `json:"websocket" toml:"websocket"`
}

type DatabaseConf struct {
	File string `json:"file" toml:"file"`
}

// Internal representation
type Conf struct {
	Tournament TournamentConf `json:"tournament" toml:"tournament"`
	Engines    []EngineConf   `json:"engines" toml:"engines"`
	Web        WebConf        `json:"web" toml:"web"`
	Database   DatabaseConf   `json:"database" toml:"database"`

	path   string
	debug  bool
	silent bool
}

// Configuration object used by default
func MakeConf() *Conf {
	path := defconf
	if env := os.Getenv("ENGINES_CONFIG"); env != "" {
		path = env
	}
	return &Conf{
		Tournament: TournamentConf{
			Name:            "ugi-arena",
			TimeControl:     "30+0",
			Concurrency:     2,
			KFactor:         32,
			VolatilityHours: 24,
		},
		Web: WebConf{
			Port:      8080,
			WebSocket: true,
		},
		Database: DatabaseConf{
			File: "arena.db",
		},
		path: path,
	}
}

// Flags registers the shared flags on a subcommand flag set.
func (c *Conf) Flags(fs *flag.FlagSet) {
	fs.StringVar(&c.path, "conf", c.path,
		"Path to configuration file")
	fs.StringVar(&c.Database.File, "db", c.Database.File,
		"File to use for the fallback SQLite database")
	fs.UintVar(&c.Web.Port, "wwwport", c.Web.Port,
		"Port to use for the HTTP server")
	fs.BoolVar(&c.Web.WebSocket, "websocket", c.Web.WebSocket,
		"Enable the WebSocket result feed")
	fs.BoolVar(&c.debug, "debug", c.debug, "Enable debug output")
	fs.BoolVar(&c.silent, "silent", c.silent, "Disable verbose output")
}

// SetPath overrides where Load reads the configuration document from.
func (c *Conf) SetPath(path string) { c.path = path }

// Load reads the configuration document.  A missing default file is
// not an error: the tournament starts with no engines.
func (c *Conf) Load() error {
	switch {
	case c.debug:
		arena.Debug.SetOutput(os.Stderr)
		log.Default().SetFlags(log.LstdFlags | log.Lshortfile)
		arena.Debug.Println("Debug logging has been enabled")
	case c.silent:
		log.Default().SetOutput(io.Discard)
	}

	file, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) && c.path == defconf {
			log.Printf("No configuration at %s, starting without engines", c.path)
			return nil
		}
		return err
	}
	defer file.Close()

	switch filepath.Ext(c.path) {
	case ".toml":
		_, err = toml.NewDecoder(file).Decode(c)
	default:
		err = json.NewDecoder(file).Decode(c)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", c.path, err)
	}

	if c.Tournament.GamesPerPair%2 != 0 {
		return fmt.Errorf("gamesPerPair must be even")
	}
	for i, ms := range c.Tournament.MatchSets {
		if ms.GamesPerPosition%2 != 0 {
			return fmt.Errorf("match set %q (%d): gamesPerPosition must be even",
				ms.Name, i+1)
		}
	}
	return nil
}

// Serialise the configuration into a writer
func (c *Conf) Dump(wr io.Writer) error {
	if filepath.Ext(c.path) == ".toml" {
		return toml.NewEncoder(wr).Encode(c)
	}
	enc := json.NewEncoder(wr)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

func (ec *EngineConf) IsEnabled() bool {
	return ec.Enabled == nil || *ec.Enabled
}

// Option values may be strings, numbers or booleans in the document;
// on the wire they are all strings.
func formatOption(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64: // toml decodes integers to int64
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}

func (ec *EngineConf) Config() *arena.EngineConfig {
	opts := make(map[string]string, len(ec.Options))
	for k, v := range ec.Options {
		opts[k] = formatOption(v)
	}
	rating := ec.Rating
	if rating == 0 {
		rating = 1500
	}
	return &arena.EngineConfig{
		Name:    ec.Name,
		Exec:    ec.Executable,
		Image:   ec.Image,
		Dir:     ec.WorkDir,
		Args:    ec.Arguments,
		Options: opts,
		Env:     ec.Env,
		Rating:  rating,
		Enabled: ec.IsEnabled(),
		Descr:   ec.Descr,
	}
}

// EngineConfigs returns the launchable configurations of all enabled
// engines.
func (c *Conf) EngineConfigs() []*arena.EngineConfig {
	var out []*arena.EngineConfig
	for i := range c.Engines {
		if c.Engines[i].IsEnabled() {
			out = append(out, c.Engines[i].Config())
		}
	}
	return out
}

func (c *Conf) EngineConfig(name string) *arena.EngineConfig {
	for i := range c.Engines {
		if c.Engines[i].Name == name {
			return c.Engines[i].Config()
		}
	}
	return nil
}

func (ms *MatchSetConf) MatchSet() *arena.MatchSet {
	set := &arena.MatchSet{
		Name:             ms.Name,
		Descr:            ms.Descr,
		GamesPerPosition: ms.GamesPerPosition,
	}
	for _, p := range ms.Positions {
		set.Positions = append(set.Positions, &arena.StartingPosition{
			Name:  p.Name,
			Descr: p.Descr,
			Moves: p.Moves,
			Fen:   p.Fen,
		})
	}
	// A set without positions plays from the initial position.
	if len(set.Positions) == 0 {
		set.Positions = []*arena.StartingPosition{{Name: "initial"}}
	}
	return set
}

// MatchSet resolves the match set to play: the configured default,
// the first configured one, or a synthetic single-position set with
// no move prefix.  A set without its own gamesPerPosition inherits
// the tournament's gamesPerPair.
func (c *Conf) MatchSet() *arena.MatchSet {
	set := c.selectMatchSet()
	if set.GamesPerPosition == 0 {
		set.GamesPerPosition = c.Tournament.GamesPerPair
	}
	if set.GamesPerPosition == 0 {
		set.GamesPerPosition = 2
	}
	return set
}

func (c *Conf) selectMatchSet() *arena.MatchSet {
	if def := c.Tournament.DefaultMatchSet; def != "" {
		for i := range c.Tournament.MatchSets {
			if c.Tournament.MatchSets[i].Name == def {
				return c.Tournament.MatchSets[i].MatchSet()
			}
		}
		log.Printf("Unknown default match set %q", def)
	}
	if len(c.Tournament.MatchSets) > 0 {
		return c.Tournament.MatchSets[0].MatchSet()
	}
	return &arena.MatchSet{
		Name:      "default",
		Positions: []*arena.StartingPosition{{Name: "initial"}},
	}
}

func (c *Conf) TimeControl() arena.TimeControl {
	tc, err := arena.ParseTimeControl(c.Tournament.TimeControl)
	if err != nil {
		log.Print(err)
		tc, _ = arena.ParseTimeControl("30+0")
	}
	return tc
}

func (c *Conf) KFactor() int {
	if c.Tournament.KFactor <= 0 {
		return 32
	}
	return c.Tournament.KFactor
}

func (c *Conf) VolatilityWindow() time.Duration {
	h := c.Tournament.VolatilityHours
	if h <= 0 {
		h = 24
	}
	return time.Duration(h) * time.Hour
}

// Rounds resolves the match-set bound: a flag override beats the
// document, zero means unbounded.
func (c *Conf) Rounds(flag int) int {
	if flag > 0 {
		return flag
	}
	return c.Tournament.Rounds
}

func (c *Conf) Concurrency() int {
	if c.Tournament.Concurrency <= 0 {
		return 2
	}
	return c.Tournament.Concurrency
}

// DatabaseDSN selects the database backend: Postgres when the
// standard connection environment is present, the SQLite file
// otherwise.
func (c *Conf) DatabaseDSN() (driver, dsn string) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return "pgx", dsn
	}
	if host := os.Getenv("PGHOST"); host != "" {
		port := os.Getenv("PGPORT")
		if port == "" {
			port = "5432"
		}
		name := os.Getenv("PGDATABASE")
		if name == "" {
			name = "arena"
		}
		u := url.URL{
			Scheme: "postgres",
			Host:   host + ":" + port,
			Path:   "/" + name,
		}
		if user := os.Getenv("PGUSER"); user != "" {
			if pass := os.Getenv("PGPASSWORD"); pass != "" {
				u.User = url.UserPassword(user, pass)
			} else {
				u.User = url.User(user)
			}
		}
		return "pgx", u.String()
	}
	return "sqlite3", c.Database.File + "?_fk=on"
}

// Dialect names the embedded SQL directory for the active backend.
func (c *Conf) Dialect() string {
	if driver, _ := c.DatabaseDSN(); driver == "pgx" {
		return "postgres"
	}
	return "sqlite"
}
