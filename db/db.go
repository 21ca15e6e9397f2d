// Database management
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
	"embed"
	"encoding/json"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	arena "ugi-arena"
	"ugi-arena/cmd"
)

//go:embed sql
var sqlDir embed.FS

type db struct {
	// The database connections
	read  *sql.DB
	write *sql.DB

	dialect string

	// The SQL statements are stored under ./sql/<dialect>/ and
	// loaded by the database manager.  QUERIES are the statements
	// handled by READ, COMMANDS are the statements handled by
	// WRITE.  Statements used inside transactions must live in
	// COMMANDS, since a transaction can only adopt statements
	// prepared on its own connection pool.
	queries  map[string]*sql.Stmt
	commands map[string]*sql.Stmt
}

func (db *db) scanEngine(scan func(dest ...interface{}) error) (*arena.Engine, error) {
	e := &arena.Engine{}
	return e, scan(
		&e.Id,
		&e.Name,
		&e.Descr,
		&e.Rating,
		&e.Games,
		&e.Wins,
		&e.Losses,
		&e.Draws,
		&e.Created)
}

func (db *db) QueryEngines(ctx context.Context) ([]*arena.Engine, error) {
	rows, err := db.queries["select-engines"].QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var engines []*arena.Engine
	for rows.Next() {
		e, err := db.scanEngine(rows.Scan)
		if err != nil {
			return nil, err
		}
		engines = append(engines, e)
	}
	return engines, rows.Err()
}

func (db *db) QueryEngine(ctx context.Context, id int64) (*arena.Engine, error) {
	row := db.queries["select-engine-id"].QueryRowContext(ctx, id)
	return db.scanEngine(row.Scan)
}

func (db *db) QueryEngineName(ctx context.Context, name string) (*arena.Engine, error) {
	row := db.queries["select-engine-name"].QueryRowContext(ctx, name)
	e, err := db.scanEngine(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

func parseColor(s string) arena.Color {
	if s == "black" {
		return arena.Black
	}
	return arena.White
}

func (db *db) scanGame(ctx context.Context, scan func(dest ...interface{}) error) (*arena.Game, error) {
	var (
		g      arena.Game
		e1, e2 int64
		winner sql.NullInt64
		moves  []byte
		durms  int64
		emsg   sql.NullString
		c1, c2 string
	)
	err := scan(
		&g.Id,
		&e1, &e2, &winner,
		&g.IsDraw,
		&g.Rating1, &g.Rating2,
		&moves, &durms, &emsg,
		&g.FinalStatus,
		&g.Position, &g.MatchSet,
		&c1, &c2,
		&g.Played)
	if err != nil {
		return nil, err
	}

	if g.Engine1, err = db.QueryEngine(ctx, e1); err != nil {
		return nil, err
	}
	if g.Engine2, err = db.QueryEngine(ctx, e2); err != nil {
		return nil, err
	}
	if winner.Valid {
		if winner.Int64 == e1 {
			g.Winner = g.Engine1
		} else {
			g.Winner = g.Engine2
		}
	}

	if len(moves) > 0 {
		if err := json.Unmarshal(moves, &g.Moves); err != nil {
			return nil, err
		}
	}
	g.Duration = time.Duration(durms) * time.Millisecond
	g.Error = emsg.String
	g.Color1 = parseColor(c1)
	g.Color2 = parseColor(c2)

	// The outcome is not stored, it follows from the row.
	switch {
	case winner.Valid && winner.Int64 == e1:
		g.Outcome = arena.WIN
	case winner.Valid:
		g.Outcome = arena.LOSS
	case g.IsDraw:
		g.Outcome = arena.DRAW
	case g.Error != "":
		g.Outcome = arena.ERROR
	default:
		g.Outcome = arena.DRAW
	}
	return &g, nil
}

func (db *db) queryGames(ctx context.Context, rows *sql.Rows) ([]*arena.Game, error) {
	defer rows.Close()
	var games []*arena.Game
	for rows.Next() {
		g, err := db.scanGame(ctx, rows.Scan)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (db *db) QueryGames(ctx context.Context, limit int) ([]*arena.Game, error) {
	rows, err := db.queries["select-games"].QueryContext(ctx, limit)
	if err != nil {
		return nil, err
	}
	return db.queryGames(ctx, rows)
}

func (db *db) QueryRecentGames(ctx context.Context, since time.Time) ([]*arena.Game, error) {
	rows, err := db.queries["select-recent-games"].QueryContext(ctx, since)
	if err != nil {
		return nil, err
	}
	return db.queryGames(ctx, rows)
}

// QueryPairCounts returns how many games each engine pair has on
// record, keyed by the ordered id pair.
func (db *db) QueryPairCounts(ctx context.Context) (map[[2]int64]int, error) {
	rows, err := db.queries["select-pair-counts"].QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[[2]int64]int)
	for rows.Next() {
		var a, b int64
		var n int
		if err := rows.Scan(&a, &b, &n); err != nil {
			return nil, err
		}
		if a > b {
			a, b = b, a
		}
		counts[[2]int64{a, b}] += n
	}
	return counts, rows.Err()
}

// AddEngine inserts a new engine row and reads it back.  The
// round-trip keeps the id handling uniform across backends.
func (db *db) AddEngine(ctx context.Context, name string, rating int, descr string) (*arena.Engine, error) {
	_, err := db.commands["insert-engine"].ExecContext(ctx, name, rating, descr)
	if err != nil {
		return nil, err
	}
	return db.QueryEngineName(ctx, name)
}

func (db *db) UpdateEngineInfo(ctx context.Context, id int64, rating int, descr string) error {
	_, err := db.commands["update-engine-info"].ExecContext(ctx, rating, descr, id)
	return err
}

type tx struct {
	ctx context.Context
	tx  *sql.Tx
	db  *db
}

func (db *db) Begin(ctx context.Context) (cmd.Tx, error) {
	t, err := db.write.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &tx{ctx: ctx, tx: t, db: db}, nil
}

func (t *tx) Rating(id int64) (int, error) {
	var rating int
	err := t.tx.Stmt(t.db.commands["rating"]).
		QueryRowContext(t.ctx, id).Scan(&rating)
	return rating, err
}

func (t *tx) InsertGame(g *arena.Game) error {
	var winner sql.NullInt64
	if g.Winner != nil {
		winner = sql.NullInt64{Int64: g.Winner.Id, Valid: true}
	}
	var emsg sql.NullString
	if g.Error != "" {
		emsg = sql.NullString{String: g.Error, Valid: true}
	}
	if g.Moves == nil {
		g.Moves = []string{}
	}
	moves, err := json.Marshal(g.Moves)
	if err != nil {
		return err
	}

	_, err = t.tx.Stmt(t.db.commands["insert-game"]).ExecContext(t.ctx,
		g.Engine1.Id, g.Engine2.Id, winner,
		g.IsDraw,
		g.Rating1, g.Rating2,
		string(moves),
		g.Duration.Milliseconds(),
		emsg,
		g.FinalStatus,
		g.Position, g.MatchSet,
		g.Color1.String(), g.Color2.String(),
		g.Played)
	return err
}

func (t *tx) UpdateEngine(id int64, rating int, games, wins, losses, draws int) error {
	_, err := t.tx.Stmt(t.db.commands["update-engine"]).ExecContext(t.ctx,
		rating, games, wins, losses, draws, id)
	return err
}

func (t *tx) Commit() error   { return t.tx.Commit() }
func (t *tx) Rollback() error { return t.tx.Rollback() }

func (db *db) Ping(ctx context.Context) error {
	return db.read.PingContext(ctx)
}

// Start runs periodic maintenance until shutdown.  SIGUSR1 triggers an
// immediate VACUUM.
func (db *db) Start(st *cmd.State, conf *cmd.Conf) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGUSR1)
	tick := time.NewTicker(24 * time.Hour)
	defer tick.Stop()
	for {
		var err error
		select {
		case <-st.Context.Done():
			return
		case <-c:
			// https://www.sqlite.org/lang_vacuum.html
			_, err = db.write.Exec("VACUUM;")
		case <-tick.C:
			if db.dialect == "sqlite" {
				// https://www.sqlite.org/pragma.html#pragma_optimize
				_, err = db.write.Exec("PRAGMA optimize;")
			} else {
				_, err = db.write.Exec("ANALYZE;")
			}
		}
		if err != nil {
			log.Print(err)
		}
	}
}

func (db *db) Shutdown() {
	if db.dialect == "sqlite" {
		// https://www.sqlite.org/pragma.html#pragma_optimize
		if _, err := db.write.Exec("PRAGMA optimize;"); err != nil {
			log.Print(err)
		}
	}
	if err := db.write.Close(); err != nil {
		log.Print(err)
	}
	if err := db.read.Close(); err != nil {
		log.Print(err)
	}
}

func (*db) String() string { return "Database Manager" }

// Register opens the configured backend, runs the schema statements
// and prepares the rest.
func Register(st *cmd.State, conf *cmd.Conf) {
	driver, dsn := conf.DatabaseDSN()

	read, err := sql.Open(driver, dsn)
	if err != nil {
		log.Fatal(err, ": ", dsn)
	}
	read.SetConnMaxLifetime(0)
	read.SetMaxIdleConns(1)

	write, err := sql.Open(driver, dsn)
	if err != nil {
		log.Fatal(err, ": ", dsn)
	}
	write.SetConnMaxLifetime(0)
	write.SetMaxIdleConns(1)
	write.SetMaxOpenConns(1)

	db := &db{
		queries:  make(map[string]*sql.Stmt),
		commands: make(map[string]*sql.Stmt),
		dialect:  conf.Dialect(),
		write:    write,
		read:     read,
	}

	if db.dialect == "sqlite" {
		for _, pragma := range []string{
			// https://www.sqlite.org/pragma.html#pragma_journal_mode
			"journal_mode = WAL",
			// https://www.sqlite.org/pragma.html#pragma_synchronous
			"synchronous = normal",
			// https://www.sqlite.org/pragma.html#pragma_temp_store
			"temp_store = memory",
			// https://www.sqlite.org/pragma.html#pragma_foreign_keys
			"foreign_keys = on",
		} {
			arena.Debug.Printf("Run PRAGMA %v", pragma)
			_, err = db.write.Exec("PRAGMA " + pragma + ";")
			if err != nil {
				log.Fatal(err)
			}
		}
	}

	dir := path.Join("sql", db.dialect)
	entries, err := sqlDir.ReadDir(dir)
	if err != nil {
		log.Fatal(err)
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		base := path.Base(entry.Name())
		data, err := fs.ReadFile(sqlDir, path.Join(dir, entry.Name()))
		if err != nil {
			log.Fatal(err)
		}

		if strings.HasPrefix(base, "create-") || strings.HasPrefix(base, "run-") {
			_, err = db.write.Exec(string(data))
			arena.Debug.Printf("Executed %v", base)
		} else {
			name := strings.TrimSuffix(base, ".sql")
			if strings.HasPrefix(name, "select-") {
				db.queries[name], err = db.read.Prepare(string(data))
				arena.Debug.Printf("Registered query %v", name)
			} else {
				db.commands[name], err = db.write.Prepare(string(data))
				arena.Debug.Printf("Registered command %v", name)
			}
		}
		if err != nil {
			log.Fatal(entry.Name(), ": ", err)
		}
	}

	if len(db.queries) == 0 {
		panic("No queries loaded")
	}

	st.Register(cmd.Database(db))
}
