// Engine session management
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

package ugi

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	arena "ugi-arena"
)

// Transport carries an engine's line stream and controls its
// lifetime.  Close shuts the input channel (stdin for processes),
// Kill terminates forcefully, Wait blocks until the engine is gone
// and may be called more than once.
type Transport interface {
	io.ReadWriteCloser
	Stderr() io.Reader
	Kill() error
	Wait() error
}

type Timeouts struct {
	Handshake time.Duration
	Move      time.Duration
	Status    time.Duration
	Grace     time.Duration
	Settle    time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Handshake: 10 * time.Second,
		Move:      30 * time.Second,
		Status:    5 * time.Second,
		Grace:     500 * time.Millisecond,
		Settle:    50 * time.Millisecond,
	}
}

// Session drives one engine through the UGI protocol.  All requests
// are issued one at a time; responses are matched by scanning the
// line stream in arrival order.
type Session struct {
	Timeouts Timeouts

	name string
	opts map[string]string

	t     Transport
	lines chan message
	exit  chan struct{}

	iolock sync.Mutex

	mu     sync.Mutex
	idname string
	author string

	quit sync.Once
}

// Attach wraps an already established transport.  The option map is
// sent during the handshake.
func Attach(name string, t Transport, opts map[string]string) *Session {
	s := &Session{
		Timeouts: DefaultTimeouts(),
		name:     name,
		opts:     opts,
		t:        t,
		lines:    make(chan message, 64),
		exit:     make(chan struct{}),
	}

	go s.read()
	if errs := t.Stderr(); errs != nil {
		go s.drainStderr(errs)
	}
	return s
}

// Start launches an engine process and attaches a session to it.
func Start(ec *arena.EngineConfig) (*Session, error) {
	t, err := StartProcess(ec)
	if err != nil {
		return nil, err
	}
	return Attach(ec.Name, t, ec.Options), nil
}

func (s *Session) String() string { return s.name }

// Ident returns what the engine reported via "id" lines.
func (s *Session) Ident() (name, author string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idname, s.author
}

func (s *Session) read() {
	scanner := bufio.NewScanner(s.t)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		arena.Debug.Println(s, "<", line)

		m := parse(line)
		switch m.kind {
		case comment:
			continue
		case ident:
			s.mu.Lock()
			switch m.key {
			case "name":
				s.idname = m.value
			case "author":
				s.author = m.value
			}
			s.mu.Unlock()
			continue
		}

		// Keep the newest lines when nobody is listening.
		for {
			select {
			case s.lines <- m:
			default:
				select {
				case <-s.lines:
				default:
				}
				continue
			}
			break
		}
	}
	if err := scanner.Err(); err != nil {
		arena.Debug.Printf("%s: read: %s", s, err)
	}
	close(s.exit)
}

func (s *Session) drainStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		arena.Debug.Printf("%s [stderr] %s", s, scanner.Text())
	}
}

func (s *Session) send(line string) error {
	s.iolock.Lock()
	defer s.iolock.Unlock()

	arena.Debug.Println(s, ">", line)
	if _, err := io.WriteString(s.t, line+"\n"); err != nil {
		return fmt.Errorf("%w: send %q: %s", ErrEngineExited, line, err)
	}
	return nil
}

func (s *Session) recv(deadline time.Time) (message, error) {
	// Buffered lines beat a pending exit.
	select {
	case m := <-s.lines:
		return m, nil
	default:
	}

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case m := <-s.lines:
		return m, nil
	case <-s.exit:
		return message{}, ErrEngineExited
	case <-timer.C:
		return message{}, ErrTimeout
	}
}

// drain discards lines left over from an earlier exchange, so that a
// new request is matched against fresh output only.
func (s *Session) drain() {
	for {
		select {
		case <-s.lines:
		default:
			return
		}
	}
}

// Handshake performs the ugi/setoption/isready exchange under one
// deadline.
func (s *Session) Handshake() error {
	deadline := time.Now().Add(s.Timeouts.Handshake)

	s.drain()
	if err := s.send("ugi"); err != nil {
		return err
	}
	for {
		m, err := s.recv(deadline)
		switch {
		case errors.Is(err, ErrTimeout):
			return ErrHandshakeTimeout
		case errors.Is(err, ErrEngineExited):
			// Dying instead of answering "ugi" is a refusal.
			return ErrHandshakeRejected
		case err != nil:
			return err
		}
		if m.kind == ugiok {
			break
		}
	}

	keys := make([]string, 0, len(s.opts))
	for k := range s.opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		err := s.send(fmt.Sprintf("setoption name %s value %s", k, s.opts[k]))
		if err != nil {
			return err
		}
	}

	if err := s.send("isready"); err != nil {
		return err
	}
	for {
		m, err := s.recv(deadline)
		switch {
		case errors.Is(err, ErrTimeout):
			return ErrHandshakeTimeout
		case err != nil:
			return err
		}
		if m.kind == readyok {
			return nil
		}
	}
}

// RequestMove asks the engine to search and returns its bestmove
// token.  Anything else the engine prints before the bestmove is
// informational.
func (s *Session) RequestMove(deadline time.Time) (string, error) {
	s.drain()
	if err := s.send("go"); err != nil {
		return "", err
	}
	for {
		m, err := s.recv(deadline)
		if err != nil {
			return "", err
		}
		if m.kind == bestmove {
			return m.move, nil
		}
	}
}

// ApplyMove forwards a move to the engine.  No response is expected;
// a short settling delay avoids interleaving with the next command.
func (s *Session) ApplyMove(move string) error {
	if err := s.send("makemove " + move); err != nil {
		return err
	}
	time.Sleep(s.Timeouts.Settle)
	return nil
}

// Setup applies an alternative initial state.  Engines that do not
// support the position command fail the readiness probe.
func (s *Session) Setup(fen string) error {
	if err := s.send("position fen " + fen); err != nil {
		return err
	}
	if err := s.Probe(time.Now().Add(s.Timeouts.Status)); err != nil {
		return fmt.Errorf("%w: %s", ErrSetupFailed, err)
	}
	return nil
}

// Probe checks that the engine still answers isready.  Used after a
// move timeout to decide whether the session is still usable.
func (s *Session) Probe(deadline time.Time) error {
	s.drain()
	if err := s.send("isready"); err != nil {
		return err
	}
	for {
		m, err := s.recv(deadline)
		if err != nil {
			return err
		}
		if m.kind == readyok {
			return nil
		}
	}
}

// QueryStatus requests the engine's view of the game.  While the game
// is in progress a single status line is expected; once it is over
// the per-player result lines are gathered until complete or the
// deadline elapses, returning whatever was seen.
func (s *Session) QueryStatus() (*arena.GameStatus, error) {
	deadline := time.Now().Add(s.Timeouts.Status)
	st := &arena.GameStatus{InProgress: true}

	s.drain()
	if err := s.send("status"); err != nil {
		return st, err
	}

	seen := false
	for {
		m, err := s.recv(deadline)
		switch {
		case errors.Is(err, ErrTimeout):
			if !seen {
				return st, ErrTimeout
			}
			return st, nil
		case err != nil:
			return st, err
		}

		switch m.kind {
		case status:
			seen = true
			st.PlayerToMove = m.toMove
			if m.state != "inprogress" {
				st.InProgress = false
			} else {
				// No result lines will follow.
				return st, nil
			}
		case infoPlayer:
			st.Result[m.player-1] = m.result
			st.Score[m.player-1] = m.score
			if !st.InProgress && st.Complete() {
				return st, nil
			}
		}
	}
}

// Shutdown asks the engine to quit, closes its input and force-kills
// it after a short grace period.  Idempotent.
func (s *Session) Shutdown() {
	s.quit.Do(func() {
		_ = s.send("quit")
		_ = s.t.Close()

		done := make(chan struct{})
		go func() {
			_ = s.t.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(s.Timeouts.Grace):
			arena.Debug.Printf("%s: killing after grace period", s)
			_ = s.t.Kill()
			<-done
		}
	})
}
