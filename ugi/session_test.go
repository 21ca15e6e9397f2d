package ugi_test

import (
	"bufio"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"ugi-arena/bot"
	"ugi-arena/ugi"
)

type stubTransport struct {
	net.Conn
	done chan struct{}
}

func (t *stubTransport) Stderr() io.Reader { return nil }
func (t *stubTransport) Kill() error       { return t.Conn.Close() }

func (t *stubTransport) Wait() error {
	<-t.done
	return nil
}

// stubEngine runs HANDLER as the engine side of an in-memory line
// channel.
func stubEngine(handler func(net.Conn)) ugi.Transport {
	ours, theirs := net.Pipe()
	tr := &stubTransport{Conn: ours, done: make(chan struct{})}
	go func() {
		defer close(tr.done)
		defer theirs.Close()
		handler(theirs)
	}()
	return tr
}

func TestHandshake(t *testing.T) {
	s := (&bot.Mock{Name: "testee"}).Session()
	defer s.Shutdown()

	if err := s.Handshake(); err != nil {
		t.Fatal(err)
	}
	name, author := s.Ident()
	if name != "testee" {
		t.Errorf("ident name %q, want %q", name, "testee")
	}
	if author == "" {
		t.Error("ident author missing")
	}
}

func TestHandshakeRejected(t *testing.T) {
	tr := stubEngine(func(conn net.Conn) {
		// Read the greeting and die without answering.
		bufio.NewScanner(conn).Scan()
	})
	s := ugi.Attach("reject", tr, nil)
	defer s.Shutdown()

	if err := s.Handshake(); !errors.Is(err, ugi.ErrHandshakeRejected) {
		t.Errorf("Handshake() = %v, want %v", err, ugi.ErrHandshakeRejected)
	}
}

func TestHandshakeTimeout(t *testing.T) {
	tr := stubEngine(func(conn net.Conn) {
		// Swallow everything, never answer.
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
		}
	})
	s := ugi.Attach("silent", tr, nil)
	s.Timeouts.Handshake = 50 * time.Millisecond
	s.Timeouts.Grace = 10 * time.Millisecond
	defer s.Shutdown()

	if err := s.Handshake(); !errors.Is(err, ugi.ErrHandshakeTimeout) {
		t.Errorf("Handshake() = %v, want %v", err, ugi.ErrHandshakeTimeout)
	}
}

func TestRequestMove(t *testing.T) {
	s := (&bot.Mock{}).Session()
	defer s.Shutdown()
	if err := s.Handshake(); err != nil {
		t.Fatal(err)
	}

	move, err := s.RequestMove(time.Now().Add(time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if move != "m1" {
		t.Errorf("move %q, want %q", move, "m1")
	}

	if err := s.ApplyMove(move); err != nil {
		t.Fatal(err)
	}
	move, err = s.RequestMove(time.Now().Add(time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if move != "m2" {
		t.Errorf("move %q, want %q", move, "m2")
	}
}

func TestRequestMoveTimeout(t *testing.T) {
	s := (&bot.Mock{Delay: 200 * time.Millisecond}).Session()
	s.Timeouts.Grace = 10 * time.Millisecond
	defer s.Shutdown()
	if err := s.Handshake(); err != nil {
		t.Fatal(err)
	}

	_, err := s.RequestMove(time.Now().Add(30 * time.Millisecond))
	if !errors.Is(err, ugi.ErrTimeout) {
		t.Errorf("RequestMove() = %v, want %v", err, ugi.ErrTimeout)
	}
}

func TestRequestMoveEngineExit(t *testing.T) {
	s := (&bot.Mock{DieAt: 1}).Session()
	s.Timeouts.Grace = 10 * time.Millisecond
	defer s.Shutdown()
	if err := s.Handshake(); err != nil {
		t.Fatal(err)
	}
	if err := s.ApplyMove("m1"); err != nil {
		t.Fatal(err)
	}

	_, err := s.RequestMove(time.Now().Add(time.Second))
	if !errors.Is(err, ugi.ErrEngineExited) {
		t.Errorf("RequestMove() = %v, want %v", err, ugi.ErrEngineExited)
	}
}

func TestQueryStatus(t *testing.T) {
	s := (&bot.Mock{Winner: 1, Plies: 2}).Session()
	defer s.Shutdown()
	if err := s.Handshake(); err != nil {
		t.Fatal(err)
	}

	st, err := s.QueryStatus()
	if err != nil {
		t.Fatal(err)
	}
	if !st.InProgress || st.PlayerToMove != 1 {
		t.Errorf("status %+v, want in progress with player 1 to move", st)
	}

	for _, mv := range []string{"m1", "m2"} {
		if err := s.ApplyMove(mv); err != nil {
			t.Fatal(err)
		}
	}

	st, err = s.QueryStatus()
	if err != nil {
		t.Fatal(err)
	}
	if st.InProgress {
		t.Error("game still in progress after final ply")
	}
	if !st.Complete() {
		t.Errorf("incomplete result: %+v", st)
	}
	if st.Result[0] != "win" || st.Result[1] != "loss" {
		t.Errorf("results %v, want win/loss", st.Result)
	}
	if st.Score[0] != "1" || st.Score[1] != "0" {
		t.Errorf("scores %v, want 1/0", st.Score)
	}
}

func TestShutdownIdempotent(t *testing.T) {
	s := (&bot.Mock{}).Session()
	if err := s.Handshake(); err != nil {
		t.Fatal(err)
	}
	s.Shutdown()
	s.Shutdown()
}
