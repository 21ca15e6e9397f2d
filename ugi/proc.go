// Engine process control
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
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	arena "ugi-arena"
)

type process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser

	once   sync.Once
	waited chan struct{}
	werr   error
}

// StartProcess spawns an engine executable with its pipes attached.
func StartProcess(ec *arena.EngineConfig) (Transport, error) {
	cmd := exec.Command(ec.Exec, ec.Args...)
	cmd.Dir = ec.Dir

	cmd.Env = os.Environ()
	for k, v := range ec.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	p := &process{cmd: cmd, waited: make(chan struct{})}
	var err error
	if p.stdin, err = cmd.StdinPipe(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStartFailed, err)
	}
	if p.stdout, err = cmd.StdoutPipe(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStartFailed, err)
	}
	if p.stderr, err = cmd.StderrPipe(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStartFailed, err)
	}

	if err = cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrStartFailed, ec.Exec, err)
	}
	arena.Debug.Printf("Started %s (pid %d)", ec.Name, cmd.Process.Pid)
	return p, nil
}

func (p *process) Read(b []byte) (int, error)  { return p.stdout.Read(b) }
func (p *process) Write(b []byte) (int, error) { return p.stdin.Write(b) }
func (p *process) Close() error                { return p.stdin.Close() }
func (p *process) Stderr() io.Reader           { return p.stderr }

func (p *process) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

// Wait reaps the process.  Safe to call from multiple goroutines.
func (p *process) Wait() error {
	p.once.Do(func() {
		go func() {
			p.werr = p.cmd.Wait()
			close(p.waited)
		}()
	})
	<-p.waited
	return p.werr
}
