// Docker-based engine isolation
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

// Package isol runs engines inside containers.  The container's
// attach stream doubles as the UGI line channel, so an image-hosted
// engine looks exactly like a local process to the session layer.
package isol

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/pkg/errors"

	arena "ugi-arena"
	"ugi-arena/ugi"
)

type docker struct {
	id   string
	cont *client.Client
	att  types.HijackedResponse
	out  *io.PipeReader
	errs *io.PipeReader

	once   sync.Once
	waited chan struct{}
	werr   error
}

// Start creates and starts a container for the engine and returns the
// attached line transport.
func Start(ec *arena.EngineConfig) (ugi.Transport, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to connect to docker")
	}

	env := make([]string, 0, len(ec.Env))
	for k, v := range ec.Env {
		env = append(env, k+"="+v)
	}

	// The library is a thin wrapper around the HTTP API; see
	// https://docs.docker.com/engine/api/v1.41/#operation/ContainerCreate
	ctx := context.Background()
	resp, err := cli.ContainerCreate(ctx, &container.Config{
		Image:        ec.Image,
		Cmd:          ec.Args,
		Env:          env,
		WorkingDir:   ec.Dir,
		OpenStdin:    true,
		StdinOnce:    true,
		AttachStdin:  true,
		AttachStdout: true,
		AttachStderr: true,
	}, &container.HostConfig{
		Resources: container.Resources{
			CPUCount: 1,
			Memory:   1024 * 1024 * 1024,
		},
		ReadonlyRootfs: true,
		AutoRemove:     true,
	}, nil, nil, fmt.Sprintf("%s-%d", ec.Name, time.Now().UnixNano()))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create container %s", ec.Image)
	}

	d := &docker{id: resp.ID, cont: cli, waited: make(chan struct{})}

	d.att, err = cli.ContainerAttach(ctx, d.id, types.ContainerAttachOptions{
		Stream: true,
		Stdin:  true,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to attach to container %s", ec.Image)
	}

	// Without a TTY the attach stream is multiplexed.
	var ow, ew *io.PipeWriter
	d.out, ow = io.Pipe()
	d.errs, ew = io.Pipe()
	go func() {
		_, err := stdcopy.StdCopy(ow, ew, d.att.Reader)
		ow.CloseWithError(err)
		ew.CloseWithError(err)
	}()

	if err := cli.ContainerStart(ctx, d.id, types.ContainerStartOptions{}); err != nil {
		_ = d.Kill()
		return nil, errors.Wrapf(err, "Failed to start container %s", ec.Image)
	}

	arena.Debug.Printf("Started container %s for %s", d.id[:12], ec.Name)
	return d, nil
}

func (d *docker) Read(b []byte) (int, error)  { return d.out.Read(b) }
func (d *docker) Write(b []byte) (int, error) { return d.att.Conn.Write(b) }
func (d *docker) Stderr() io.Reader           { return d.errs }

// Close shuts the engine's stdin.
func (d *docker) Close() error { return d.att.CloseWrite() }

func (d *docker) Kill() error {
	err := d.cont.ContainerKill(context.Background(), d.id, "SIGKILL")
	if err != nil {
		return errors.Wrapf(err, "Failed to kill container %s", d.id[:12])
	}
	return nil
}

// Wait blocks until the container stops.  Safe to call from multiple
// goroutines.
func (d *docker) Wait() error {
	d.once.Do(func() {
		go func() {
			okC, errC := d.cont.ContainerWait(context.Background(),
				d.id, container.WaitConditionNotRunning)
			select {
			case err := <-errC:
				d.werr = err
			case <-okC:
			}
			d.att.Close()
			close(d.waited)
		}()
	})
	<-d.waited
	return d.werr
}
