// Session failure taxonomy
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

import "errors"

var (
	ErrStartFailed       = errors.New("engine failed to start")
	ErrHandshakeTimeout  = errors.New("handshake deadline exceeded")
	ErrHandshakeRejected = errors.New("handshake rejected")
	ErrTimeout           = errors.New("response deadline exceeded")
	ErrBadResponse       = errors.New("unexpected engine response")
	ErrEngineExited      = errors.New("engine exited")
	ErrSetupFailed       = errors.New("position setup failed")
)
