// Session launching
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

package game

import (
	arena "ugi-arena"
	"ugi-arena/isol"
	"ugi-arena/ugi"
)

// StartSession launches an engine by executable, or inside a
// container when the configuration names an image instead.
func StartSession(ec *arena.EngineConfig) (*ugi.Session, error) {
	if ec.Image != "" {
		t, err := isol.Start(ec)
		if err != nil {
			return nil, err
		}
		return ugi.Attach(ec.Name, t, ec.Options), nil
	}
	return ugi.Start(ec)
}
