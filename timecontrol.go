// Time control handling
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

package arena

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeControl is a "base+increment" clock, both parts in seconds.
// The increment is credited after every reply.
type TimeControl struct {
	Base      time.Duration
	Increment time.Duration
}

func ParseTimeControl(s string) (TimeControl, error) {
	var tc TimeControl

	base, inc, found := strings.Cut(strings.TrimSpace(s), "+")
	b, err := strconv.ParseFloat(base, 64)
	if err != nil || b <= 0 {
		return tc, fmt.Errorf("invalid time control %q", s)
	}
	tc.Base = time.Duration(b * float64(time.Second))

	if found {
		i, err := strconv.ParseFloat(inc, 64)
		if err != nil || i < 0 {
			return tc, fmt.Errorf("invalid time control %q", s)
		}
		tc.Increment = time.Duration(i * float64(time.Second))
	}

	return tc, nil
}

func (tc TimeControl) String() string {
	return fmt.Sprintf("%g+%g", tc.Base.Seconds(), tc.Increment.Seconds())
}
