// Move clock
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
	"time"

	arena "ugi-arena"
)

// clock tracks both players' remaining thinking time.  The increment
// is credited after every reply; a single move never gets more than
// the hard cap.
type clock struct {
	remaining [2]time.Duration
	inc       time.Duration
	cap       time.Duration
}

func newClock(tc arena.TimeControl, cap time.Duration) *clock {
	return &clock{
		remaining: [2]time.Duration{tc.Base, tc.Base},
		inc:       tc.Increment,
		cap:       cap,
	}
}

// deadline returns the absolute deadline for player p's next move.
func (c *clock) deadline(p int) time.Time {
	d := c.remaining[p-1]
	if d > c.cap {
		d = c.cap
	}
	if d <= 0 {
		// Flag already fallen; the request times out at once.
		d = time.Millisecond
	}
	return time.Now().Add(d)
}

func (c *clock) spend(p int, d time.Duration) {
	c.remaining[p-1] += c.inc - d
}
