package arena

import (
	"testing"
	"time"
)

func TestParseTimeControl(t *testing.T) {
	for _, test := range []struct {
		in   string
		base time.Duration
		inc  time.Duration
		ok   bool
	}{
		{"30+0", 30 * time.Second, 0, true},
		{"5+0.1", 5 * time.Second, 100 * time.Millisecond, true},
		{"0.5+0", 500 * time.Millisecond, 0, true},
		{"60", 60 * time.Second, 0, true},
		{" 10+1 ", 10 * time.Second, time.Second, true},
		{"", 0, 0, false},
		{"0+1", 0, 0, false},
		{"-5+0", 0, 0, false},
		{"5+-1", 0, 0, false},
		{"abc+0", 0, 0, false},
	} {
		tc, err := ParseTimeControl(test.in)
		if test.ok != (err == nil) {
			t.Errorf("ParseTimeControl(%q): unexpected error state %v",
				test.in, err)
			continue
		}
		if !test.ok {
			continue
		}
		if tc.Base != test.base || tc.Increment != test.inc {
			t.Errorf("ParseTimeControl(%q) = %v+%v, want %v+%v",
				test.in, tc.Base, tc.Increment, test.base, test.inc)
		}
	}
}

func TestTimeControlString(t *testing.T) {
	for _, test := range []struct {
		tc   TimeControl
		want string
	}{
		{TimeControl{30 * time.Second, 0}, "30+0"},
		{TimeControl{5 * time.Second, 100 * time.Millisecond}, "5+0.1"},
	} {
		if got := test.tc.String(); got != test.want {
			t.Errorf("String() = %q, want %q", got, test.want)
		}
	}
}

func TestMatchSetResultRecord(t *testing.T) {
	e1 := &Engine{Id: 1, Name: "a"}
	e2 := &Engine{Id: 2, Name: "b"}

	res := &MatchSetResult{Engine1: e1, Engine2: e2}
	res.Record(&Game{Engine1: e1, Engine2: e2, Outcome: WIN})
	res.Record(&Game{Engine1: e1, Engine2: e2, Outcome: LOSS})
	res.Record(&Game{Engine1: e1, Engine2: e2, Outcome: DRAW})
	res.Record(&Game{Engine1: e1, Engine2: e2, Outcome: ERROR})

	if res.Score1 != 1.5 || res.Score2 != 1.5 {
		t.Errorf("scores %v-%v, want 1.5-1.5", res.Score1, res.Score2)
	}
	if res.Total != 4 {
		t.Errorf("total %d, want 4", res.Total)
	}
	if n := res.Played(); n != 3 {
		t.Errorf("played %d, want 3", n)
	}
}
