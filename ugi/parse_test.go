package ugi

import "testing"

func TestParse(t *testing.T) {
	for _, test := range []struct {
		line string
		want message
	}{
		{"ugiok", message{kind: ugiok}},
		{"readyok", message{kind: readyok}},
		{"readyok \t\r", message{kind: readyok}},
		{"bestmove e2e4", message{kind: bestmove, move: "e2e4"}},
		{"bestmove", message{kind: unknown}},
		{"status inprogress playertomove 2",
			message{kind: status, state: "inprogress", toMove: 2}},
		{"status finished playertomove 1",
			message{kind: status, state: "finished", toMove: 1}},
		{"status finished",
			message{kind: status, state: "finished"}},
		{"info player 1 result win score 1",
			message{kind: infoPlayer, player: 1, result: "win", score: "1"}},
		{"info player 2 result draw score 0.5",
			message{kind: infoPlayer, player: 2, result: "draw", score: "0.5"}},
		{"info player 2 score 0 result loss",
			message{kind: infoPlayer, player: 2, result: "loss", score: "0"}},
		{"info player 3 result win", message{kind: unknown}},
		{"info depth 12 nodes 100000", message{kind: unknown}},
		{"id name Example Engine",
			message{kind: ident, key: "name", value: "Example Engine"}},
		{"id author someone",
			message{kind: ident, key: "author", value: "someone"}},
		{"# just chatting", message{kind: comment}},
		{"", message{kind: comment}},
		{"   \t", message{kind: comment}},
		{"option name Hash type spin", message{kind: unknown}},
	} {
		got := parse(test.line)
		if got.kind != test.want.kind {
			t.Errorf("parse(%q): kind %d, want %d",
				test.line, got.kind, test.want.kind)
			continue
		}
		if got.move != test.want.move ||
			got.state != test.want.state ||
			got.toMove != test.want.toMove ||
			got.player != test.want.player ||
			got.result != test.want.result ||
			got.score != test.want.score ||
			got.key != test.want.key ||
			got.value != test.want.value {
			t.Errorf("parse(%q) = %+v, want %+v",
				test.line, got, test.want)
		}
	}
}
