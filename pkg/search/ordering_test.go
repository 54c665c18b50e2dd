package search_test

import (
	"testing"

	"github.com/tanagerchess/corvid/pkg/board"
	"github.com/tanagerchess/corvid/pkg/search"
	"github.com/stretchr/testify/assert"
)

func TestOrderingRecordCutoffPromotesKiller(t *testing.T) {
	o := search.NewOrdering()

	quiet := board.Move{Type: board.Normal, From: board.E2, To: board.E4, Piece: board.Pawn}
	other := board.Move{Type: board.Normal, From: board.G1, To: board.F3, Piece: board.Knight}

	before := o.Priority(board.Move{}, 3)(quiet)
	o.RecordCutoff(board.Move{}, quiet, 3, 4, []board.Move{other})
	after := o.Priority(board.Move{}, 3)(quiet)

	assert.Greater(t, after, before)
	assert.Equal(t, board.MovePriority(1<<14), after) // now the ply-3 killer
}

func TestOrderingRecordCutoffPenalizesFailedQuietMoves(t *testing.T) {
	o := search.NewOrdering()

	winner := board.Move{Type: board.Normal, From: board.E2, To: board.E4, Piece: board.Pawn}
	loser := board.Move{Type: board.Normal, From: board.G1, To: board.F3, Piece: board.Knight}

	before := o.Priority(board.Move{}, 0)(loser)
	o.RecordCutoff(board.Move{}, winner, 5, 4, []board.Move{loser})
	after := o.Priority(board.Move{}, 0)(loser)

	assert.Less(t, after, before)
}

func TestOrderingCounterMove(t *testing.T) {
	o := search.NewOrdering()

	prev := board.Move{Type: board.Normal, From: board.D2, To: board.D4, Piece: board.Pawn}
	reply := board.Move{Type: board.Normal, From: board.G8, To: board.F6, Piece: board.Knight}

	_, ok := o.CounterMove(prev)
	assert.False(t, ok)

	o.RecordCutoff(prev, reply, 1, 3, nil)

	got, ok := o.CounterMove(prev)
	assert.True(t, ok)
	assert.True(t, got.Equals(reply))
}

func TestOrderingIgnoresCapturesAndPromotions(t *testing.T) {
	o := search.NewOrdering()

	capture := board.Move{Type: board.Capture, From: board.E4, To: board.D5, Piece: board.Pawn, Capture: board.Pawn}
	o.RecordCutoff(board.Move{}, capture, 2, 4, nil)

	assert.Equal(t, board.MovePriority(0), o.Priority(board.Move{}, 2)(capture))
}

func TestOrderingDecayShrinksHistory(t *testing.T) {
	o := search.NewOrdering()

	m := board.Move{Type: board.Normal, From: board.E2, To: board.E4, Piece: board.Pawn}
	o.RecordCutoff(board.Move{}, m, 0, 16, nil)

	before := o.Priority(board.Move{}, 10)(m) // different ply: not a killer there
	o.Decay()
	after := o.Priority(board.Move{}, 10)(m)

	assert.Greater(t, before, board.MovePriority(0))
	assert.Less(t, after, before)
}
