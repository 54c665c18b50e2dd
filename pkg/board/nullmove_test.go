package board_test

import (
	"testing"

	"github.com/tanagerchess/corvid/pkg/board"
	"github.com/tanagerchess/corvid/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullMoveFlipsTurnAndRestoresOnPop(t *testing.T) {
	b, err := fen.NewBoard(fen.Initial)
	require.NoError(t, err)

	turn := b.Turn()
	hash := b.Hash()
	ply := b.Ply()

	b.PushNullMove()
	assert.Equal(t, turn.Opponent(), b.Turn())
	assert.NotEqual(t, hash, b.Hash())
	assert.Equal(t, ply+1, b.Ply())

	b.PopNullMove()
	assert.Equal(t, turn, b.Turn())
	assert.Equal(t, hash, b.Hash())
	assert.Equal(t, ply, b.Ply())
}

func TestNullMoveClearsEnPassantAndRestoresIt(t *testing.T) {
	// after 1. e4, Black's en passant target square is e3.
	b, err := fen.NewBoard(fen.Initial)
	require.NoError(t, err)

	ok := b.PushMove(board.Move{Type: board.Jump, From: board.E2, To: board.E4, Piece: board.Pawn})
	require.True(t, ok)

	sq, has := b.Position().EnPassant()
	require.True(t, has)
	require.Equal(t, board.E3, sq)

	hashBeforeNull := b.Hash()

	b.PushNullMove()
	_, has = b.Position().EnPassant()
	assert.False(t, has, "null move must clear the en passant right")
	assert.NotEqual(t, hashBeforeNull, b.Hash())

	b.PopNullMove()
	sq, has = b.Position().EnPassant()
	assert.True(t, has)
	assert.Equal(t, board.E3, sq)
	assert.Equal(t, hashBeforeNull, b.Hash())
}
