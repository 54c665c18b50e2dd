package search_test

import (
	"context"
	"testing"

	"github.com/tanagerchess/corvid/pkg/board"
	"github.com/tanagerchess/corvid/pkg/board/fen"
	"github.com/tanagerchess/corvid/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMVVLVA(t *testing.T) {
	nb := board.Move{Type: board.Normal, Piece: board.Bishop}
	nq := board.Move{Type: board.Normal, Piece: board.Queen}
	cqb := board.Move{Type: board.Capture, Piece: board.Queen, Capture: board.Bishop}
	crb := board.Move{Type: board.Capture, Piece: board.Rook, Capture: board.Bishop}
	ckb := board.Move{Type: board.Capture, Piece: board.Knight, Capture: board.Bishop}
	cqp := board.Move{Type: board.Capture, Piece: board.Queen, Capture: board.Pawn}
	crp := board.Move{Type: board.Capture, Piece: board.Rook, Capture: board.Pawn}
	pb := board.Move{Type: board.Promotion, Piece: board.Pawn, Promotion: board.Bishop}
	pr := board.Move{Type: board.Promotion, Piece: board.Pawn, Promotion: board.Rook}
	pq := board.Move{Type: board.Promotion, Piece: board.Pawn, Promotion: board.Queen}
	cpqr := board.Move{Type: board.CapturePromotion, Piece: board.Pawn, Promotion: board.Queen, Capture: board.Rook}
	cprb := board.Move{Type: board.CapturePromotion, Piece: board.Pawn, Promotion: board.Rook, Capture: board.Bishop}
	cpqb := board.Move{Type: board.CapturePromotion, Piece: board.Pawn, Promotion: board.Queen, Capture: board.Bishop}
	ep := board.Move{Type: board.EnPassant, Piece: board.Pawn}

	tests := []struct {
		in, out []board.Move
	}{
		{[]board.Move{nb, nq, ep}, []board.Move{ep, nb, nq}},
		{[]board.Move{cqb, crb, ckb, cqp, crp}, []board.Move{ckb, crb, cqb, crp, cqp}},
		{[]board.Move{pb, pr, pq}, []board.Move{pq, pr, pb}},
		{[]board.Move{cpqr, cprb, cpqb}, []board.Move{cpqr, cpqb, cprb}},

		{
			[]board.Move{nb, nq, cqb, crb, ckb, cqp, crp, pb, pr, pq, cpqr, cprb, cpqb, ep},
			[]board.Move{cpqr, cpqb, pq, cprb, pr, ckb, crb, cqb, pb, ep, crp, cqp, nb, nq},
		},
	}

	for _, tt := range tests {
		var moves []board.Move
		list := board.NewMoveList(tt.in, search.MVVLVA)
		for {
			move, ok := list.Next()
			if !ok {
				break
			}
			moves = append(moves, move)
		}
		assert.Equal(t, board.PrintMoves(moves), board.PrintMoves(tt.out))
	}
}

// FullExploration must rank a SEE-negative capture behind an ordinary quiet move: the rook
// on d1 can take the pawn on d6, but it is defended by the pawn on c7, so Rxd6 loses the
// exchange (rook for pawn).
func TestFullExplorationSortsLosingCaptureBehindQuietMoves(t *testing.T) {
	ctx := context.Background()
	b, err := fen.NewBoard("4k3/2p5/3p4/8/8/8/8/3RK3 w - - 0 1")
	require.NoError(t, err)

	priority, pick := search.FullExploration(ctx, b)

	losingCapture := board.Move{Type: board.Capture, From: board.D1, To: board.D6, Piece: board.Rook, Capture: board.Pawn}
	quiet := board.Move{Type: board.Normal, From: board.E1, To: board.E2, Piece: board.King}

	assert.True(t, pick(losingCapture))
	assert.Less(t, priority(losingCapture), priority(quiet))
}
