package board_test

import (
	"testing"

	"github.com/tanagerchess/corvid/pkg/board"
	"github.com/tanagerchess/corvid/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticExchange(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		side     board.Color
		attacker board.Piece
		victim   board.Piece
		sq       board.Square
		expected int32
	}{
		{
			// White rook takes an undefended black pawn: pure material gain.
			name: "free pawn",
			fen:  "4k3/p7/8/8/8/8/8/R3K3 w - - 0 1",
			side: board.White, attacker: board.Rook, victim: board.Pawn, sq: board.A7,
			expected: 100,
		},
	}

	for _, tt := range tests {
		pos, _, _, _, err := fen.Decode(tt.fen)
		require.NoError(t, err)

		actual := board.StaticExchange(pos, tt.side, tt.attacker, tt.victim, tt.sq)
		assert.Equal(t, tt.expected, actual, "failed: %v", tt.name)
	}
}
