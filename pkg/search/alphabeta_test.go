package search_test

import (
	"context"
	"testing"

	"github.com/tanagerchess/corvid/pkg/board/fen"
	"github.com/tanagerchess/corvid/pkg/eval"
	"github.com/tanagerchess/corvid/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlphaBeta(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		fen      string
		depth    int
		expected eval.Score
	}{
		{fen.Initial, 4, eval.ZeroScore},
		{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 4, eval.ZeroScore},
		{"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 4, eval.ZeroScore},

		{"k7/7R/6R1/8/8/8/8/7K w - - 0 1", 1, eval.Score(1000)},
		{"k7/7R/6R1/8/8/8/8/7K w - - 0 1", 2, eval.Mate(1)},
		{"k7/7R/6R1/8/8/8/8/7K w - - 0 1", 3, eval.Mate(1)},
	}

	minimax := search.Minimax{Eval: eval.Material{}}
	ab := search.AlphaBeta{Eval: search.ZeroPly{Eval: eval.Material{}}}

	t.Run("correctness", func(t *testing.T) {
		for _, tt := range tests {
			b, err := fen.NewBoard(tt.fen)
			require.NoError(t, err)

			sctx := &search.Context{Alpha: eval.NegInfScore, Beta: eval.InfScore, TT: search.NoTranspositionTable{}}
			n, actual, _, err := ab.Search(ctx, sctx, b, tt.depth)
			require.NoError(t, err)
			assert.Lessf(t, n, uint64(20000), "too many nodes: %v", tt.fen)
			assert.Equalf(t, tt.expected, actual, "failed: %v", tt.fen)
		}
	})

	t.Run("minimax", func(t *testing.T) {
		if testing.Short() {
			t.Skip("skipping minimax comparison test")
		}

		for _, tt := range tests[:3] {
			b, err := fen.NewBoard(tt.fen)
			require.NoError(t, err)

			sctx := &search.Context{Alpha: eval.NegInfScore, Beta: eval.InfScore, TT: search.NoTranspositionTable{}}
			n, actual, _, err := ab.Search(ctx, sctx, b, tt.depth)
			require.NoError(t, err)

			m, expected, _, err := minimax.Search(ctx, sctx, b, tt.depth)
			require.NoError(t, err)
			t.Logf("POS: %v; NODES: %v (minimax %v)", tt.fen, n, m)

			assert.LessOrEqualf(t, n, m, "more than minimax nodes: %v", tt.fen)
			assert.Equalf(t, expected, actual, "failed: %v", tt.fen)
		}
	})
}
