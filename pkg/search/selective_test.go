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

// Selective pruning (reverse-futility, null-move, LMP, LMR) must stay off unless the caller
// supplies an Ordering, so a bare Context like these tests use keeps searching the exact,
// unreduced tree regardless of whether a Static evaluator is also configured.
func TestSelectivePruningOffWithoutOrdering(t *testing.T) {
	ctx := context.Background()
	fens := []struct {
		fen      string
		depth    int
		expected eval.Score
	}{
		{fen.Initial, 4, eval.ZeroScore},
		{"k7/7R/6R1/8/8/8/8/7K w - - 0 1", 2, eval.Mate(1)},
	}

	root := search.AlphaBeta{
		Eval:   search.ZeroPly{Eval: eval.Material{}},
		Static: search.StaticEvaluator{Eval: eval.Material{}},
	}

	for _, tt := range fens {
		b, err := fen.NewBoard(tt.fen)
		require.NoError(t, err)

		sctx := &search.Context{Alpha: eval.NegInfScore, Beta: eval.InfScore, TT: search.NoTranspositionTable{}}
		_, actual, _, err := root.Search(ctx, sctx, b, tt.depth)
		require.NoError(t, err)
		assert.Equalf(t, tt.expected, actual, "failed: %v", tt.fen)
	}
}

// With an Ordering present, selective pruning is active, but it must not prune away a forced
// mate: every heuristic added this pass only trims lines that cannot beat the window, and a
// mating move always does.
func TestSelectivePruningStillFindsMate(t *testing.T) {
	ctx := context.Background()
	b, err := fen.NewBoard("k7/7R/6R1/8/8/8/8/7K w - - 0 1")
	require.NoError(t, err)

	root := search.AlphaBeta{
		Eval:   search.ZeroPly{Eval: eval.Material{}},
		Static: search.StaticEvaluator{Eval: eval.Material{}},
	}
	sctx := &search.Context{
		Alpha: eval.NegInfScore, Beta: eval.InfScore,
		TT: search.NoTranspositionTable{}, Ordering: search.NewOrdering(),
	}

	_, actual, pv, err := root.Search(ctx, sctx, b, 3)
	require.NoError(t, err)
	assert.Equal(t, eval.Mate(1), actual)
	assert.NotEmpty(t, pv)
}

// A pawn-only ending has no non-pawn material for either side, so null-move pruning and
// reverse-futility pruning must stay disabled there (a "free" tempo is not reliably safe in a
// zugzwang-prone pawn ending). This does not guarantee byte-identical scores against an exact
// search (late-move pruning/reduction can still apply), but the position is a simple, won king
// and pawn ending, so a sound search of either kind must still report White ahead.
func TestSelectivePruningDisabledInPawnEnding(t *testing.T) {
	ctx := context.Background()
	b, err := fen.NewBoard("8/8/8/4k3/4P3/4K3/8/8 w - - 0 1")
	require.NoError(t, err)

	root := search.AlphaBeta{
		Eval:   search.ZeroPly{Eval: eval.Material{}},
		Static: search.StaticEvaluator{Eval: eval.Material{}},
	}
	sctx := &search.Context{
		Alpha: eval.NegInfScore, Beta: eval.InfScore,
		TT: search.NoTranspositionTable{}, Ordering: search.NewOrdering(),
	}

	_, actual, _, err := root.Search(ctx, sctx, b, 4)
	require.NoError(t, err)
	assert.Greater(t, int(actual), 0, "White holds an extra pawn and the move; must not be assessed as losing")
}
