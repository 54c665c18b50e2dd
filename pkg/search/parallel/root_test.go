package parallel_test

import (
	"context"
	"testing"

	"github.com/tanagerchess/corvid/pkg/board/fen"
	"github.com/tanagerchess/corvid/pkg/eval"
	"github.com/tanagerchess/corvid/pkg/search"
	"github.com/tanagerchess/corvid/pkg/search/parallel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootFallsBackBelowThresholds(t *testing.T) {
	ctx := context.Background()
	b, err := fen.NewBoard(fen.Initial)
	require.NoError(t, err)

	single := search.AlphaBeta{Eval: search.ZeroPly{Eval: eval.Material{}}}
	sctx := &search.Context{Alpha: eval.NegInfScore, Beta: eval.InfScore, TT: search.NoTranspositionTable{}}

	// Threads <= 1 never splits, regardless of MinDepth/MinMoves.
	r := parallel.Root{Single: single, Threads: 1}
	n1, s1, pv1, err := r.Search(ctx, sctx, b, 3)
	require.NoError(t, err)

	n2, s2, pv2, err := single.Search(ctx, sctx, b, 3)
	require.NoError(t, err)

	assert.Equal(t, n2, n1)
	assert.Equal(t, s2, s1)
	assert.Equal(t, pv2, pv1)
}

func TestRootFallsBackBelowMinDepthAndMinMoves(t *testing.T) {
	ctx := context.Background()
	b, err := fen.NewBoard(fen.Initial)
	require.NoError(t, err)

	single := search.AlphaBeta{Eval: search.ZeroPly{Eval: eval.Material{}}}
	sctx := &search.Context{Alpha: eval.NegInfScore, Beta: eval.InfScore, TT: search.NoTranspositionTable{}}

	r := parallel.Root{Single: single, Threads: 4, MinDepth: 99, MinMoves: 1}
	_, s1, _, err := r.Search(ctx, sctx, b, 2)
	require.NoError(t, err)

	_, s2, _, err := single.Search(ctx, sctx, b, 2)
	require.NoError(t, err)
	assert.Equal(t, s2, s1)

	r2 := parallel.Root{Single: single, Threads: 4, MinDepth: 1, MinMoves: 99}
	_, s3, _, err := r2.Search(ctx, sctx, b, 2)
	require.NoError(t, err)
	assert.Equal(t, s2, s3)
}

func TestRootMatchesSequentialScoreWhenSplit(t *testing.T) {
	ctx := context.Background()
	b, err := fen.NewBoard(fen.Initial)
	require.NoError(t, err)

	single := search.AlphaBeta{Eval: search.ZeroPly{Eval: eval.Material{}}}
	sctx := &search.Context{Alpha: eval.NegInfScore, Beta: eval.InfScore, TT: search.NoTranspositionTable{}}

	r := parallel.Root{Single: single, Threads: 4, MinDepth: 1, MinMoves: 1, Deterministic: true}
	_, parallelScore, parallelPV, err := r.Search(ctx, sctx, b, 2)
	require.NoError(t, err)

	_, seqScore, _, err := single.Search(ctx, sctx, b, 2)
	require.NoError(t, err)

	// Both schedulers search every root move to the same depth over the same full
	// window, so the best score found should agree regardless of how work was split.
	assert.Equal(t, seqScore, parallelScore)
	assert.NotEmpty(t, parallelPV)
}

func TestRootPicksMatingMove(t *testing.T) {
	ctx := context.Background()
	b, err := fen.NewBoard("k7/7R/6R1/8/8/8/8/7K w - - 0 1")
	require.NoError(t, err)

	single := search.AlphaBeta{Eval: search.ZeroPly{Eval: eval.Material{}}}
	sctx := &search.Context{Alpha: eval.NegInfScore, Beta: eval.InfScore, TT: search.NoTranspositionTable{}}

	r := parallel.Root{Single: single, Threads: 4, MinDepth: 1, MinMoves: 1, Deterministic: true}
	_, score, pv, err := r.Search(ctx, sctx, b, 2)
	require.NoError(t, err)

	assert.Equal(t, eval.Mate(1), score)
	assert.NotEmpty(t, pv)
}
