// Package search contains game tree search functionality and utilities.
package search

import (
	"context"
	"errors"

	"github.com/tanagerchess/corvid/pkg/board"
	"github.com/tanagerchess/corvid/pkg/eval"
)

// ErrHalted is returned by a Search when it was cancelled via its context before completing.
var ErrHalted = errors.New("search halted")

// Context carries the parameters of a single root Search call: the search window, the
// shared transposition table, evaluation noise, quiet-move ordering statistics accumulated
// across this root search's iterative-deepening depths, and an optional ponder line to
// explore first regardless of move ordering.
type Context struct {
	Alpha, Beta eval.Score
	TT          TranspositionTable
	Noise       eval.Random
	Ordering    *Ordering
	Ponder      []board.Move
}

// Search runs a fixed-depth search from the root position and returns the node count,
// score and principal variation found. The returned score is relative to the side to move at
// the root, as is the Alpha/Beta window in Context. Implementations must be safe to invoke
// repeatedly with increasing depth
// from the same iterative deepening harness.
type Search interface {
	Search(ctx context.Context, sctx *Context, b *board.Board, depth int) (uint64, eval.Score, []board.Move, error)
}

// QuietSearch extends search past the nominal horizon until the position is quiet, i.e. free
// of immediately pending tactics, returning a more stable evaluation than a raw leaf call.
type QuietSearch interface {
	QuietSearch(ctx context.Context, sctx *Context, b *board.Board) (uint64, eval.Score)
}

// Evaluator is the quiescence-time leaf evaluator. It is separate from eval.Evaluator so
// implementations can fold search-local context (e.g. the remaining window) into leaf scoring,
// such as lazy evaluation cutoffs.
type Evaluator interface {
	Evaluate(ctx context.Context, sctx *Context, b *board.Board) eval.Score
}

// StaticEvaluator adapts an eval.Evaluator, ignoring the search Context, into a search.Evaluator.
type StaticEvaluator struct {
	Eval eval.Evaluator
}

func (s StaticEvaluator) Evaluate(ctx context.Context, sctx *Context, b *board.Board) eval.Score {
	return s.Eval.Evaluate(ctx, b)
}

// ZeroPly is a QuietSearch that does not search any further: it returns the static
// evaluation unchanged. Used where quiescence search is disabled, e.g. in tests comparing
// AlphaBeta against Minimax move-for-move.
type ZeroPly struct {
	Eval eval.Evaluator
}

func (z ZeroPly) QuietSearch(ctx context.Context, sctx *Context, b *board.Board) (uint64, eval.Score) {
	return 0, eval.Unit(b.Turn()) * z.Eval.Evaluate(ctx, b)
}
