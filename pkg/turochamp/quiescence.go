package turochamp

import (
	"context"
	"sort"

	"github.com/tanagerchess/corvid/pkg/board"
	"github.com/tanagerchess/corvid/pkg/eval"
	"github.com/tanagerchess/corvid/pkg/search"
)

// Quiescence implements the selective "considerable moves" search:
//   (1) Re-captures are considerable.
//   (2) Capture of en prise pieces are considerable.
//   (3) Capture of higher value pieces are considerable.
//   (4) Checkmate are considerable.
type Quiescence struct {
	Eval eval.Evaluator
}

func (q Quiescence) QuietSearch(ctx context.Context, sctx *search.Context, b *board.Board) (uint64, eval.Score) {
	run := &runQuiescence{eval: q.Eval, b: b}

	low, high := eval.NegInfScore, eval.InfScore
	if !sctx.Alpha.IsInvalid() {
		low = sctx.Alpha
	}
	if !sctx.Beta.IsInvalid() {
		high = sctx.Beta
	}

	score := run.search(ctx, low, high)
	return run.nodes, score
}

type runQuiescence struct {
	eval  eval.Evaluator
	b     *board.Board
	nodes uint64
}

// search returns the positive score for the color to move.
func (r *runQuiescence) search(ctx context.Context, alpha, beta eval.Score) eval.Score {
	if r.b.Result().Outcome == board.Draw {
		return eval.ZeroScore
	}

	r.nodes++

	hasLegalMoves := false
	turn := r.b.Turn()
	score := eval.Unit(turn) * r.eval.Evaluate(ctx, r.b)
	alpha = eval.Max(alpha, score)

	mayRecapture := false
	var target board.Square
	if m, ok := r.b.LastMove(); ok && m.IsCapture() {
		mayRecapture = true
		target = m.To
	}

	moves := r.b.Position().PseudoLegalMoves(turn)
	sort.Slice(moves, func(i, j int) bool {
		return eval.NominalValueGain(moves[i]) > eval.NominalValueGain(moves[j])
	})

	for _, m := range moves {
		givesMate := r.b.Position().GivesCheckMate(turn, m)
		if !r.b.PushMove(m) {
			continue
		}

		considerable := givesMate
		if m.IsCapture() {
			if mayRecapture && m.To == target {
				considerable = true
			}
			if pieceValue(m.Piece) < pieceValue(m.Capture) {
				considerable = true
			}
			if !r.b.Position().IsAttacked(turn, m.To) {
				considerable = true
			}
		}

		if considerable {
			score := r.search(ctx, beta.Negate(), alpha.Negate())
			score = eval.IncrementMateDistance(score).Negate()
			alpha = eval.Max(alpha, score)
		}

		r.b.PopMove()
		hasLegalMoves = true

		if alpha == beta || beta.Less(alpha) {
			break // cutoff
		}
	}

	if !hasLegalMoves {
		if result := r.b.AdjudicateNoLegalMoves(); result.Reason == board.Checkmate {
			return eval.Mated(0)
		}
		return eval.ZeroScore
	}
	return alpha
}
