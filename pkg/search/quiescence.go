package search

import (
	"context"
	"github.com/tanagerchess/corvid/pkg/board"
	"github.com/tanagerchess/corvid/pkg/eval"
	"github.com/seekerror/stdlib/pkg/util/contextx"
)

// quiescenceCheckExtensionPlies bounds how many plies of non-capturing checking moves
// quiescence will follow beyond captures and promotions before falling back to forcing
// moves only. A placeholder pending position-suite regression, like the other selective-
// search constants in this package.
const quiescenceCheckExtensionPlies = 2

// quiescenceDeltaMargin is the slack added to a capture's nominal gain when deciding whether
// it could plausibly raise alpha at all. A placeholder pending regression tuning, per
// spec.md's Open Questions on SEE margins.
const quiescenceDeltaMargin = eval.Score(200)

// Quiescence implements a configurable alpha-beta QuietSearch, extending the nominal search
// horizon over the tactical frontier: captures, promotions, and a bounded window of checking
// moves, per spec.md's tactical-extension contract. Explore selects the baseline forcing-move
// set (captures/promotions); the SEE-positive filter, delta margin and check-extension
// bookkeeping are this search's own concern, layered on top below.
type Quiescence struct {
	Explore Exploration
	Eval    Evaluator
}

func (q Quiescence) QuietSearch(ctx context.Context, sctx *Context, b *board.Board) (uint64, eval.Score) {
	run := &runQuiescence{explore: q.Explore, eval: q.Eval, b: b}

	low, high := eval.NegInfScore, eval.InfScore
	if !sctx.Alpha.IsInvalid() {
		low = sctx.Alpha
	}
	if !sctx.Beta.IsInvalid() {
		high = sctx.Beta
	}

	score := run.search(ctx, sctx, low, high, quiescenceCheckExtensionPlies)
	return run.nodes, score
}

type runQuiescence struct {
	explore Exploration
	eval    Evaluator
	b       *board.Board
	nodes   uint64
}

// search returns the positive score for the color. checkPly is the remaining budget of
// non-capturing checking moves this line may still follow; it only decreases when a checking
// move is actually explored, never on captures or promotions.
func (r *runQuiescence) search(ctx context.Context, sctx *Context, alpha, beta eval.Score, checkPly int) eval.Score {
	if contextx.IsCancelled(ctx) {
		return eval.ZeroScore
	}
	if r.b.Result().Outcome == board.Draw {
		return eval.ZeroScore
	}

	r.nodes++

	hasLegalMoves := false
	turn := r.b.Turn()
	standPat := eval.Unit(turn)*r.eval.Evaluate(ctx, sctx, r.b) + sctx.Noise.Evaluate(ctx, r.b)
	alpha = eval.Max(alpha, standPat)

	// NOTE: Don't cutoff based on evaluation here. See if any legal moves first.
	// Also do not report mate-in-X endings.

	priority, forcing := r.explore(ctx, r.b)
	var seen [64][64]bool // from/to pairs already explored as a checking move at this node

	moves := board.NewMoveList(r.b.Position().PseudoLegalMoves(turn), priority)
	for {
		m, ok := moves.Next()
		if !ok {
			break
		}

		isCapture := forcing(m)
		checking := false
		if !isCapture && checkPly > 0 && !seen[m.From][m.To] && r.b.Position().GivesCheck(turn, m) {
			seen[m.From][m.To] = true
			checking = true
		}

		if !r.b.PushMove(m) {
			continue // skip: not legal
		}

		switch {
		case isCapture && r.passesCaptureFilter(turn, m, alpha, standPat):
			score := r.search(ctx, sctx, beta.Negate(), alpha.Negate(), checkPly)
			score = eval.IncrementMateDistance(score).Negate()
			alpha = eval.Max(alpha, score)
		case checking:
			score := r.search(ctx, sctx, beta.Negate(), alpha.Negate(), checkPly-1)
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

// passesCaptureFilter applies spec.md's SEE-positive/delta-margin filter to a forcing capture.
// Promotions (including capturing ones) always pass: gaining a queen is always worth resolving.
// En passant is exempt from the SEE swap-off, whose square-based model assumes the captured
// piece sits on the move's destination square, which en passant violates.
func (r *runQuiescence) passesCaptureFilter(turn board.Color, m board.Move, alpha, standPat eval.Score) bool {
	if m.IsPromotion() {
		return true
	}
	if m.Type != board.EnPassant {
		if board.StaticExchange(r.b.Position(), turn, m.Piece, m.Capture, m.To) < 0 {
			return false // SEE filter: the exchange loses material outright
		}
	}
	return standPat+eval.NominalValue(m.Capture)+quiescenceDeltaMargin >= alpha
}
