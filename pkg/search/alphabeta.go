package search

import (
	"context"
	"github.com/tanagerchess/corvid/pkg/board"
	"github.com/tanagerchess/corvid/pkg/eval"
	"github.com/seekerror/stdlib/pkg/util/contextx"
)

// AlphaBeta implements alpha-beta pruning. Pseudo-code:
//
// function alphabeta(node, depth, α, β, maximizingPlayer) is
//
//	if depth = 0 or node is a terminal node then
//	    return the heuristic value of node
//	if maximizingPlayer then
//	    value := −∞
//	    for each child of node do
//	        value := max(value, alphabeta(child, depth − 1, α, β, FALSE))
//	        α := max(α, value)
//	        if α ≥ β then
//	            break (* β cutoff *)
//	    return value
//	else
//	    value := +∞
//	    for each child of node do
//	        value := min(value, alphabeta(child, depth − 1, α, β, TRUE))
//	        β := min(β, value)
//	        if β ≤ α then
//	            break (* α cutoff *)
//	    return value
//
// See: https://en.wikipedia.org/wiki/Alpha–beta_pruning.
type AlphaBeta struct {
	Explore Exploration
	Eval    QuietSearch

	// Static is the plain (non-quiescent) leaf evaluator used for reverse-futility and
	// null-move pruning's static-eval tests. Left nil, both are skipped entirely: neither
	// pruning is essential to correctness, only to speed.
	Static Evaluator
}

func (p AlphaBeta) Search(ctx context.Context, sctx *Context, b *board.Board, depth int) (uint64, eval.Score, []board.Move, error) {
	run := &runAlphaBeta{
		explore:  fullIfNotSet(p.Explore),
		eval:     p.Eval,
		static:   p.Static,
		tt:       sctx.TT,
		noise:    sctx.Noise,
		ordering: sctx.Ordering,
		ponder:   sctx.Ponder,
		b:        b,
	}
	low, high := eval.NegInfScore, eval.InfScore
	if !sctx.Alpha.IsInvalid() {
		low = sctx.Alpha
	}
	if !sctx.Beta.IsInvalid() {
		high = sctx.Beta
	}

	score, moves := run.search(ctx, depth, low, high)
	if contextx.IsCancelled(ctx) {
		return 0, eval.InvalidScore, nil, ErrHalted
	}
	return run.nodes, score, moves, nil
}

type runAlphaBeta struct {
	explore  Exploration
	eval     QuietSearch
	static   Evaluator
	tt       TranspositionTable
	noise    eval.Random
	ordering *Ordering
	b        *board.Board
	nodes    uint64

	ponder []board.Move
}

// Tuning constants for selective pruning. Exact values are placeholders pending
// position-suite regression, per spec.md's Open Questions on SEE margins, LMR tables and
// aspiration widening: none of these change search correctness, only how much is pruned.
const (
	reverseFutilityMaxDepth = 2
	reverseFutilityMargin   = 120 // centipawns per remaining ply

	nullMoveMinDepth  = 3
	nullMoveVerifyMin = 8 // depth at which a fail-high null-move result is double-checked

	lateMovePruningMaxDepth = 3

	lateMoveReductionMinDepth = 3
	lateMoveReductionMinIndex = 3
)

// staticEval returns the side-to-move-relative plain evaluation at the current node, or
// InvalidScore if no Static evaluator was configured.
func (m *runAlphaBeta) staticEval(ctx context.Context, alpha, beta eval.Score) eval.Score {
	if m.static == nil {
		return eval.InvalidScore
	}
	sctx := &Context{Alpha: alpha, Beta: beta, TT: m.tt, Noise: m.noise}
	return eval.Unit(m.b.Turn())*m.static.Evaluate(ctx, sctx, m.b) + m.noise.Evaluate(ctx, m.b)
}

// hasNonPawnMaterial reports whether turn has any piece besides king and pawns, the zugzwang
// guard null-move pruning and reverse-futility pruning both need: in a pawn-only ending a
// "free" tempo is often not actually free, so both heuristics stay disabled there.
func hasNonPawnMaterial(pos *board.Position, turn board.Color) bool {
	return pos.Piece(turn, board.Knight) != 0 || pos.Piece(turn, board.Bishop) != 0 ||
		pos.Piece(turn, board.Rook) != 0 || pos.Piece(turn, board.Queen) != 0
}

// lateMoveReduction returns how many plies to shave off a late quiet move's exploratory
// search, growing with both remaining depth and how far down the ordered move list this move
// sits.
func lateMoveReduction(depth, index int) int {
	r := 1
	if depth > 6 {
		r++
	}
	if index > 10 {
		r++
	}
	return r
}

// lateMovePruningThreshold returns the move index past which a shallow, non-PV node stops
// searching quiet, non-check moves outright, trusting that move ordering already placed
// anything worth exploring earlier in the list.
func lateMovePruningThreshold(depth int) int {
	return 3 + 2*depth
}

// search returns the positive score for the color.
func (m *runAlphaBeta) search(ctx context.Context, depth int, alpha, beta eval.Score) (eval.Score, []board.Move) {
	if contextx.IsCancelled(ctx) {
		return eval.InvalidScore, nil
	}
	if m.b.Result().Outcome == board.Draw {
		return eval.ZeroScore, nil
	}

	ply := m.b.Ply()
	origAlpha := alpha

	var best board.Move
	if ttBound, d, score, ttMove, ok := m.tt.Read(m.b.Hash(), ply); ok {
		best = ttMove
		if d >= depth {
			switch {
			case ttBound == ExactBound:
				return score, nil // cutoff: exact score at sufficient depth
			case ttBound == LowerBound && beta.Less(score+1):
				return score, nil // cutoff: known to fail high against this window
			case ttBound == UpperBound && score.Less(alpha+1):
				return score, nil // cutoff: known to fail low against this window
			}
		} // else: not deep enough; reuse ttMove for ordering only
	}

	// Selective pruning (reverse-futility, null-move, LMP, LMR) is gated on an Ordering
	// being present, the same signal searchctl.Iterative uses to distinguish a real
	// iterative-deepening root search from a bare, ordering-agnostic Search call (e.g. the
	// exact-equivalence tests against Minimax, or console's ponder probe): those callers get
	// the unmodified, fully-exact alpha-beta tree they ask for.
	selective := m.ordering != nil

	nonPV := beta-alpha <= 1
	inCheck := m.b.Position().IsChecked(m.b.Turn())
	if selective && inCheck {
		depth++ // in-check extension: never drop straight into quiescence while in check
	}

	if depth == 0 {
		sctx := &Context{Alpha: alpha, Beta: beta, TT: m.tt, Noise: m.noise}
		nodes, score := m.eval.QuietSearch(ctx, sctx, m.b)
		m.nodes += nodes

		m.tt.Write(m.b.Hash(), ExactBound, ply, 0, score, board.Move{})
		return score, nil
	}

	m.nodes++

	if selective && !inCheck && !alpha.IsMate() && !beta.IsMate() && hasNonPawnMaterial(m.b.Position(), m.b.Turn()) {
		static := m.staticEval(ctx, alpha, beta)
		if !static.IsInvalid() {
			if nonPV && depth <= reverseFutilityMaxDepth && static-eval.Score(reverseFutilityMargin*depth) >= beta {
				return static, nil // reverse-futility: even a generous margin can't reach alpha's window
			}

			if depth >= nullMoveMinDepth && !static.Less(beta) {
				R := 2
				if depth >= 6 {
					R = 3
				}

				m.b.PushNullMove()
				null, _ := m.search(ctx, depth-1-R, beta.Negate(), beta.Negate()+1)
				null = eval.IncrementMateDistance(null).Negate()
				m.b.PopNullMove()

				if !null.Less(beta) {
					if depth >= nullMoveVerifyMin {
						verify, _ := m.search(ctx, depth-1, alpha, beta)
						if !verify.Less(beta) {
							return beta, nil // zugzwang-verified fail-high
						} // else: null move lied; fall through to a real search
					} else {
						return beta, nil
					}
				}
			}
		}
	}

	hasLegalMove := false
	failedHigh := false
	var pv []board.Move
	var cutoffMove board.Move
	var triedQuiet []board.Move

	prev, _ := m.b.LastMove()

	priority, explore := m.explore(ctx, m.b)
	if m.ordering != nil {
		quiet := m.ordering.Priority(prev, ply)
		base := priority
		priority = func(mv board.Move) board.MovePriority {
			if p := base(mv); p != 0 {
				return p
			}
			return quiet(mv)
		}
	}

	if len(m.ponder) > 0 {
		explore = m.ponder[0].Equals // overwrite: use ponder move even if not intended to be explored
		m.ponder = m.ponder[1:]
	}

	moves := board.NewMoveList(m.b.Position().PseudoLegalMoves(m.b.Turn()), board.First(best, priority))
	first := true
	index := 0
	for {
		move, ok := moves.Next()
		if !ok {
			break
		}

		quiet := !move.IsCapture() && !move.IsPromotion()
		givesCheck := quiet && m.b.Position().GivesCheck(m.b.Turn(), move)

		if !m.b.PushMove(move) {
			continue // skip: not legal
		}
		idx := index
		index++

		lmp := selective && !first && nonPV && quiet && !inCheck && !givesCheck &&
			depth <= lateMovePruningMaxDepth && idx >= lateMovePruningThreshold(depth)

		if explore(move) && !lmp {
			var score eval.Score
			var rem []board.Move

			if first {
				score, rem = m.search(ctx, depth-1, beta.Negate(), alpha.Negate())
				score = eval.IncrementMateDistance(score).Negate()
			} else {
				// Null-window search: cheaply confirm the move does not beat alpha before
				// paying for a full re-search (principal variation search). Late, quiet
				// moves get an extra depth reduction (LMR) on this probe; if a reduced probe
				// still beats alpha, it is re-probed at full depth before being trusted.
				probeDepth := depth - 1
				if selective && !inCheck && !givesCheck && quiet &&
					depth >= lateMoveReductionMinDepth && idx >= lateMoveReductionMinIndex {
					if r := lateMoveReduction(depth, idx); depth-1-r > 0 {
						probeDepth = depth - 1 - r
					}
				}

				null, nrem := m.search(ctx, probeDepth, alpha.Negate()-1, alpha.Negate())
				null = eval.IncrementMateDistance(null).Negate()
				if alpha.Less(null) && probeDepth < depth-1 {
					null, nrem = m.search(ctx, depth-1, alpha.Negate()-1, alpha.Negate())
					null = eval.IncrementMateDistance(null).Negate()
				}

				if alpha.Less(null) && null.Less(beta) {
					score, rem = m.search(ctx, depth-1, beta.Negate(), null.Negate())
					score = eval.IncrementMateDistance(score).Negate()
				} else {
					score, rem = null, nrem
				}
			}

			if alpha.Less(score) {
				alpha = score
				pv = append([]board.Move{move}, rem...)
			}
		}

		m.b.PopMove()
		hasLegalMove = true
		first = false

		if alpha == beta || beta.Less(alpha) {
			failedHigh = true
			cutoffMove = move
			break // cutoff
		}
		if !move.IsCapture() && !move.IsPromotion() {
			triedQuiet = append(triedQuiet, move)
		}
	}

	if failedHigh && m.ordering != nil {
		m.ordering.RecordCutoff(prev, cutoffMove, ply, depth, triedQuiet)
	}

	if !hasLegalMove {
		if result := m.b.AdjudicateNoLegalMoves(); result.Reason == board.Checkmate {
			return eval.Mated(0), nil
		}
		return eval.ZeroScore, nil
	}

	bound := ExactBound
	switch {
	case failedHigh:
		bound = LowerBound
	case !origAlpha.Less(alpha):
		bound = UpperBound // no move raised alpha: best score found is only an upper bound
	}
	m.tt.Write(m.b.Hash(), bound, ply, depth, alpha, firstOrNone(pv))
	return alpha, pv
}

func firstOrNone(pv []board.Move) board.Move {
	if len(pv) == 0 {
		return board.Move{}
	}
	return pv[0]
}

func fullIfNotSet(p Exploration) Exploration {
	if p == nil {
		return FullExploration
	}
	return p
}
