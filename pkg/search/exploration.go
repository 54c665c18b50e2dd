package search

import (
	"context"
	"github.com/tanagerchess/corvid/pkg/board"
	"github.com/tanagerchess/corvid/pkg/eval"
)

// Exploration defines move selection and priority in a given position. Limited exploration is required
// by quiescence search and can be used for forward pruning in full search. Default: explore all
// moves in MVVLVA order.
type Exploration func(ctx context.Context, b *board.Board) (board.MovePriorityFn, board.MovePredicateFn)

// losingCapturePenalty sorts a SEE-negative capture behind every quiet move, whose MVVLVA/
// Ordering priority never drops this low, per spec.md §4.H's "losing captures last" rule.
const losingCapturePenalty = board.MovePriority(-(1 << 14))

func FullExploration(ctx context.Context, b *board.Board) (board.MovePriorityFn, board.MovePredicateFn) {
	pos, turn := b.Position(), b.Turn()
	priority := func(m board.Move) board.MovePriority {
		if m.IsCapture() && m.Type != board.EnPassant && board.StaticExchange(pos, turn, m.Piece, m.Capture, m.To) < 0 {
			return losingCapturePenalty
		}
		return MVVLVA(m)
	}
	return priority, IsAnyMove
}

// CapturesAndPromotions restricts exploration to the forcing moves quiescence search starts
// from: captures and promotions. The SEE-positive filter, delta margin and bounded check
// extension layered on top of this baseline are quiescence's own concern, not move selection.
func CapturesAndPromotions(ctx context.Context, b *board.Board) (board.MovePriorityFn, board.MovePredicateFn) {
	return MVVLVA, IsQuickGain
}

// IsQuickGain selects promotions and captures.
func IsQuickGain(m board.Move) bool {
	return m.IsCapture() || m.IsPromotion()
}

// Selection returns a move order and priority for exploring the given moves.
func Selection(list []board.Move) (board.MovePriorityFn, board.MovePredicateFn) {
	rank := map[board.Move]board.MovePriority{}
	for i, m := range list {
		rank[m] = board.MovePriority(len(list) - i)
	}

	priority := func(move board.Move) board.MovePriority {
		return rank[move]
	}
	pick := func(move board.Move) bool {
		_, ok := rank[move]
		return ok
	}
	return priority, pick
}

// MVVLVA implements the MVV-LVA move priority.
func MVVLVA(m board.Move) board.MovePriority {
	if p := board.MovePriority(100 * eval.NominalValueGain(m)); p > 0 {
		return p - board.MovePriority(eval.NominalValue(m.Piece))
	}
	return 0
}

// IsAnyMove selects all moves.
func IsAnyMove(m board.Move) bool {
	return true
}
