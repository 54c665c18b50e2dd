// Package eval contains position evaluation logic and utilities.
package eval

import (
	"context"

	"github.com/tanagerchess/corvid/pkg/board"
)

// Evaluator is a static position evaluator. Evaluate returns a White-relative Score: positive
// favors White regardless of whose turn it is to move.
type Evaluator interface {
	Evaluate(ctx context.Context, b *board.Board) Score
}

// Material returns the nominal material balance, White relative. Useful as a cheap baseline
// and in tests; Tapered (tapered.go) is the default evaluator used by search.
type Material struct{}

func (Material) Evaluate(ctx context.Context, b *board.Board) Score {
	pos := b.Position()

	var score Score
	for p := board.Pawn; p < board.NumPieces; p++ {
		score += Score(pos.Piece(board.White, p).PopCount()) * NominalValue(p)
		score -= Score(pos.Piece(board.Black, p).PopCount()) * NominalValue(p)
	}
	return score
}

// NominalValue is the absolute nominal value in centipawns of a piece.
func NominalValue(p board.Piece) Score {
	return Score(p.Value())
}

// NominalValueGain is the nominal material gain for a move, used by move ordering (MVV-LVA)
// rather than search itself.
func NominalValueGain(m board.Move) Score {
	switch m.Type {
	case board.CapturePromotion:
		return NominalValue(m.Capture) + NominalValue(m.Promotion) - NominalValue(board.Pawn)
	case board.Promotion:
		return NominalValue(m.Promotion) - NominalValue(board.Pawn)
	case board.Capture:
		return NominalValue(m.Capture)
	case board.EnPassant:
		return NominalValue(board.Pawn)
	default:
		return 0
	}
}
