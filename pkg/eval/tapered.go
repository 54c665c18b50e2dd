package eval

import (
	"context"

	"github.com/tanagerchess/corvid/pkg/board"
)

// Tapered is the default evaluator: material plus positional terms, blended between an
// opening/middlegame vector and an endgame vector by a material-based phase scalar. Returns
// a White-relative centipawn score.
type Tapered struct{}

func (Tapered) Evaluate(ctx context.Context, b *board.Board) Score {
	pos := b.Position()
	phase := gamePhase(pos)

	var mg, eg Score
	for _, side := range [...]board.Color{board.White, board.Black} {
		sign := Unit(side)
		m, e := evaluateSide(pos, side)
		mg += sign * m
		eg += sign * e
	}

	return blend(mg, eg, phase)
}

// maxPhase is the phase value of a full board: 4 knights + 4 bishops (1 each), 4 rooks (2
// each), 2 queens (4 each).
const maxPhase = 4*1 + 4*1 + 4*2 + 2*4

// gamePhase returns a value in [0, maxPhase]: maxPhase at the start of the game, 0 once every
// minor/major piece has left the board.
func gamePhase(pos *board.Position) int {
	phase := 0
	for _, c := range [...]board.Color{board.White, board.Black} {
		phase += pos.Piece(c, board.Knight).PopCount() * 1
		phase += pos.Piece(c, board.Bishop).PopCount() * 1
		phase += pos.Piece(c, board.Rook).PopCount() * 2
		phase += pos.Piece(c, board.Queen).PopCount() * 4
	}
	if phase > maxPhase {
		phase = maxPhase
	}
	return phase
}

func blend(mg, eg Score, phase int) Score {
	return (mg*Score(phase) + eg*Score(maxPhase-phase)) / maxPhase
}

// evaluateSide returns side's contribution to the opening/middlegame and endgame vectors,
// from side's own point of view (always positive for material side owns). The caller applies
// the White/Black sign.
func evaluateSide(pos *board.Position, side board.Color) (mg, eg Score) {
	for p := board.Pawn; p < board.NumPieces; p++ {
		bb := pos.Piece(side, p)
		for bb != 0 {
			sq := bb.LastPopSquare()
			bb ^= board.BitMask(sq)

			mg += NominalValue(p) + pieceSquareValue(p, side, sq, mgTables)
			eg += NominalValue(p) + pieceSquareValue(p, side, sq, egTables)
		}
	}

	mob := mobility(pos, side)
	mg += mob
	eg += mob

	pawnMg, pawnEg := pawnStructure(pos, side)
	mg += pawnMg
	eg += pawnEg

	rf := rookFiles(pos, side)
	mg += rf
	eg += rf

	ks := kingSafety(pos, side)
	mg += ks

	if pos.Piece(side, board.Bishop).PopCount() >= 2 {
		mg += bishopPairBonus
		eg += bishopPairBonus
	}

	return mg, eg
}

const bishopPairBonus = 30

// mobility counts safe destination squares for every officer (non-pawn, non-king piece),
// weighted by piece kind. Squares occupied by the mover's own pieces or attacked by an enemy
// pawn are excluded.
func mobility(pos *board.Position, side board.Color) Score {
	own := pos.Color(side)
	unsafe := board.PawnCaptureboard(side.Opponent(), pos.Piece(side.Opponent(), board.Pawn))
	r := pos.Rotated()

	var score Score
	for _, p := range [...]board.Piece{board.Knight, board.Bishop, board.Rook, board.Queen} {
		weight := mobilityWeight(p)

		bb := pos.Piece(side, p)
		for bb != 0 {
			sq := bb.LastPopSquare()
			bb ^= board.BitMask(sq)

			attacks := board.Attackboard(r, sq, p) &^ own &^ unsafe
			score += Score(attacks.PopCount()) * weight
		}
	}
	return score
}

func mobilityWeight(p board.Piece) Score {
	switch p {
	case board.Knight:
		return 4
	case board.Bishop:
		return 3
	case board.Rook:
		return 2
	case board.Queen:
		return 1
	default:
		return 0
	}
}

// pawnStructure scores isolated, doubled and passed pawns; a passer earns a push bonus that
// grows with the square of how far it has advanced. Every term weighs more in eg than in mg,
// the passed-pawn bonus twice as much, since pawn structure matters far more once material
// has been traded off.
func pawnStructure(pos *board.Position, side board.Color) (mg, eg Score) {
	own := pos.Piece(side, board.Pawn)
	opp := pos.Piece(side.Opponent(), board.Pawn)

	bb := own
	for bb != 0 {
		sq := bb.LastPopSquare()
		bb ^= board.BitMask(sq)

		f := sq.File()
		ownFile := own & board.BitFile(f)
		if ownFile.PopCount() > 1 {
			mg -= 12
			eg -= 20
		}

		adjacent := adjacentFiles(f)
		if own&adjacent == 0 {
			mg -= 10
			eg -= 15
		}

		if isPassedPawn(side, sq, opp, adjacent) {
			advance := advanceRank(side, sq)
			bonus := Score(advance * advance * 3)
			mg += bonus
			eg += bonus * 2
		}
	}
	return mg, eg
}

func adjacentFiles(f board.File) board.Bitboard {
	var bb board.Bitboard
	if f > board.FileH {
		bb |= board.BitFile(f - 1)
	}
	if f < board.FileA {
		bb |= board.BitFile(f + 1)
	}
	return bb
}

// isPassedPawn reports whether no enemy pawn on sq's file or an adjacent file can ever block
// or capture the pawn on its way to promotion.
func isPassedPawn(side board.Color, sq board.Square, opp board.Bitboard, adjacent board.Bitboard) bool {
	ahead := aheadMask(side, sq)
	blockers := opp & (board.BitFile(sq.File()) | adjacent) & ahead
	return blockers == 0
}

// aheadMask returns every square strictly ahead of sq (toward promotion) for side.
func aheadMask(side board.Color, sq board.Square) board.Bitboard {
	var mask board.Bitboard
	if side == board.White {
		for r := int(sq.Rank()) + 1; r <= int(board.Rank8); r++ {
			mask |= board.BitRank(board.Rank(r))
		}
	} else {
		for r := int(sq.Rank()) - 1; r >= int(board.ZeroRank); r-- {
			mask |= board.BitRank(board.Rank(r))
		}
	}
	return mask
}

// advanceRank returns how many ranks side's pawn on sq has advanced past its start rank,
// 0 at the start rank, growing to 5 on the rank just before promotion.
func advanceRank(side board.Color, sq board.Square) int {
	if side == board.White {
		return sq.Rank().V() - 1
	}
	return int(board.Rank8) - sq.Rank().V() - 1
}

// rookFiles bonuses a rook for sitting on a semi-open (no own pawns) or fully open (no pawns
// at all) file, and for standing behind a friendly passed pawn on the same file.
func rookFiles(pos *board.Position, side board.Color) Score {
	own := pos.Piece(side, board.Pawn)
	opp := pos.Piece(side.Opponent(), board.Pawn)

	var score Score
	bb := pos.Piece(side, board.Rook)
	for bb != 0 {
		sq := bb.LastPopSquare()
		bb ^= board.BitMask(sq)

		file := board.BitFile(sq.File())
		switch {
		case own&file == 0 && opp&file == 0:
			score += 25 // open file
		case own&file == 0:
			score += 12 // semi-open file
		}

		passers := own & file
		for passers != 0 {
			psq := passers.LastPopSquare()
			passers ^= board.BitMask(psq)

			adjacent := adjacentFiles(psq.File())
			if isPassedPawn(side, psq, opp, adjacent) && isBehind(side, sq, psq) {
				score += 15
			}
		}
	}
	return score
}

func isBehind(side board.Color, rook, pawn board.Square) bool {
	if side == board.White {
		return rook.Rank() < pawn.Rank()
	}
	return rook.Rank() > pawn.Rank()
}

// kingSafety penalizes a missing pawn shield in front of the king and bonuses the pawn shield
// that is present, a middlegame-only term: in the endgame the king belongs in the center.
func kingSafety(pos *board.Position, side board.Color) Score {
	kb := pos.Piece(side, board.King)
	if kb == 0 {
		return 0
	}
	ksq := kb.LastPopSquare()

	own := pos.Piece(side, board.Pawn)
	shield := shieldMask(side, ksq)

	present := (own & shield).PopCount()
	missing := shield.PopCount() - present
	return Score(present)*8 - Score(missing)*15
}

// shieldMask returns the up-to-three squares directly in front of the king (toward the
// opponent) on the king's file and its neighbors.
func shieldMask(side board.Color, ksq board.Square) board.Bitboard {
	files := board.BitFile(ksq.File()) | adjacentFiles(ksq.File())

	var rank board.Rank
	if side == board.White {
		if ksq.Rank() >= board.Rank8 {
			return 0
		}
		rank = ksq.Rank() + 1
	} else {
		if ksq.Rank() == board.ZeroRank {
			return 0
		}
		rank = ksq.Rank() - 1
	}
	return files & board.BitRank(rank)
}

// pieceSquareValue looks up the positional bonus for piece on sq, flipping the table
// vertically for Black so both colors read the table as "from my own side of the board".
func pieceSquareValue(p board.Piece, side board.Color, sq board.Square, tables [board.NumPieces][64]Score) Score {
	r := sq.Rank().V()
	f := sq.File().V()
	if side == board.Black {
		r = 7 - r
	}
	return tables[p][r*8+f]
}

// Piece-square tables, indexed [rank][file] with rank 0 = the owning side's back rank and
// file 0 = the H-file (matching board.File's H-to-A numbering). Values in centipawns.
var mgTables = buildTables(
	[64]Score{ // pawn
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 5, 5, -15, -15, 5, 5, 5,
		5, -5, -10, 0, 0, -10, -5, 5,
		0, 0, 0, 20, 20, 0, 0, 0,
		5, 5, 10, 25, 25, 10, 5, 5,
		10, 10, 20, 30, 30, 20, 10, 10,
		50, 50, 50, 50, 50, 50, 50, 50,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	[64]Score{ // bishop
		-20, -10, -10, -10, -10, -10, -10, -20,
		-10, 5, 0, 0, 0, 0, 5, -10,
		-10, 10, 10, 10, 10, 10, 10, -10,
		-10, 0, 10, 10, 10, 10, 0, -10,
		-10, 5, 5, 10, 10, 5, 5, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -10, -10, -10, -10, -20,
	},
	[64]Score{ // knight
		-50, -40, -30, -30, -30, -30, -40, -50,
		-40, -20, 0, 5, 5, 0, -20, -40,
		-30, 5, 10, 15, 15, 10, 5, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, 5, 15, 20, 20, 15, 5, -30,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-50, -40, -30, -30, -30, -30, -40, -50,
	},
	[64]Score{ // rook
		0, 0, 0, 5, 5, 0, 0, 0,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		5, 10, 10, 10, 10, 10, 10, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	[64]Score{ // queen
		-20, -10, -10, -5, -5, -10, -10, -20,
		-10, 0, 5, 0, 0, 0, 0, -10,
		-10, 5, 5, 5, 5, 5, 0, -10,
		0, 0, 5, 5, 5, 5, 0, -5,
		-5, 0, 5, 5, 5, 5, 0, -5,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -5, -5, -10, -10, -20,
	},
	[64]Score{ // king, middlegame: huddle behind the pawn shield
		20, 30, 10, 0, 0, 10, 30, 20,
		20, 20, 0, 0, 0, 0, 20, 20,
		-10, -20, -20, -20, -20, -20, -20, -10,
		-20, -30, -30, -40, -40, -30, -30, -20,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
	},
)

var egTables = buildTables(
	[64]Score{ // pawn: push for promotion matters far more than shape
		0, 0, 0, 0, 0, 0, 0, 0,
		10, 10, 10, 10, 10, 10, 10, 10,
		10, 10, 10, 10, 10, 10, 10, 10,
		20, 20, 20, 20, 20, 20, 20, 20,
		35, 35, 35, 35, 35, 35, 35, 35,
		55, 55, 55, 55, 55, 55, 55, 55,
		80, 80, 80, 80, 80, 80, 80, 80,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	egBishop,
	egKnight,
	[64]Score{ // rook: flat, open files are handled separately
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	[64]Score{ // queen: flat, mobility carries the positional weight
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	[64]Score{ // king, endgame: belongs in the center
		-50, -30, -30, -30, -30, -30, -30, -50,
		-30, -30, 0, 0, 0, 0, -30, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -20, -10, 0, 0, -10, -20, -30,
		-50, -40, -30, -20, -20, -30, -40, -50,
	},
)

var egBishop = [64]Score{
	-10, -5, -5, -5, -5, -5, -5, -10,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 5, 5, 5, 5, 0, -5,
	-5, 0, 5, 10, 10, 5, 0, -5,
	-5, 0, 5, 10, 10, 5, 0, -5,
	-5, 0, 5, 5, 5, 5, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-10, -5, -5, -5, -5, -5, -5, -10,
}

var egKnight = [64]Score{
	-40, -30, -20, -20, -20, -20, -30, -40,
	-30, -10, 0, 0, 0, 0, -10, -30,
	-20, 0, 10, 15, 15, 10, 0, -20,
	-20, 5, 15, 20, 20, 15, 5, -20,
	-20, 5, 15, 20, 20, 15, 5, -20,
	-20, 0, 10, 15, 15, 10, 0, -20,
	-30, -10, 0, 0, 0, 0, -10, -30,
	-40, -30, -20, -20, -20, -20, -30, -40,
}

func buildTables(pawn, bishop, knight, rook, queen, king [64]Score) [board.NumPieces][64]Score {
	var t [board.NumPieces][64]Score
	t[board.Pawn] = pawn
	t[board.Bishop] = bishop
	t[board.Knight] = knight
	t[board.Rook] = rook
	t[board.Queen] = queen
	t[board.King] = king
	return t
}
