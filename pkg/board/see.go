package board

// StaticExchange evaluates the net material gain, in centipawns, of a capture sequence
// initiated by side playing a piece of type attacker onto sq, currently occupied by victim.
// It walks the swap-off on sq in increasing piece value order, alternating sides, the way
// a capture-recapture sequence would actually play out, without making any moves on pos.
// Pins are not accounted for: a pinned piece is treated as able to recapture like any other,
// which only risks under-counting how bad a losing exchange truly is.
func StaticExchange(pos *Position, side Color, attacker, victim Piece, sq Square) int32 {
	var gain [32]int32
	depth := 0
	gain[0] = victim.Value()

	occupied := pos.rotated
	fromValue := attacker.Value()
	turn := side

	// Remove the initiating attacker's own square from the board so that any slider
	// it was blocking becomes a candidate for the next capture.
	occupied = occupied.Xor(findInitialSquare(pos, side, attacker, sq))

	for {
		turn = turn.Opponent()
		depth++
		gain[depth] = fromValue - gain[depth-1]
		if max(-gain[depth-1], gain[depth]) < 0 {
			break // further capturing cannot improve either side's score
		}

		from, piece, ok := leastValuableAttacker(pos, occupied, turn, sq)
		if !ok {
			break // no attacker left for turn
		}

		fromValue = piece.Value()
		occupied = occupied.Xor(from)
	}

	for depth--; depth > 0; depth-- {
		gain[depth-1] = -max(-gain[depth-1], gain[depth])
	}
	return gain[0]
}

func max(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// findInitialSquare locates the originating square of the piece the caller says is about
// to capture on sq; it must be one of side's attackers of piece type attacker.
func findInitialSquare(pos *Position, side Color, attacker Piece, sq Square) Square {
	bb := attackersOfType(pos, pos.rotated, side, attacker, sq)
	if bb == 0 {
		return sq // fallback: nothing to remove, caller passed an inconsistent attacker
	}
	return bb.LastPopSquare()
}

// leastValuableAttacker finds the cheapest piece of color turn attacking sq given the
// (possibly reduced, by prior captures) occupancy in r.
func leastValuableAttacker(pos *Position, r RotatedBitboard, turn Color, sq Square) (Square, Piece, bool) {
	if bb := PawnCaptureboard(turn.Opponent(), BitMask(sq)) & pos.Piece(turn, Pawn) & r.Mask(); bb != 0 {
		return bb.LastPopSquare(), Pawn, true
	}
	for _, p := range []Piece{Knight, Bishop, Rook, Queen, King} {
		if bb := attackersOfType(pos, r, turn, p, sq); bb != 0 {
			return bb.LastPopSquare(), p, true
		}
	}
	return ZeroSquare, NoPiece, false
}

func attackersOfType(pos *Position, r RotatedBitboard, turn Color, piece Piece, sq Square) Bitboard {
	return Attackboard(r, sq, piece) & pos.Piece(turn, piece) & r.Mask()
}
