// Package board contain chess board representation and utilities.
package board

import "fmt"

const (
	repetition3Limit   = 3
	repetition5Limit   = 5
	noprogressPlyLimit = 100
)

// ply records everything needed to unmake a move and restore Board's own bookkeeping
// (as opposed to Position's bookkeeping, which Undo covers). hash is the hash of the
// position BEFORE the move, i.e. what Board.hash must revert to on PopMove.
type ply struct {
	move       Move
	undo       Undo
	hash       ZobristHash
	noprogress int
}

// Board represents a chess board, metadata and history of positions to correctly handle game
// results, notably various draw conditions. Unlike Position, which is mutated in place for the
// search hot path, Board additionally threads an undo stack so PushMove/PopMove can replay a
// whole game. Not thread-safe; Fork gives a worker its own copy to mutate independently.
type Board struct {
	zt  *ZobristTable
	pos *Position

	turn       Color
	fullmoves  int
	noprogress int
	hash       ZobristHash
	result     Result

	repetitions map[ZobristHash]int
	history     []ply
	posHashes   []ZobristHash // post-move hash after each ply in history, plus the initial hash
}

func NewBoard(zt *ZobristTable, pos *Position, turn Color, noprogress, fullmoves int) *Board {
	hash := zt.Hash(pos, turn)
	return &Board{
		zt:          zt,
		pos:         pos,
		turn:        turn,
		fullmoves:   fullmoves,
		noprogress:  noprogress,
		hash:        hash,
		repetitions: map[ZobristHash]int{hash: 1},
		posHashes:   []ZobristHash{hash},
	}
}

// Fork returns an independent copy that can be mutated (PushMove/PopMove) without affecting b.
func (b *Board) Fork() *Board {
	fork := &Board{
		zt:          b.zt,
		pos:         b.pos.Clone(),
		turn:        b.turn,
		fullmoves:   b.fullmoves,
		noprogress:  b.noprogress,
		hash:        b.hash,
		result:      b.result,
		repetitions: make(map[ZobristHash]int, len(b.repetitions)),
		history:     append([]ply(nil), b.history...),
		posHashes:   append([]ZobristHash(nil), b.posHashes...),
	}
	for k, v := range b.repetitions {
		fork.repetitions[k] = v
	}
	return fork
}

func (b *Board) Position() *Position {
	return b.pos
}

func (b *Board) Turn() Color {
	return b.turn
}

func (b *Board) Hash() ZobristHash {
	return b.hash
}

func (b *Board) NoProgress() int {
	return b.noprogress
}

func (b *Board) FullMoves() int {
	return b.fullmoves
}

// Ply returns the number of half-moves played so far.
func (b *Board) Ply() int {
	return len(b.history)
}

func (b *Board) Result() Result {
	return b.result
}

// LegalMoves returns the legal moves for the side to move in the current position.
func (b *Board) LegalMoves() []Move {
	return b.pos.LegalMoves(b.turn)
}

// PushMove attempts to make a pseudo-legal move. Returns true iff legal.
func (b *Board) PushMove(m Move) bool {
	if b.result.Reason == Checkmate || b.result.Reason == Stalemate {
		return false // there are no legal moves
	} // else: ignore draws that are not always called correctly.

	mover := b.turn
	newHash, undo := b.pos.MakeMove(b.zt, mover, b.hash, m)
	if b.pos.IsAttacked(mover, b.pos.pieces[mover][King].LastPopSquare()) {
		b.pos.UnmakeMove(mover, m, undo)
		return false // illegal: leaves own king in check
	}

	b.history = append(b.history, ply{move: m, undo: undo, hash: b.hash, noprogress: b.noprogress})

	b.hash = newHash
	b.posHashes = append(b.posHashes, b.hash)
	b.noprogress = updateNoProgress(b.noprogress, m)
	b.turn = mover.Opponent()
	if b.turn == White {
		b.fullmoves++
	}
	b.repetitions[b.hash]++

	b.result = Result{}
	if b.repetitions[b.hash] >= repetition3Limit {
		switch actual := b.identicalPositionCount(); {
		case actual >= repetition5Limit:
			b.result = Result{Outcome: Draw, Reason: Repetition5}
		case actual >= repetition3Limit:
			b.result = Result{Outcome: Draw, Reason: Repetition3}
		default:
			// zobrist collision: not an actual repetition
		}
	}
	if b.noprogress >= noprogressPlyLimit {
		b.result = Result{Outcome: Draw, Reason: NoProgress}
	}
	if m.IsCapture() && b.pos.HasInsufficientMaterial() {
		b.result = Result{Outcome: Draw, Reason: InsufficientMaterial}
	}

	return true
}

// PushNullMove passes the turn without moving a piece, clearing any en passant right as the
// rules require. Always legal (passing never leaves the mover's own king in check), so unlike
// PushMove there is nothing to report back. Used by null-move pruning to cheaply probe whether
// the opponent is so far ahead that even a free tempo fails high.
func (b *Board) PushNullMove() {
	mover := b.turn
	hash := b.hash ^ b.zt.turn[mover] ^ b.zt.turn[mover.Opponent()]

	ep := b.pos.enpassant
	if ep != ZeroSquare {
		hash ^= b.zt.enpassant[ep]
		b.pos.enpassant = ZeroSquare
	}

	b.history = append(b.history, ply{move: Move{}, undo: Undo{EnPassant: ep}, hash: b.hash, noprogress: b.noprogress})
	b.posHashes = append(b.posHashes, hash)
	b.hash = hash
	b.turn = mover.Opponent()
	b.result = Result{}
}

// PopNullMove undoes the last PushNullMove.
func (b *Board) PopNullMove() {
	last := b.history[len(b.history)-1]
	b.history = b.history[:len(b.history)-1]
	b.posHashes = b.posHashes[:len(b.posHashes)-1]

	b.pos.enpassant = last.undo.EnPassant
	b.hash = last.hash
	b.turn = b.turn.Opponent()
	b.result = Result{}
}

// PopMove undoes the last move made via PushMove. Returns false if there is no move to undo.
func (b *Board) PopMove() (Move, bool) {
	if len(b.history) == 0 {
		return Move{}, false
	}

	last := b.history[len(b.history)-1]
	b.history = b.history[:len(b.history)-1]
	b.posHashes = b.posHashes[:len(b.posHashes)-1]

	mover := b.turn.Opponent()
	b.pos.UnmakeMove(mover, last.move, last.undo)

	b.repetitions[b.hash]--
	b.hash = last.hash
	b.noprogress = last.noprogress
	b.turn = mover
	if b.turn == Black {
		b.fullmoves--
	}
	b.result = Result{}

	return last.move, true
}

// AdjudicateNoLegalMoves adjudicates the position assuming no legal moves exist.
// The result is then either Mate or Stalemate.
func (b *Board) AdjudicateNoLegalMoves() Result {
	result := Result{Outcome: Draw, Reason: Stalemate}
	if b.pos.IsChecked(b.turn) {
		result = Result{Outcome: Loss(b.turn), Reason: Checkmate}
	}
	b.Adjudicate(result)
	return result
}

// Adjudicate the position as given.
func (b *Board) Adjudicate(result Result) {
	b.result = result
}

// identicalPositionCount returns the number of times the current position's hash has occurred
// across the game's full post-move hash history, including the current occurrence. The zobrist
// hash folds in side-to-move, so a match already implies the same player is on move.
func (b *Board) identicalPositionCount() int {
	count := 0
	for i := len(b.posHashes) - 1; i >= 0 && count < repetition5Limit; i-- {
		if b.posHashes[i] == b.hash {
			count++
		}
	}
	return count
}

// LastMove returns the last move, if any.
func (b *Board) LastMove() (Move, bool) {
	if len(b.history) == 0 {
		return Move{}, false
	}
	return b.history[len(b.history)-1].move, true
}

// HasCastled returns true iff the color has castled at some point in this board's history.
func (b *Board) HasCastled(c Color) bool {
	mover := b.turn
	for i := len(b.history) - 1; i >= 0; i-- {
		mover = mover.Opponent()
		if mover == c && b.history[i].move.IsCastle() {
			return true
		}
	}
	return false
}

func (b *Board) String() string {
	return fmt.Sprintf("board{pos=%v, turn=%v, hash=%x (%v) noprogress=%v, fullmoves=%v, result=%v}",
		b.pos, b.turn, b.hash, b.repetitions[b.hash], b.noprogress, b.fullmoves, b.result)
}

func updateNoProgress(old int, m Move) int {
	if m.Type != Normal {
		return 0
	}
	return old + 1
}
