package search

import "github.com/tanagerchess/corvid/pkg/board"

// maxKillerPly bounds the killer-move table; search depth never approaches it in practice.
const maxKillerPly = 128

// historyCap bounds history and continuation scores: an entry that passes it is halved,
// rather than letting a single line's stats overwhelm ordering everywhere else.
const historyCap = 1 << 20

// Ordering accumulates move-ordering statistics across one iterative-deepening root search:
// a killer-move pair per ply, a from/to history table, a continuation-history table keyed on
// the previous move played, and a countermove table. All are quiet-move heuristics -- captures
// and promotions are ordered by MVVLVA instead. Grounded on hailam-chessplay's
// internal/engine/ordering.go MoveOrderer, adapted to this package's Move (which already
// carries its own Piece/Capture, unlike a Position-lookup API) and to a single combined
// priority used by board.MoveList rather than a separately-sorted score slice.
type Ordering struct {
	killers      [maxKillerPly][2]board.Move
	history      [board.NumPieces][64]int32
	continuation [board.NumPieces][64][board.NumPieces][64]int32
	counterMove  [board.NumPieces][64]board.Move
}

// NewOrdering returns an empty move-ordering table for a new root search.
func NewOrdering() *Ordering {
	return &Ordering{}
}

// Decay halves every accumulated score, keeping recent information more influential than
// stats from several iterative-deepening depths ago without discarding it outright.
func (o *Ordering) Decay() {
	for i := range o.history {
		for j := range o.history[i] {
			o.history[i][j] /= 2
		}
	}
	for i := range o.continuation {
		for j := range o.continuation[i] {
			for k := range o.continuation[i][j] {
				for l := range o.continuation[i][j][k] {
					o.continuation[i][j][k][l] /= 2
				}
			}
		}
	}
}

// Priority returns a quiet-move priority function for the given ply, combining the killer
// pair, history and continuation-history (keyed off prev, the move that led to this node).
// Captures and promotions are left at a fixed low priority here; callers order them via
// MVVLVA first and only fall back to this for ties among quiet moves.
func (o *Ordering) Priority(prev board.Move, ply int) board.MovePriorityFn {
	var pp, pt board.Piece
	hasPrev := prev != board.Move{}
	if hasPrev {
		pp, pt = prev.Piece, prev.To
	}

	counter, hasCounter := o.CounterMove(prev)

	killer1, killer2 := board.Move{}, board.Move{}
	if ply >= 0 && ply < maxKillerPly {
		killer1, killer2 = o.killers[ply][0], o.killers[ply][1]
	}

	return func(m board.Move) board.MovePriority {
		if m.IsCapture() || m.IsPromotion() {
			return 0
		}
		if m.Equals(killer1) {
			return board.MovePriority(1 << 14)
		}
		if m.Equals(killer2) {
			return board.MovePriority(1 << 13)
		}
		if hasCounter && m.Equals(counter) {
			return board.MovePriority(1 << 12)
		}

		score := o.history[m.Piece][m.To]
		if hasPrev {
			score += o.continuation[pp][pt][m.Piece][m.To] / 2
		}
		// Scaled well below the killer thresholds and within MovePriority's int16 range:
		// historyCap (2^20) plus half as much continuation bonus, shifted down by 8.
		return board.MovePriority(score >> 8)
	}
}

// CounterMove returns the recorded reply to prev, if any.
func (o *Ordering) CounterMove(prev board.Move) (board.Move, bool) {
	if (prev == board.Move{}) {
		return board.Move{}, false
	}
	m := o.counterMove[prev.Piece][prev.To]
	return m, m != board.Move{}
}

// RecordCutoff credits a quiet move that caused a beta cutoff: it becomes this ply's killer,
// its history and prev-conditioned continuation-history score rise by depth^2, and it becomes
// the countermove to prev. failed lists the other quiet moves tried first at this node, which
// are penalized symmetrically so that moves repeatedly failing to cut do not linger at the top
// of the order.
func (o *Ordering) RecordCutoff(prev, m board.Move, ply, depth int, failed []board.Move) {
	if m.IsCapture() || m.IsPromotion() {
		return
	}

	o.updateKiller(m, ply)

	bonus := int32(depth * depth)
	o.adjustHistory(prev, m, bonus)
	for _, f := range failed {
		if f.IsCapture() || f.IsPromotion() {
			continue
		}
		o.adjustHistory(prev, f, -bonus)
	}

	if (prev != board.Move{}) {
		o.counterMove[prev.Piece][prev.To] = m
	}
}

func (o *Ordering) updateKiller(m board.Move, ply int) {
	if ply < 0 || ply >= maxKillerPly || o.killers[ply][0].Equals(m) {
		return
	}
	o.killers[ply][1] = o.killers[ply][0]
	o.killers[ply][0] = m
}

func (o *Ordering) adjustHistory(prev, m board.Move, delta int32) {
	h := &o.history[m.Piece][m.To]
	*h += delta
	if *h > historyCap || *h < -historyCap {
		*h /= 2
	}

	if (prev != board.Move{}) {
		c := &o.continuation[prev.Piece][prev.To][m.Piece][m.To]
		*c += delta
		if *c > historyCap || *c < -historyCap {
			*c /= 2
		}
	}
}
