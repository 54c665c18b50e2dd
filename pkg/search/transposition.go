package search

import (
	"context"
	"fmt"
	"github.com/tanagerchess/corvid/pkg/board"
	"github.com/tanagerchess/corvid/pkg/eval"
	"github.com/seekerror/logw"
	"math/bits"
	"sync/atomic"
	"unsafe"
)

// Bound represents the bound of a -- possibly inexact -- search score.
type Bound uint8

const (
	ExactBound Bound = iota
	LowerBound
	UpperBound
)

func (b Bound) String() string {
	switch b {
	case ExactBound:
		return "Exact"
	case LowerBound:
		return "Lower"
	case UpperBound:
		return "Upper"
	default:
		return "?"
	}
}

// TranspositionTable represents a transposition table to speed up search performance.
// Caveat: evaluation heuristics that depend on the game history (notably, hasCastled or
// last move) may be unsuitable for position-keyed caching. If the recent history is short,
// then the table may only be used for depth greater than some limit. Must be thread-safe.
type TranspositionTable interface {
	// Read returns the bound, depth, score and best move for the given position hash, if
	// present. ply is the current search ply, used to re-normalize a mate-distance-encoded
	// score from root-relative (as stored) to ply-relative.
	Read(hash board.ZobristHash, ply int) (Bound, int, eval.Score, board.Move, bool)
	// Write stores the entry into the table, depending on table semantics and replacement
	// policy. ply is the current search ply, used to normalize a mate-distance-encoded score
	// to root-relative before it is stored.
	Write(hash board.ZobristHash, bound Bound, ply, depth int, score eval.Score, move board.Move) bool

	// NewGeneration marks the start of a new root search: entries written before this call
	// become preferentially replaceable, without wiping the table outright.
	NewGeneration()

	// Size returns the size of the table in bytes.
	Size() uint64
	// Used returns the utilization as a fraction [0;1].
	Used() float64
}

type TranspositionTableFactory func(ctx context.Context, size uint64) TranspositionTable

// slotsPerBucket matches spec: four slots share a bucket index.
const slotsPerBucket = 4

// entry is a single TT slot's payload, replaced atomically as one immutable value. 24 bytes.
type entry struct {
	hash  board.ZobristHash // full hash; also serves as the key-fragment check on read
	score eval.Score
	from  board.Square
	to    board.Square
	promo board.Piece
	bound Bound
	depth uint8
	gen   uint8
}

// bucket is four slots sharing a hash-derived index, scanned linearly on read and write.
type bucket struct {
	slots [slotsPerBucket]unsafe.Pointer // *entry
}

// table is a lock-free, bucketed transposition table. Slots are swapped with a single CAS,
// so a reader can never observe a torn write; a stale or foreign entry is caught by the full
// hash comparison on read, per spec's torn-read/verify discipline.
type table struct {
	buckets []bucket
	mask    uint64
	used    uint64
	gen     uint32 // atomic generation counter, bumped by NewGeneration
}

func NewTranspositionTable(ctx context.Context, size uint64) TranspositionTable {
	bucketSize := uint64(unsafe.Sizeof(bucket{}))
	n := uint64(1 << (63 - bits.LeadingZeros64(size/bucketSize)))
	if n == 0 {
		n = 1
	}

	logw.Infof(ctx, "Allocating %vMB TT with %v buckets x %v slots", size>>20, n, slotsPerBucket)

	return &table{
		buckets: make([]bucket, n),
		mask:    n - 1,
	}
}

func (t *table) Size() uint64 {
	return uint64(len(t.buckets)) * uint64(unsafe.Sizeof(bucket{}))
}

func (t *table) Used() float64 {
	return float64(atomic.LoadUint64(&t.used)) / float64(len(t.buckets)*slotsPerBucket)
}

func (t *table) NewGeneration() {
	atomic.AddUint32(&t.gen, 1)
}

func (t *table) Read(hash board.ZobristHash, ply int) (Bound, int, eval.Score, board.Move, bool) {
	b := &t.buckets[uint64(hash)&t.mask]
	for i := range b.slots {
		e := (*entry)(atomic.LoadPointer(&b.slots[i]))
		if e == nil || e.hash != hash {
			continue
		}
		move := board.Move{From: e.from, To: e.to, Promotion: e.promo}
		return e.bound, int(e.depth), eval.FromTT(e.score, ply), move, true
	}
	return 0, 0, 0, board.Move{}, false
}

func (t *table) Write(hash board.ZobristHash, bound Bound, ply, depth int, score eval.Score, move board.Move) bool {
	b := &t.buckets[uint64(hash)&t.mask]
	gen := uint8(atomic.LoadUint32(&t.gen))

	fresh := &entry{
		hash:  hash,
		score: eval.ToTT(score, ply),
		from:  move.From,
		to:    move.To,
		promo: move.Promotion,
		bound: bound,
		depth: uint8(depth),
		gen:   gen,
	}

	victim, wasEmpty := t.chooseVictim(b, hash, gen, depth)
	old := (*entry)(atomic.LoadPointer(&b.slots[victim]))
	if !atomic.CompareAndSwapPointer(&b.slots[victim], unsafe.Pointer(old), unsafe.Pointer(fresh)) {
		return false // lost the race to a concurrent writer; the table remains consistent
	}
	if wasEmpty {
		atomic.AddUint64(&t.used, 1)
	}
	return true
}

// chooseVictim picks a slot to overwrite, per spec §4.G: prefer a slot already holding this
// key (refresh in place), else an empty slot, else the oldest-generation slot, else the
// shallowest-depth slot among same-generation entries.
func (t *table) chooseVictim(b *bucket, hash board.ZobristHash, gen uint8, depth int) (int, bool) {
	bestIdx := 0
	var best *entry
	bestEmpty := false

	for i := range b.slots {
		e := (*entry)(atomic.LoadPointer(&b.slots[i]))
		if e == nil {
			return i, true
		}
		if e.hash == hash {
			return i, false
		}
		if best == nil || worseVictim(e, best, gen) {
			best = e
			bestIdx = i
		}
	}
	return bestIdx, bestEmpty
}

// worseVictim reports whether candidate is a better (i.e. safer to overwrite) eviction
// target than incumbent: older generation wins outright; within the same generation, the
// shallower entry goes first.
func worseVictim(candidate, incumbent *entry, gen uint8) bool {
	cAge := gen - candidate.gen
	iAge := gen - incumbent.gen
	if cAge != iAge {
		return cAge > iAge
	}
	return candidate.depth < incumbent.depth
}

func (t *table) String() string {
	return fmt.Sprintf("TT[%v @ %v%%]", t.Size(), int(100*t.Used()))
}

// WriteFilter is a predicate on the Write operation.
type WriteFilter func(hash board.ZobristHash, bound Bound, ply, depth int, score eval.Score, move board.Move) bool

// WriteLimited is a TranspositionTable wrapper that ignores certain writes, such as
// less than a given minimum depth. Useful if evaluation uses recent move history.
type WriteLimited struct {
	Filter WriteFilter
	TT     TranspositionTable
}

func (w WriteLimited) Read(hash board.ZobristHash, ply int) (Bound, int, eval.Score, board.Move, bool) {
	return w.TT.Read(hash, ply)
}

func (w WriteLimited) Write(hash board.ZobristHash, bound Bound, ply, depth int, score eval.Score, move board.Move) bool {
	if w.Filter(hash, bound, ply, depth, score, move) {
		return false
	}
	return w.TT.Write(hash, bound, ply, depth, score, move)
}

func (w WriteLimited) NewGeneration() {
	w.TT.NewGeneration()
}

func (w WriteLimited) Size() uint64 {
	return w.TT.Size()
}

func (w WriteLimited) Used() float64 {
	return w.TT.Used()
}

// NewMinDepthTranspositionTable creates depth-limited TranspositionTables.
func NewMinDepthTranspositionTable(min int) TranspositionTableFactory {
	return func(ctx context.Context, size uint64) TranspositionTable {
		return WriteLimited{
			Filter: func(hash board.ZobristHash, bound Bound, ply, depth int, score eval.Score, move board.Move) bool {
				return depth < min
			},
			TT: NewTranspositionTable(ctx, size),
		}
	}
}

// NoTranspositionTable is a Nop implementation.
type NoTranspositionTable struct{}

func (n NoTranspositionTable) Read(hash board.ZobristHash, ply int) (Bound, int, eval.Score, board.Move, bool) {
	return 0, 0, 0, board.Move{}, false
}

func (n NoTranspositionTable) Write(hash board.ZobristHash, bound Bound, ply, depth int, score eval.Score, move board.Move) bool {
	return false
}

func (n NoTranspositionTable) NewGeneration() {}

func (n NoTranspositionTable) Size() uint64 {
	return 0
}

func (n NoTranspositionTable) Used() float64 {
	return 0
}
