// Package parallel implements the root-level worker pool from spec.md's §4.M: once a
// search is deep enough and has enough root moves to be worth splitting, root moves are
// claimed in chunks by a fixed worker pool that shares the transposition table and a
// cancellation flag, while each worker keeps its own move-ordering state. Grounded on
// hailam-chessplay/internal/engine/worker.go's Worker/WorkerResult shape, adapted from that
// source's lazy-SMP full-position replication to atomic root-move claiming.
package parallel

import (
	"context"
	"sync"

	"github.com/tanagerchess/corvid/pkg/board"
	"github.com/tanagerchess/corvid/pkg/eval"
	"github.com/tanagerchess/corvid/pkg/search"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"go.uber.org/atomic"
)

// chunkSize is how many root moves a worker claims per atomic fetch-and-add. A small chunk
// keeps claim contention cheap while still letting a slow move's worker finish before it
// grabs another.
const chunkSize = 1

// Root is a search.Search that parallelizes the root ply over a worker pool once the search
// is deep enough and wide enough to be worth splitting; below that threshold it runs Single
// directly and unmodified, on the caller's goroutine.
type Root struct {
	// Single is the per-worker full-width search run over each claimed root move at
	// depth-1, e.g. search.AlphaBeta.
	Single search.Search

	// Threads is the worker pool size. Threads <= 1 disables parallel search entirely.
	Threads int
	// MinDepth is the minimum root depth at which the pool is used.
	MinDepth int
	// MinMoves is the minimum legal root move count at which the pool is used.
	MinMoves int
	// Deterministic disables cross-worker cancellation below a completed root search, per
	// spec.md's determinism mode: output depends only on (position, depth, options), not on
	// scheduling.
	Deterministic bool
}

type rootResult struct {
	score eval.Score
	pv    []board.Move
	ok    bool
}

func (r Root) Search(ctx context.Context, sctx *search.Context, b *board.Board, depth int) (uint64, eval.Score, []board.Move, error) {
	candidates := b.Position().PseudoLegalMoves(b.Turn())
	legal := legalRootMoves(b, candidates)

	if r.Threads <= 1 || depth < r.MinDepth || len(legal) < r.MinMoves {
		return r.Single.Search(ctx, sctx, b, depth)
	}

	results := make([]rootResult, len(legal))
	var claimed atomic.Int64
	var nodes atomic.Uint64
	var cancel atomic.Bool

	var wg sync.WaitGroup
	for w := 0; w < r.Threads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.work(ctx, sctx, b, depth, legal, results, &claimed, &nodes, &cancel)
		}()
	}
	wg.Wait()

	if contextx.IsCancelled(ctx) {
		return nodes.Load(), eval.InvalidScore, nil, search.ErrHalted
	}

	bestIdx := -1
	for i, res := range results {
		if !res.ok {
			continue
		}
		// Strict '>' keeps the lowest index among equal scores, which stands in for "first to
		// complete" deterministically: legal move order never depends on goroutine scheduling,
		// so this tie-break is reproducible across runs, matching Deterministic's intent even
		// when Deterministic is false.
		if bestIdx < 0 || results[bestIdx].score.Less(res.score) {
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return nodes.Load(), eval.InvalidScore, nil, search.ErrHalted
	}

	best := results[bestIdx]
	return nodes.Load(), best.score, append([]board.Move{legal[bestIdx]}, best.pv...), nil
}

func (r Root) work(ctx context.Context, sctx *search.Context, b *board.Board, depth int, legal []board.Move, results []rootResult, claimed *atomic.Int64, nodes *atomic.Uint64, cancel *atomic.Bool) {
	local := b.Fork()
	ordering := search.NewOrdering() // per-worker search stack: spec.md requires no sharing here

	for {
		if contextx.IsCancelled(ctx) {
			return
		}
		if !r.Deterministic && cancel.Load() {
			return
		}

		start := claimed.Add(chunkSize) - chunkSize
		if int(start) >= len(legal) {
			return
		}
		end := start + chunkSize
		if end > int64(len(legal)) {
			end = int64(len(legal))
		}

		for i := start; i < end; i++ {
			move := legal[i]
			if !local.PushMove(move) {
				continue // pre-filtered as legal; defensive only
			}

			child := &search.Context{
				Alpha:    sctx.Beta.Negate(),
				Beta:     sctx.Alpha.Negate(),
				TT:       sctx.TT,
				Noise:    sctx.Noise,
				Ordering: ordering,
			}
			n, score, pv, err := r.Single.Search(ctx, child, local, depth-1)
			local.PopMove()
			nodes.Add(n)

			if err != nil {
				continue // halted mid-move: leave this root move unreported
			}
			score = eval.IncrementMateDistance(score).Negate()
			results[i] = rootResult{score: score, pv: pv, ok: true}

			if !r.Deterministic && sctx.Beta.Less(score+1) {
				cancel.Store(true) // this move already refutes beta; no peer can do better
			}
		}
	}
}

// legalRootMoves filters pseudo-legal root moves down to the legal ones, using a scratch
// fork so the caller's board is left untouched.
func legalRootMoves(b *board.Board, candidates []board.Move) []board.Move {
	scratch := b.Fork()
	legal := make([]board.Move, 0, len(candidates))
	for _, m := range candidates {
		if scratch.PushMove(m) {
			legal = append(legal, m)
			scratch.PopMove()
		}
	}
	return legal
}
