package searchctl

import (
	"context"
	"github.com/tanagerchess/corvid/pkg/board"
	"github.com/tanagerchess/corvid/pkg/eval"
	"github.com/tanagerchess/corvid/pkg/search"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"github.com/seekerror/stdlib/pkg/util/iox"
	"sync"
	"time"
)

// Iterative is a search harness for iterative deepening search.
type Iterative struct {
	Root search.Search
}

// aspirationWindow is the initial half-width of the window centered on the previous
// iteration's score. A placeholder pending position-suite regression, per spec.md's Open
// Questions on aspiration widening: narrower windows cut more nodes on a stable score but cost
// a re-search on every fail-low/fail-high.
const aspirationWindow = 25

func (i *Iterative) Launch(ctx context.Context, b *board.Board, tt search.TranspositionTable, noise eval.Random, opt Options) (Handle, <-chan search.PV) {
	out := make(chan search.PV, 1)
	h := &handle{
		init: iox.NewAsyncCloser(),
		quit: iox.NewAsyncCloser(),
	}
	go h.process(ctx, i.Root, b, tt, noise, opt, out)

	return h, out
}

type handle struct {
	init, quit iox.AsyncCloser

	pv search.PV
	mu sync.Mutex
}

func (h *handle) process(ctx context.Context, root search.Search, b *board.Board, tt search.TranspositionTable, noise eval.Random, opt Options, out chan search.PV) {
	defer h.init.Close()
	defer close(out)

	sctx := &search.Context{Alpha: eval.NegInfScore, Beta: eval.InfScore, TT: tt, Noise: noise, Ordering: search.NewOrdering()}
	soft, useSoft := EnforceTimeControl(ctx, h, opt.TimeControl, b.Turn())

	wctx, cancel := contextx.WithQuitCancel(ctx, h.quit.Closed())
	defer cancel()

	if tt != nil {
		tt.NewGeneration() // age prior search's entries before this root search reuses the table
	}

	depth := 1
	prevScore := eval.ZeroScore
	for !h.quit.IsClosed() {
		start := time.Now()

		if depth > 1 {
			sctx.Ordering.Decay() // keep this iteration's cutoffs weighted over stale ones
		}

		// Aspiration window: depth 1 and any forced-mate score from the previous iteration
		// search the full width, since a narrow window around a mate score widens immediately
		// anyway. Otherwise start narrow around the previous score and double the window on
		// each fail-low/fail-high until the result lands strictly inside the window searched.
		sctx.Alpha, sctx.Beta = eval.NegInfScore, eval.InfScore
		if depth > 1 && !prevScore.IsMate() {
			sctx.Alpha, sctx.Beta = prevScore-aspirationWindow, prevScore+aspirationWindow
		}

		var nodes uint64
		var score eval.Score
		var moves []board.Move
		var err error
		for window := eval.Score(aspirationWindow); ; window *= 2 {
			nodes, score, moves, err = root.Search(wctx, sctx, b, depth)
			if err != nil || score.IsInvalid() {
				break
			}
			switch {
			case sctx.Beta != eval.InfScore && !score.Less(sctx.Beta):
				sctx.Beta = eval.Crop(score + window) // fail-high: widen upward and re-search
			case sctx.Alpha != eval.NegInfScore && !sctx.Alpha.Less(score):
				sctx.Alpha = eval.Crop(score - window) // fail-low: widen downward and re-search
			default:
				goto done
			}
		}
	done:
		if err != nil {
			if err == search.ErrHalted {
				return // Halt was called.
			}
			logw.Errorf(ctx, "Search failed on %v at depth=%v: %v", b, depth, err)
			return
		}
		prevScore = score

		pv := search.PV{
			Depth: depth,
			Nodes: nodes,
			Score: score,
			Moves: moves,
			Time:  time.Since(start),
		}
		if tt != nil {
			pv.Hash = tt.Used()
		}

		logw.Debugf(ctx, "Searched %v: %v", b.Position(), pv)

		h.mu.Lock()
		h.pv = pv
		h.mu.Unlock()

		select {
		case <-out:
		default:
		}
		out <- pv

		h.init.Close()
		if limit, ok := opt.DepthLimit.V(); ok && uint(depth) == limit {
			return // halt: reached max depth
		}
		if md, ok := score.MateDistance(); ok && int(md) <= depth {
			return // halt: forced mate found within full width search. Exact result.
		}
		if useSoft && soft < time.Since(start) {
			return // halt: exceeded soft time limit. Do not start new search.
		}
		depth++
	}
}

func (h *handle) Halt() search.PV {
	<-h.init.Closed()
	h.quit.Close()

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.pv
}
