// morlock runs the corvid chess engine, a full alpha-beta search over material and
// positional evaluation, as a UCI engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tanagerchess/corvid/pkg/engine"
	"github.com/tanagerchess/corvid/pkg/engine/uci"
	"github.com/tanagerchess/corvid/pkg/eval"
	"github.com/tanagerchess/corvid/pkg/sargon"
	"github.com/tanagerchess/corvid/pkg/search"
	"github.com/seekerror/logw"
)

var (
	depth   = flag.Uint("depth", 0, "Default search depth limit, if no other limit given (zero if no limit)")
	hash    = flag.Uint("hash", 64, "Transposition table size, in MB (zero to disable)")
	useBook = flag.Bool("book", true, "Use the built-in opening book")

	threads               = flag.Uint("threads", 1, "Root-parallel worker pool size (1 disables parallel root search)")
	rootParallelMinDepth  = flag.Uint("root-parallel-min-depth", 0, "Minimum root depth before -threads splits the root (zero selects a built-in default)")
	rootParallelMinMoves  = flag.Uint("root-parallel-min-moves", 0, "Minimum legal root move count before -threads splits the root (zero selects a built-in default)")
	deterministicThreads  = flag.Bool("deterministic-threading", false, "Disable cross-worker cancellation so parallel root search output depends only on position, depth and options")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: morlock [options]

morlock is the corvid chess engine: principal variation search with a transposition
table, quiescence search and a material-and-mobility evaluator, exposed over the UCI
protocol for use in modern chess programs.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		root := search.AlphaBeta{
			Explore: search.FullExploration,
			Eval: search.Quiescence{
				Explore: search.CapturesAndPromotions,
				Eval:    search.StaticEvaluator{Eval: eval.Tapered{}},
			},
			Static: search.StaticEvaluator{Eval: eval.Tapered{}},
		}

		e := engine.New(ctx, "Morlock", "corvid", root, engine.WithOptions(engine.Options{
			Depth:                  *depth,
			Hash:                   *hash,
			Threads:                *threads,
			RootParallelMinDepth:   *rootParallelMinDepth,
			RootParallelMinMoves:   *rootParallelMinMoves,
			DeterministicThreading: *deterministicThreads,
		}))

		var uciOpts []uci.Option
		if *useBook {
			uciOpts = append(uciOpts, uci.UseBook(sargon.Book, time.Now().UnixNano()))
		}

		driver, out := uci.NewDriver(ctx, e, in, uciOpts...)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}

	logw.Exitf(ctx, "Morlock exited")
}
