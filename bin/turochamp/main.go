// turochamp is an implementation of Turing and Champernowne's 1948 TUROCHAMP chess engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/tanagerchess/corvid/pkg/engine"
	"github.com/tanagerchess/corvid/pkg/engine/uci"
	"github.com/tanagerchess/corvid/pkg/search"
	"github.com/tanagerchess/corvid/pkg/turochamp"
	"github.com/seekerror/logw"
	"os"
)

var (
	ply = flag.Int("ply", 2, "Search depth limit (zero if no limit)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: turochamp [options]

TUROCHAMP is a re-implementation of Alan Turing and David Champernowne's 1948
chess engine, described in "Digital computers applied to games" (1953). The
re-implementation uses the UCI protocol for use in modern chess programs.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	logw.Infof(ctx, "TUROCHAMP 1948 chess engine (%v ply)", *ply)

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		// Use UCI protocol.

		root := search.AlphaBeta{
			Explore: search.FullExploration,
			Eval: turochamp.Quiescence{
				Eval: turochamp.Eval{},
			},
		}

		e := engine.New(ctx, "TUROCHAMP", "Alan Turing and David Champernowne", root,
			engine.WithOptions(engine.Options{Depth: uint(*ply)}))

		driver, out := uci.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}
}
