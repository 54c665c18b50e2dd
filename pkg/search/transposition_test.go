package search_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/tanagerchess/corvid/pkg/board"
	"github.com/tanagerchess/corvid/pkg/eval"
	"github.com/tanagerchess/corvid/pkg/search"
	"github.com/stretchr/testify/assert"
)

func TestTranspositionTableSize(t *testing.T) {
	ctx := context.Background()

	// Size rounds down to a power-of-two number of buckets.

	tt := search.NewTranspositionTable(ctx, 0x1000)
	assert.Equal(t, uint64(0x1000), tt.Size())
	tt2 := search.NewTranspositionTable(ctx, 0x1f00)
	assert.Equal(t, uint64(0x1000), tt2.Size())
}

func TestTranspositionTableReadWrite(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTranspositionTable(ctx, 0x1000)

	a := board.ZobristHash(rand.Uint64())

	_, _, _, _, ok := tt.Read(a, 0)
	assert.False(t, ok)

	m := board.Move{From: board.G4, To: board.G8, Promotion: board.Queen}
	s := eval.Score(200)
	assert.True(t, tt.Write(a, search.ExactBound, 0, 2, s, m))

	bound, depth, score, move, ok := tt.Read(a, 0)
	assert.True(t, ok)
	assert.Equal(t, search.ExactBound, bound)
	assert.Equal(t, 2, depth)
	assert.Equal(t, s, score)
	assert.Equal(t, m, move)

	_, _, _, _, ok = tt.Read(a^0xff0000, 0)
	assert.False(t, ok)
}

func TestTranspositionTableRefreshesSameKey(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTranspositionTable(ctx, 0x1000)

	a := board.ZobristHash(rand.Uint64())
	m := board.Move{From: board.G4, To: board.G8, Promotion: board.Queen}

	assert.True(t, tt.Write(a, search.ExactBound, 0, 2, eval.Score(500), m))
	assert.True(t, tt.Write(a, search.ExactBound, 0, 3, eval.Score(500), m))

	_, depth, _, _, ok := tt.Read(a, 0)
	assert.True(t, ok)
	assert.Equal(t, 3, depth)
}

func TestTranspositionTableGenerationAging(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTranspositionTable(ctx, 0x1000)

	m := board.Move{From: board.G4, To: board.G8, Promotion: board.Queen}

	// Fill every slot in a bucket at the current generation with a deep entry.
	old := board.ZobristHash(rand.Uint64()) & 0xf
	for i := uint64(0); i < 4; i++ {
		hash := old | (i << 16)
		assert.True(t, tt.Write(hash, search.ExactBound, 0, 10, eval.Score(1), m))
	}

	tt.NewGeneration()

	// A shallow write in a new generation should still find a slot, evicting one of the
	// now-stale entries rather than being dropped.
	fresh := old | (4 << 16)
	assert.True(t, tt.Write(fresh, search.ExactBound, 0, 1, eval.Score(2), m))

	_, _, _, _, ok := tt.Read(fresh, 0)
	assert.True(t, ok)
}

func TestTranspositionTableMateDistanceNormalization(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTranspositionTable(ctx, 0x1000)

	a := board.ZobristHash(rand.Uint64())
	m := board.Move{From: board.G4, To: board.G8, Promotion: board.Queen}

	// Mate in 3 plies, discovered 2 plies into the search (ply 2): root-relative distance
	// is 5. Stored at ply 2, it must read back as "mate in 3" again at ply 2.
	score := eval.Mate(3)
	assert.True(t, tt.Write(a, search.ExactBound, 2, 4, score, m))

	_, _, got, _, ok := tt.Read(a, 2)
	assert.True(t, ok)
	assert.Equal(t, score, got)
}
