package eval

import (
	"context"
	"math/rand"

	"github.com/tanagerchess/corvid/pkg/board"
)

// Random is a randomized noise generator. It adds a small amount of randomness to evaluations,
// chiefly to de-correlate play between otherwise-identical engine instances. limit is in
// centipawns; the noise is uniform in [-limit/2; limit/2]. The zero value always returns zero.
type Random struct {
	rand  *rand.Rand
	limit int
}

func NewRandom(limit int, seed int64) Random {
	return Random{
		limit: limit,
		rand:  rand.New(rand.NewSource(seed)),
	}
}

func (n Random) Evaluate(ctx context.Context, b *board.Board) Score {
	if n.limit <= 0 {
		return 0
	}
	return Score(n.rand.Intn(n.limit) - n.limit/2)
}
