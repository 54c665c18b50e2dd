package eval_test

import (
	"context"
	"testing"

	"github.com/tanagerchess/corvid/pkg/board/fen"
	"github.com/tanagerchess/corvid/pkg/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaperedSymmetricStartIsZero(t *testing.T) {
	b, err := fen.NewBoard(fen.Initial)
	require.NoError(t, err)

	score := eval.Tapered{}.Evaluate(context.Background(), b)
	assert.Equal(t, eval.ZeroScore, score)
}

func TestTaperedFavorsMaterialAdvantage(t *testing.T) {
	// White is up a rook, everything else mirrored.
	b, err := fen.NewBoard("4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	require.NoError(t, err)

	score := eval.Tapered{}.Evaluate(context.Background(), b)
	assert.Greater(t, score, eval.ZeroScore)
}

func TestTaperedFavorsBlackMaterialAdvantage(t *testing.T) {
	b, err := fen.NewBoard("4k3/8/8/8/8/8/8/r3K3 w - - 0 1")
	require.NoError(t, err)

	score := eval.Tapered{}.Evaluate(context.Background(), b)
	assert.Less(t, score, eval.ZeroScore)
}
