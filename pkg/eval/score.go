package eval

import (
	"fmt"
	"math"

	"github.com/tanagerchess/corvid/pkg/board"
)

// Score is a signed position or move score in centipawns, from White's point of view:
// positive favors White, negative favors Black. Mate scores are encoded near the bounds of
// the range so that alpha-beta comparisons still work correctly: MateScore minus the number
// of plies to deliver mate.
type Score int32

const (
	MateScore Score = 32000
	// MaxPly bounds how many plies a mate score can be "distance encoded" over; also used
	// as the search's hard ply/array-size ceiling elsewhere (history tables, killer slots).
	MaxPly = 128

	MaxScore Score = MateScore + MaxPly
	Inf      Score = MaxScore + 1
	NegInf   Score = -Inf

	// NegInfScore and InfScore are the window bounds a root search starts from absent
	// a narrower aspiration window.
	NegInfScore = NegInf
	InfScore    = Inf

	// ZeroScore is a drawn or otherwise neutral evaluation.
	ZeroScore Score = 0

	// MinScore is returned for a position found to be checkmate against the side to move,
	// before ply-distance information is folded in by the caller.
	MinScore = NegInfScore

	// InvalidScore marks a search result abandoned due to cancellation; never a legitimate
	// evaluation, so it must sit outside [-Inf;Inf].
	InvalidScore Score = math.MinInt32
)

// IsInvalid reports whether s is the InvalidScore sentinel.
func (s Score) IsInvalid() bool {
	return s == InvalidScore
}

// Negate flips the score to the other side's point of view. InvalidScore is sticky.
func (s Score) Negate() Score {
	if s.IsInvalid() {
		return s
	}
	return -s
}

// Less reports whether s is a worse outcome than o, from the same point of view.
func (s Score) Less(o Score) bool {
	return s < o
}

// IncrementMateDistance adds one ply to a mate-distance-encoded score as it is propagated
// up one level of search, i.e. away from the node the mate was discovered in. Non-mate
// scores are returned unchanged.
func IncrementMateDistance(s Score) Score {
	if _, ok := s.MateDistance(); !ok {
		return s
	}
	if s > 0 {
		return s - 1
	}
	return s + 1
}

// Mate returns the score for delivering mate in the given number of plies from the current node.
func Mate(plies int) Score {
	return MateScore - Score(plies)
}

// Mated returns the score for being mated in the given number of plies from the current node.
func Mated(plies int) Score {
	return -MateScore + Score(plies)
}

// IsMate returns true iff the score represents a forced mate (for either side).
func (s Score) IsMate() bool {
	return s > MateScore-MaxPly || s < -MateScore+MaxPly
}

// MateDistance returns the number of plies to deliver or suffer mate, and whether s encodes a
// mate at all. The sign of s tells the caller which side is mating.
func (s Score) MateDistance() (int, bool) {
	switch {
	case s > MateScore-MaxPly:
		return int(MateScore - s), true
	case s < -MateScore+MaxPly:
		return int(MateScore + s), true
	default:
		return 0, false
	}
}

// ToTT rewrites a mate score found at the given search ply into the ply-independent form
// stored in the transposition table: "mate in N plies from here" becomes relative to the root,
// since the table entry may be probed again from a different ply.
func ToTT(score Score, ply int) Score {
	switch {
	case score > MateScore-MaxPly:
		return score - Score(ply)
	case score < -MateScore+MaxPly:
		return score + Score(ply)
	default:
		return score
	}
}

// FromTT reverses ToTT when reading a stored score back in at the current search ply.
func FromTT(score Score, ply int) Score {
	switch {
	case score > MateScore-MaxPly:
		return score + Score(ply)
	case score < -MateScore+MaxPly:
		return score - Score(ply)
	default:
		return score
	}
}

func (s Score) String() string {
	if plies, ok := s.MateDistance(); ok {
		if s > 0 {
			return fmt.Sprintf("#%v", (plies+1)/2)
		}
		return fmt.Sprintf("#-%v", (plies+1)/2)
	}
	return fmt.Sprintf("%.2f", float64(s)/100)
}

// Unit returns the signed unit for the color: 1 for White and -1 for Black. Used to convert a
// White-relative Score into a side-to-move-relative one for negamax.
func Unit(c board.Color) Score {
	if c == board.White {
		return 1
	}
	return -1
}

// Crop crops a Score into [-MaxScore;MaxScore], i.e. excludes the Inf sentinels.
func Crop(s Score) Score {
	switch {
	case s > MaxScore:
		return MaxScore
	case s < -MaxScore:
		return -MaxScore
	default:
		return s
	}
}

// Max returns the largest of the given scores.
func Max(a, b Score) Score {
	if a < b {
		return b
	}
	return a
}

// Min returns the smallest of the given scores.
func Min(a, b Score) Score {
	if a < b {
		return a
	}
	return b
}
