package matcher

import (
	"fmt"
	"strings"

	"github.com/desertthunder/s2yt/internal/models"
)

// Strategy selects how permissive the matcher is.
//
// The numeric values match the --algo flag: 0 exact, 1 extended, 2 approximate.
type Strategy int

const (
	Exact Strategy = iota
	Extended
	Approximate
)

func (s Strategy) String() string {
	switch s {
	case Exact:
		return "exact"
	case Extended:
		return "extended"
	case Approximate:
		return "approximate"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Valid reports whether s is one of the three known strategies.
func (s Strategy) Valid() bool {
	return s >= Exact && s <= Approximate
}

// Tier returns the confidence tier of the loosest pass the strategy runs.
func (s Strategy) Tier() models.ConfidenceTier {
	switch s {
	case Exact:
		return models.TierExact
	case Extended:
		return models.TierExtended
	case Approximate:
		return models.TierApproximate
	default:
		return models.TierNone
	}
}

// ParseStrategy accepts "0", "1", "2" or the strategy names, case-insensitively.
func ParseStrategy(v string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "0", "exact":
		return Exact, nil
	case "1", "extended":
		return Extended, nil
	case "2", "approximate", "approx":
		return Approximate, nil
	default:
		return Exact, fmt.Errorf("%w: %q (expected 0, 1 or 2)", ErrUnknownStrategy, v)
	}
}

// FromAlgo converts the integer --algo value.
func FromAlgo(algo int) (Strategy, error) {
	s := Strategy(algo)
	if !s.Valid() {
		return Exact, fmt.Errorf("%w: %d (expected 0, 1 or 2)", ErrUnknownStrategy, algo)
	}
	return s, nil
}
