package schedule

import (
	"fmt"
	"math/rand"
	"sort"
)

// SeedMethod records how a seeding order was produced.
type SeedMethod string

const (
	// SeedStandings orders participants by standings points.
	SeedStandings SeedMethod = "standings"
	// SeedRandom is the unseeded fallback: a random permutation of the roster.
	SeedRandom SeedMethod = "random"
)

// ParseSeedMethod returns the SeedMethod for a config value.
func ParseSeedMethod(name string) (SeedMethod, error) {
	switch SeedMethod(name) {
	case SeedStandings:
		return SeedStandings, nil
	case SeedRandom:
		return SeedRandom, nil
	default:
		return "", fmt.Errorf("unknown seeding method: %q", name)
	}
}

// Standing is a participant's points total from the league table.
type Standing struct {
	Participant Participant
	Points      int
}

// Seeding is the ordered roster used to seed round construction.
type Seeding struct {
	Order  []Participant
	Method SeedMethod
}

// Seed orders the roster by standings, best first, ties by id. Roster members
// without a standing come last, by id. When no roster member has a standing
// the order is a random permutation drawn from rng and Method is SeedRandom.
func Seed(roster []Participant, standings []Standing, rng *rand.Rand) (Seeding, error) {
	if err := checkRoster(roster); err != nil {
		return Seeding{}, err
	}

	inRoster := make(map[Participant]bool, len(roster))
	for _, p := range roster {
		inRoster[p] = true
	}
	points := make(map[Participant]int)
	for _, s := range standings {
		if inRoster[s.Participant] {
			points[s.Participant] += s.Points
		}
	}

	order := make([]Participant, len(roster))
	copy(order, roster)

	if len(points) == 0 {
		if rng == nil {
			return Seeding{}, configErrorf("random source is required for random seeding")
		}
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		return Seeding{Order: order, Method: SeedRandom}, nil
	}

	sort.SliceStable(order, func(i, j int) bool {
		pi, ranked := points[order[i]]
		pj, rankedJ := points[order[j]]
		if ranked != rankedJ {
			return ranked
		}
		if pi != pj {
			return pi > pj
		}
		return order[i] < order[j]
	})
	return Seeding{Order: order, Method: SeedStandings}, nil
}

func checkRoster(roster []Participant) error {
	if len(roster) == 0 {
		return configErrorf("roster is empty")
	}
	seen := make(map[Participant]bool, len(roster))
	for _, p := range roster {
		if seen[p] {
			return configErrorf("participant %q appears more than once", p)
		}
		seen[p] = true
	}
	return nil
}
