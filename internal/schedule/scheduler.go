package schedule

import "math/rand"

// Request describes one stage to draw.
type Request struct {
	Roster []Participant // in seeding order
	Rounds int
	Labels []string // Labels[r-1] labels round r; may be empty

	// History holds fixtures from earlier stages that count as already
	// played. It is never modified; nil means start from nothing.
	History *State
}

// Metrics holds per-participant statistics for a generated draw.
type Metrics struct {
	Home      int
	Away      int
	Opponents []Participant // in round order
}

// Result is a complete draw. It is only returned when every round was paired.
type Result struct {
	Fixtures []Fixture // round order, then pairing order
	Metrics  map[Participant]*Metrics
	State    *State // History plus this draw, for drawing later stages
}

// Round returns the fixtures of the given round.
func (r *Result) Round(round int) []Fixture {
	var fixtures []Fixture
	for _, f := range r.Fixtures {
		if f.Round == round {
			fixtures = append(fixtures, f)
		}
	}
	return fixtures
}

// Generate draws req.Rounds rounds for the roster. Each round reshuffles the
// roster with rng, pairs it so nobody meets a previous opponent, and assigns
// home/away to keep each participant balanced. The same roster, rounds and
// rng seed always produce the same fixtures.
//
// Invalid input returns a *ConfigurationError before any round is drawn. A
// round with no valid pairing returns a *SchedulingError and no fixtures.
func Generate(req Request, rng *rand.Rand) (*Result, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, configErrorf("random source is required")
	}
	s := newScheduler(req, rng)
	if err := s.run(); err != nil {
		return nil, err
	}
	return &Result{
		Fixtures: s.fixtures,
		Metrics:  s.buildMetrics(),
		State:    s.state,
	}, nil
}

func checkRequest(req Request) error {
	if err := checkRoster(req.Roster); err != nil {
		return err
	}
	n := len(req.Roster)
	if n%2 != 0 {
		return configErrorf("roster has %d participants; an even number is required", n)
	}
	if req.Rounds < 1 {
		return configErrorf("at least one round is required, got %d", req.Rounds)
	}
	if req.Rounds > n-1 {
		return configErrorf("%d rounds requested but %d participants only have %d possible opponents each",
			req.Rounds, n, n-1)
	}
	if len(req.Labels) != 0 && len(req.Labels) != req.Rounds {
		return configErrorf("%d round labels given for %d rounds", len(req.Labels), req.Rounds)
	}
	return nil
}

type scheduler struct {
	req   Request
	rng   *rand.Rand
	state *State

	fixtures []Fixture
}

func newScheduler(req Request, rng *rand.Rand) *scheduler {
	state := NewState()
	if req.History != nil {
		state = req.History.Clone()
	}
	return &scheduler{req: req, rng: rng, state: state}
}

func (s *scheduler) run() error {
	for round := 1; round <= s.req.Rounds; round++ {
		order := make([]Participant, len(s.req.Roster))
		copy(order, s.req.Roster)
		s.rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		pairs, unmatched := pairRound(order, s.state, s.rng)
		if pairs == nil {
			return &SchedulingError{Round: round, Unmatched: unmatched}
		}

		for _, pair := range pairs {
			s.state.markPlayed(pair[0], pair[1])
			home, away := assignHomeAway(pair[0], pair[1], s.state, s.rng)
			s.fixtures = append(s.fixtures, Fixture{
				Round: round,
				Label: s.label(round),
				Home:  home,
				Away:  away,
			})
		}
	}
	return nil
}

func (s *scheduler) label(round int) string {
	if len(s.req.Labels) == 0 {
		return ""
	}
	return s.req.Labels[round-1]
}

func (s *scheduler) buildMetrics() map[Participant]*Metrics {
	metrics := make(map[Participant]*Metrics, len(s.req.Roster))
	for _, p := range s.req.Roster {
		metrics[p] = &Metrics{}
	}
	for _, f := range s.fixtures {
		metrics[f.Home].Home++
		metrics[f.Home].Opponents = append(metrics[f.Home].Opponents, f.Away)
		metrics[f.Away].Away++
		metrics[f.Away].Opponents = append(metrics[f.Away].Opponents, f.Home)
	}
	return metrics
}
