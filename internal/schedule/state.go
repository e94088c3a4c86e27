package schedule

// Participant identifies a manager within a draw.
type Participant string

// Fixture is one scheduled pairing in a round.
type Fixture struct {
	Round int
	Label string // external round label like "GW21", passed through unchanged
	Home  Participant
	Away  Participant
}

// HomeAway counts home and away fixtures for a participant.
type HomeAway struct {
	Home int
	Away int
}

// Deficit is home minus away. Lower means owed more home fixtures.
func (c HomeAway) Deficit() int {
	return c.Home - c.Away
}

type pairKey struct {
	a, b Participant
}

func normalizePair(a, b Participant) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// State is the accumulator carried across rounds: who has played whom, and
// each participant's home/away counts. A zero State is not usable; use NewState.
type State struct {
	played   map[pairKey]bool
	counters map[Participant]*HomeAway
}

// NewState returns an empty State.
func NewState() *State {
	return &State{
		played:   make(map[pairKey]bool),
		counters: make(map[Participant]*HomeAway),
	}
}

// Played reports whether a and b have already met, in either order.
func (s *State) Played(a, b Participant) bool {
	return s.played[normalizePair(a, b)]
}

// Record adds a completed fixture to the state.
func (s *State) Record(home, away Participant) {
	s.played[normalizePair(home, away)] = true
	s.counter(home).Home++
	s.counter(away).Away++
}

// Counters returns the home/away counts for p.
func (s *State) Counters(p Participant) HomeAway {
	if c, ok := s.counters[p]; ok {
		return *c
	}
	return HomeAway{}
}

// PairCount returns the number of distinct pairs that have met.
func (s *State) PairCount() int {
	return len(s.played)
}

// Clone returns a deep copy so generation never mutates a caller's history.
func (s *State) Clone() *State {
	c := NewState()
	for k := range s.played {
		c.played[k] = true
	}
	for p, ha := range s.counters {
		v := *ha
		c.counters[p] = &v
	}
	return c
}

func (s *State) markPlayed(a, b Participant) {
	s.played[normalizePair(a, b)] = true
}

func (s *State) counter(p Participant) *HomeAway {
	c, ok := s.counters[p]
	if !ok {
		c = &HomeAway{}
		s.counters[p] = c
	}
	return c
}
