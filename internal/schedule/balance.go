package schedule

import "math/rand"

// assignHomeAway picks home and away for a pair: the participant with the
// lower deficit hosts, and a coin flip decides ties. Counters are updated.
func assignHomeAway(a, b Participant, st *State, rng *rand.Rand) (home, away Participant) {
	da, db := st.Counters(a).Deficit(), st.Counters(b).Deficit()
	switch {
	case da < db:
		home, away = a, b
	case db < da:
		home, away = b, a
	case rng.Float64() < 0.5:
		home, away = a, b
	default:
		home, away = b, a
	}
	st.counter(home).Home++
	st.counter(away).Away++
	return home, away
}
