package schedule

import "math/rand"

// pairFrame is one level of the pairing search: participant p and the
// opponents still to try for it.
type pairFrame struct {
	p          int
	q          int // current opponent, -1 when none
	candidates []int
	next       int
}

// pairRound finds a perfect matching of order in which no pair has already
// played. The first unpaired participant is paired with each eligible
// opponent in random order, backtracking when the rest cannot be completed.
// The search is exhaustive for the given order, so a nil result means no
// matching exists. On failure the second return value is the smallest
// number of participants left unmatched at any dead end.
func pairRound(order []Participant, st *State, rng *rand.Rand) ([][2]Participant, int) {
	n := len(order)
	if n == 0 {
		return nil, 0
	}
	paired := make([]bool, n)
	var stack []*pairFrame
	unmatched := n

	for {
		p, q, remaining := -1, -1, 0
		for i := 0; i < n; i++ {
			if paired[i] {
				continue
			}
			remaining++
			if p < 0 {
				p = i
			} else if q < 0 {
				q = i
			}
		}

		if remaining == 2 {
			if !st.Played(order[p], order[q]) {
				return collectPairs(order, stack, p, q), 0
			}
			unmatched = min(unmatched, 2)
		} else {
			var candidates []int
			for i := p + 1; i < n; i++ {
				if !paired[i] && !st.Played(order[p], order[i]) {
					candidates = append(candidates, i)
				}
			}
			rng.Shuffle(len(candidates), func(i, j int) {
				candidates[i], candidates[j] = candidates[j], candidates[i]
			})
			paired[p] = true
			stack = append(stack, &pairFrame{p: p, q: -1, candidates: candidates})
		}

		// Move the deepest frame on to its next opponent, unwinding exhausted frames.
		for {
			if len(stack) == 0 {
				return nil, unmatched
			}
			f := stack[len(stack)-1]
			if f.q >= 0 {
				paired[f.q] = false
				f.q = -1
			}
			if f.next < len(f.candidates) {
				f.q = f.candidates[f.next]
				f.next++
				paired[f.q] = true
				break
			}
			unmatched = min(unmatched, n-2*(len(stack)-1))
			paired[f.p] = false
			stack = stack[:len(stack)-1]
		}
	}
}

func collectPairs(order []Participant, stack []*pairFrame, lastA, lastB int) [][2]Participant {
	pairs := make([][2]Participant, 0, len(stack)+1)
	for _, f := range stack {
		pairs = append(pairs, [2]Participant{order[f.p], order[f.q]})
	}
	return append(pairs, [2]Participant{order[lastA], order[lastB]})
}
