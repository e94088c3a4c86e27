package schedule

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairRound(t *testing.T) {
	t.Run("pairs everyone when nothing has been played", func(t *testing.T) {
		order := testRoster(8)
		pairs, _ := pairRound(order, NewState(), rand.New(rand.NewSource(1)))
		require.Len(t, pairs, 4)
		seen := make(map[Participant]bool)
		for _, pair := range pairs {
			for _, p := range pair {
				assert.False(t, seen[p], "%s paired twice", p)
				seen[p] = true
			}
		}
		assert.Len(t, seen, 8)
	})

	t.Run("first participant leads each pair it is tried in", func(t *testing.T) {
		order := []Participant{"A", "B", "C", "D"}
		pairs, _ := pairRound(order, NewState(), rand.New(rand.NewSource(1)))
		assert.Equal(t, Participant("A"), pairs[0][0])
	})

	t.Run("backtracks to the only valid matching", func(t *testing.T) {
		st := NewState()
		st.markPlayed("A", "B")
		st.markPlayed("A", "C")
		for seed := int64(1); seed <= 10; seed++ {
			pairs, _ := pairRound([]Participant{"A", "B", "C", "D"}, st, rand.New(rand.NewSource(seed)))
			assert.Equal(t, [][2]Participant{{"A", "D"}, {"B", "C"}}, pairs, "seed %d", seed)
		}
	})

	t.Run("backtracks past a dead end deeper in the search", func(t *testing.T) {
		// D may only face B, E or F; B may only face A, C or D.
		st := NewState()
		st.markPlayed("A", "D")
		st.markPlayed("C", "D")
		st.markPlayed("B", "E")
		st.markPlayed("B", "F")
		order := []Participant{"A", "B", "C", "D", "E", "F"}
		for seed := int64(1); seed <= 10; seed++ {
			pairs, _ := pairRound(order, st, rand.New(rand.NewSource(seed)))
			require.NotNil(t, pairs, "seed %d: no pairing found", seed)
			for _, pair := range pairs {
				assert.False(t, st.Played(pair[0], pair[1]), "seed %d: %s vs %s already played", seed, pair[0], pair[1])
			}
		}
	})

	t.Run("reports failure when a participant has no opponents left", func(t *testing.T) {
		st := NewState()
		st.markPlayed("A", "B")
		st.markPlayed("A", "C")
		st.markPlayed("A", "D")
		pairs, unmatched := pairRound([]Participant{"A", "B", "C", "D"}, st, rand.New(rand.NewSource(1)))
		assert.Nil(t, pairs)
		assert.Equal(t, 4, unmatched)
	})

	t.Run("reports the last two left unmatched", func(t *testing.T) {
		st := NewState()
		st.markPlayed("A", "C")
		st.markPlayed("A", "D")
		st.markPlayed("C", "D")
		pairs, unmatched := pairRound([]Participant{"A", "B", "C", "D"}, st, rand.New(rand.NewSource(1)))
		assert.Nil(t, pairs)
		assert.Equal(t, 2, unmatched)
	})

	t.Run("two participants who already met cannot pair", func(t *testing.T) {
		st := NewState()
		st.markPlayed("A", "B")
		pairs, unmatched := pairRound([]Participant{"A", "B"}, st, rand.New(rand.NewSource(1)))
		assert.Nil(t, pairs)
		assert.Equal(t, 2, unmatched)
	})
}
