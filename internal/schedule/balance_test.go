package schedule

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssignHomeAway(t *testing.T) {
	t.Run("lower deficit hosts", func(t *testing.T) {
		st := NewState()
		st.Record("A", "X") // A: +1
		st.Record("Y", "B") // B: -1
		home, away := assignHomeAway("A", "B", st, rand.New(rand.NewSource(1)))
		assert.Equal(t, Participant("B"), home)
		assert.Equal(t, Participant("A"), away)
	})

	t.Run("order of the pair does not matter", func(t *testing.T) {
		st := NewState()
		st.Record("A", "X")
		st.Record("Y", "B")
		home, away := assignHomeAway("B", "A", st, rand.New(rand.NewSource(1)))
		assert.Equal(t, Participant("B"), home)
		assert.Equal(t, Participant("A"), away)
	})

	t.Run("updates counters", func(t *testing.T) {
		st := NewState()
		home, away := assignHomeAway("A", "B", st, rand.New(rand.NewSource(1)))
		assert.Equal(t, HomeAway{Home: 1}, st.Counters(home))
		assert.Equal(t, HomeAway{Away: 1}, st.Counters(away))
	})

	t.Run("does not mark the pair as played", func(t *testing.T) {
		st := NewState()
		assignHomeAway("A", "B", st, rand.New(rand.NewSource(1)))
		assert.False(t, st.Played("A", "B"), "balancing should leave the played relation alone")
	})

	t.Run("ties are decided by the random source", func(t *testing.T) {
		rng := rand.New(rand.NewSource(5))
		firstHome := 0
		for range 200 {
			home, _ := assignHomeAway("A", "B", NewState(), rng)
			if home == "A" {
				firstHome++
			}
		}
		assert.Greater(t, firstHome, 0, "A never hosted a tied pair")
		assert.Less(t, firstHome, 200, "A hosted every tied pair")
	})
}

func TestStateIsSymmetric(t *testing.T) {
	st := NewState()
	st.Record("B", "A")
	assert.True(t, st.Played("A", "B"))
	assert.True(t, st.Played("B", "A"))
	assert.Equal(t, 1, st.PairCount())
}

func TestStateClone(t *testing.T) {
	st := NewState()
	st.Record("A", "B")
	c := st.Clone()
	c.Record("C", "A")

	assert.False(t, st.Played("A", "C"), "clone shares the played relation with the original")
	assert.Equal(t, HomeAway{Home: 1}, st.Counters("A"))
	assert.Equal(t, HomeAway{Home: 1, Away: 1}, c.Counters("A"))
}
