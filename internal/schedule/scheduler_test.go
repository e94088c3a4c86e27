package schedule

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoster(n int) []Participant {
	roster := make([]Participant, n)
	for i := range roster {
		roster[i] = Participant(fmt.Sprintf("M%02d", i+1))
	}
	return roster
}

func groupStageLabels() []string {
	return []string{"GW21", "GW22", "GW23", "GW24", "GW25", "GW27", "GW28", "GW29", "GW30", "GW31"}
}

func TestGenerateGroupStage(t *testing.T) {
	roster := testRoster(20)
	result, err := Generate(Request{Roster: roster, Rounds: 10, Labels: groupStageLabels()}, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	t.Run("100 fixtures", func(t *testing.T) {
		assert.Len(t, result.Fixtures, 100)
	})

	t.Run("each manager plays 10 distinct opponents", func(t *testing.T) {
		for _, p := range roster {
			m := result.Metrics[p]
			assert.Len(t, m.Opponents, 10, "%s fixtures", p)
			seen := make(map[Participant]bool)
			for _, o := range m.Opponents {
				assert.NotEqual(t, p, o, "%s plays itself", p)
				assert.False(t, seen[o], "%s meets %s twice", p, o)
				seen[o] = true
			}
		}
	})

	t.Run("no pair meets twice", func(t *testing.T) {
		seen := make(map[pairKey]int)
		for _, f := range result.Fixtures {
			seen[normalizePair(f.Home, f.Away)]++
		}
		for k, count := range seen {
			assert.Equal(t, 1, count, "%s vs %s", k.a, k.b)
		}
	})

	t.Run("every manager plays once per round", func(t *testing.T) {
		for round := 1; round <= 10; round++ {
			fixtures := result.Round(round)
			assert.Len(t, fixtures, 10, "round %d", round)
			seen := make(map[Participant]bool)
			for _, f := range fixtures {
				for _, p := range []Participant{f.Home, f.Away} {
					assert.False(t, seen[p], "%s plays twice in round %d", p, round)
					seen[p] = true
				}
			}
		}
	})

	t.Run("home and away add up and stay balanced", func(t *testing.T) {
		for _, p := range roster {
			m := result.Metrics[p]
			assert.Equal(t, 10, m.Home+m.Away, "%s has %dH/%dA", p, m.Home, m.Away)
			assert.InDelta(t, 0, m.Home-m.Away, 2, "%s has %dH/%dA", p, m.Home, m.Away)
		}
	})

	t.Run("labels follow rounds", func(t *testing.T) {
		labels := groupStageLabels()
		for _, f := range result.Fixtures {
			assert.Equal(t, labels[f.Round-1], f.Label, "round %d", f.Round)
		}
	})

	t.Run("fixtures are in round order", func(t *testing.T) {
		for i := 1; i < len(result.Fixtures); i++ {
			require.GreaterOrEqual(t, result.Fixtures[i].Round, result.Fixtures[i-1].Round, "fixture %d", i)
		}
	})

	t.Run("final state holds every pairing", func(t *testing.T) {
		assert.Equal(t, 100, result.State.PairCount())
		for _, p := range roster {
			m := result.Metrics[p]
			assert.Equal(t, HomeAway{Home: m.Home, Away: m.Away}, result.State.Counters(p), p)
		}
	})
}

func TestGenerateBalanceAcrossSeeds(t *testing.T) {
	roster := testRoster(20)
	for seed := int64(1); seed <= 3; seed++ {
		result, err := Generate(Request{Roster: roster, Rounds: 10}, rand.New(rand.NewSource(seed)))
		require.NoError(t, err, "seed %d", seed)
		for _, p := range roster {
			m := result.Metrics[p]
			assert.InDelta(t, 0, m.Home-m.Away, 2, "seed %d: %s has %dH/%dA", seed, p, m.Home, m.Away)
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	roster := testRoster(20)
	req := Request{Roster: roster, Rounds: 10, Labels: groupStageLabels()}

	first, err := Generate(req, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	second, err := Generate(req, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	t.Run("same seed gives identical fixtures", func(t *testing.T) {
		assert.Equal(t, first.Fixtures, second.Fixtures)
	})

	t.Run("different seed gives a different draw", func(t *testing.T) {
		other, err := Generate(req, rand.New(rand.NewSource(8)))
		require.NoError(t, err)
		assert.NotEqual(t, first.Fixtures, other.Fixtures, "seeds 7 and 8 produced the same draw")
	})
}

func TestGenerateFullRoundRobinOfFour(t *testing.T) {
	roster := []Participant{"A", "B", "C", "D"}
	for seed := int64(1); seed <= 20; seed++ {
		result, err := Generate(Request{Roster: roster, Rounds: 3}, rand.New(rand.NewSource(seed)))
		require.NoError(t, err, "seed %d", seed)

		pairs := make(map[pairKey]int)
		for _, f := range result.Fixtures {
			pairs[normalizePair(f.Home, f.Away)]++
		}
		assert.Len(t, pairs, 6, "seed %d: distinct pairs", seed)
		for k, count := range pairs {
			assert.Equal(t, 1, count, "seed %d: %s vs %s", seed, k.a, k.b)
		}

		for _, p := range roster {
			m := result.Metrics[p]
			assert.Equal(t, 3, m.Home+m.Away, "seed %d: %s fixtures", seed, p)
			assert.NotContains(t, []int{m.Home, m.Away}, 3, "seed %d: %s has %dH/%dA", seed, p, m.Home, m.Away)
		}
	}
}

func TestGenerateConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"more rounds than opponents", Request{Roster: []Participant{"A", "B", "C", "D"}, Rounds: 4}},
		{"odd roster", Request{Roster: testRoster(5), Rounds: 2}},
		{"empty roster", Request{Rounds: 1}},
		{"duplicate participant", Request{Roster: []Participant{"A", "B", "A", "C"}, Rounds: 1}},
		{"zero rounds", Request{Roster: testRoster(4), Rounds: 0}},
		{"label count mismatch", Request{Roster: testRoster(4), Rounds: 2, Labels: []string{"GW1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Generate(tt.req, rand.New(rand.NewSource(1)))
			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Nil(t, result)
		})
	}

	t.Run("missing random source", func(t *testing.T) {
		_, err := Generate(Request{Roster: testRoster(4), Rounds: 1}, nil)
		var cfgErr *ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	})
}

func TestGenerateFailsWhenHistoryLeavesNoPairing(t *testing.T) {
	history := NewState()
	history.Record("A", "B")
	history.Record("C", "D")

	result, err := Generate(Request{Roster: []Participant{"A", "B", "C", "D"}, Rounds: 3, History: history},
		rand.New(rand.NewSource(1)))

	var schedErr *SchedulingError
	require.ErrorAs(t, err, &schedErr)
	t.Run("names the failing round", func(t *testing.T) {
		assert.Equal(t, 3, schedErr.Round)
		assert.Equal(t, 4, schedErr.Unmatched)
	})
	t.Run("returns no fixtures", func(t *testing.T) {
		assert.Nil(t, result)
	})
	t.Run("leaves history untouched", func(t *testing.T) {
		assert.Equal(t, 2, history.PairCount())
		assert.Equal(t, HomeAway{Home: 1}, history.Counters("A"))
	})
}

func TestGenerateCarriesHistory(t *testing.T) {
	roster := []Participant{"A", "B", "C", "D", "E", "F"}
	history := NewState()
	history.Record("A", "B")
	history.Record("C", "D")
	history.Record("E", "F")

	result, err := Generate(Request{Roster: roster, Rounds: 2, History: history}, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	t.Run("avoids earlier opponents", func(t *testing.T) {
		for _, f := range result.Fixtures {
			assert.False(t, history.Played(f.Home, f.Away), "%s vs %s already played in history", f.Home, f.Away)
		}
	})

	t.Run("balances against carried counters", func(t *testing.T) {
		for _, p := range roster {
			c := result.State.Counters(p)
			assert.Equal(t, 3, c.Home+c.Away, "%s fixtures including history", p)
			assert.NotContains(t, []int{c.Home, c.Away}, 3, "%s has %dH/%dA including history", p, c.Home, c.Away)
		}
	})

	t.Run("result state extends history", func(t *testing.T) {
		assert.Equal(t, 9, result.State.PairCount())
		assert.Equal(t, 3, history.PairCount())
	})
}
