package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derekprior/cupdraw/internal/schedule"
)

const testConfigYAML = `
cup: Rundisliga Cup 25/26

stage:
  name: group
  rounds: 3
  round_labels: [GW21, GW22, GW23]

seed: 2026
seeding: standings

participants:
  - id: "101"
    name: Alice
    team: Alice's XI
  - id: "102"
    name: Bob
  - id: "103"
    name: Carol
  - id: "104"

standings:
  - id: "101"
    points: 1210
  - id: "103"
    points: 1302

database: db/test.db

rules:
  max_home_away_imbalance: 1
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(testConfigYAML))
	require.NoError(t, err)

	t.Run("cup and stage", func(t *testing.T) {
		assert.Equal(t, "Rundisliga Cup 25/26", cfg.Cup)
		assert.Equal(t, "group", cfg.Stage.Name)
		assert.Equal(t, 3, cfg.Stage.Rounds)
		assert.Equal(t, []string{"GW21", "GW22", "GW23"}, cfg.Stage.RoundLabels)
	})

	t.Run("seed and seeding", func(t *testing.T) {
		assert.Equal(t, int64(2026), cfg.Seed)
		assert.Equal(t, "standings", cfg.Seeding)
	})

	t.Run("participants", func(t *testing.T) {
		require.Len(t, cfg.Participants, 4)
		assert.Equal(t, "Alice's XI", cfg.Participants[0].Team)
	})

	t.Run("roster keeps config order", func(t *testing.T) {
		assert.Equal(t, []schedule.Participant{"101", "102", "103", "104"}, cfg.Roster())
	})

	t.Run("display names fall back to id", func(t *testing.T) {
		assert.Equal(t, "Bob", cfg.DisplayName("102"))
		assert.Equal(t, "104", cfg.DisplayName("104"))

		id, ok := cfg.IDForName("Carol")
		assert.True(t, ok)
		assert.Equal(t, schedule.Participant("103"), id)

		_, ok = cfg.IDForName("Zed")
		assert.False(t, ok)
	})

	t.Run("inline standings", func(t *testing.T) {
		assert.Equal(t, []schedule.Standing{
			{Participant: "101", Points: 1210},
			{Participant: "103", Points: 1302},
		}, cfg.InlineStandings())
	})

	t.Run("database and rules", func(t *testing.T) {
		assert.Equal(t, "db/test.db", cfg.Database)
		assert.Equal(t, 1, cfg.Rules.MaxHomeAwayImbalance)
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	yaml := `
stage:
  rounds: 1
participants:
  - id: "1"
  - id: "2"
`
	cfg, err := LoadFromBytes([]byte(yaml))
	require.NoError(t, err)
	assert.Equal(t, "group", cfg.Stage.Name)
	assert.Equal(t, "standings", cfg.Seeding)
	assert.Equal(t, "db/fantasy_cup.db", cfg.Database)
	assert.Equal(t, 2, cfg.Rules.MaxHomeAwayImbalance)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "odd participants",
			yaml: `
stage: {rounds: 1}
participants: [{id: "1"}, {id: "2"}, {id: "3"}]
`,
			want: "even number",
		},
		{
			name: "too many rounds",
			yaml: `
stage: {rounds: 4}
participants: [{id: "1"}, {id: "2"}, {id: "3"}, {id: "4"}]
`,
			want: "rounds must be between 1 and 3",
		},
		{
			name: "duplicate ids",
			yaml: `
stage: {rounds: 1}
participants: [{id: "1"}, {id: "1"}]
`,
			want: "more than once",
		},
		{
			name: "duplicate names",
			yaml: `
stage: {rounds: 1}
participants: [{id: "1", name: Sam}, {id: "2", name: Sam}]
`,
			want: "share the name",
		},
		{
			name: "missing id",
			yaml: `
stage: {rounds: 1}
participants: [{name: Sam}, {id: "2"}]
`,
			want: "has no id",
		},
		{
			name: "label count",
			yaml: `
stage: {rounds: 1, round_labels: [GW1, GW2]}
participants: [{id: "1"}, {id: "2"}]
`,
			want: "round labels",
		},
		{
			name: "unknown seeding",
			yaml: `
stage: {rounds: 1}
seeding: elo
participants: [{id: "1"}, {id: "2"}]
`,
			want: "unknown seeding method",
		},
		{
			name: "standings for unknown participant",
			yaml: `
stage: {rounds: 1}
participants: [{id: "1"}, {id: "2"}]
standings: [{id: "9", points: 3}]
`,
			want: "not a participant",
		},
		{
			name: "stage carries over itself",
			yaml: `
stage: {name: group, rounds: 1, carry_over: [group]}
participants: [{id: "1"}, {id: "2"}]
`,
			want: "carry over its own",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Run("values replace config", func(t *testing.T) {
		t.Setenv("CUPDRAW_DATABASE", "/tmp/cup.db")
		t.Setenv("CUPDRAW_SEED", "77")
		t.Setenv("CUPDRAW_SEEDING", "random")

		cfg, err := LoadFromBytes([]byte(testConfigYAML))
		require.NoError(t, err)
		assert.Equal(t, "/tmp/cup.db", cfg.Database)
		assert.Equal(t, int64(77), cfg.Seed)
		assert.Equal(t, "random", cfg.Seeding)
	})

	t.Run("bad seed is rejected", func(t *testing.T) {
		t.Setenv("CUPDRAW_SEED", "soon")
		_, err := LoadFromBytes([]byte(testConfigYAML))
		assert.Error(t, err, "non-numeric seed")
	})
}
