package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/derekprior/cupdraw/internal/schedule"
)

// Participant is a manager taking part in the cup.
type Participant struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Team string `yaml:"team"`
}

// DisplayName is the name shown in printed and workbook output.
func (p Participant) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// Stage is the part of the cup being drawn.
type Stage struct {
	Name        string   `yaml:"name"`
	Rounds      int      `yaml:"rounds"`
	RoundLabels []string `yaml:"round_labels"`
	CarryOver   []string `yaml:"carry_over"` // earlier stages whose opponents can't be drawn again
}

// Standing is an inline league points total used for seeding.
type Standing struct {
	ID     string `yaml:"id"`
	Points int    `yaml:"points"`
}

// Rules holds limits checked when a draw is validated.
type Rules struct {
	MaxHomeAwayImbalance int `yaml:"max_home_away_imbalance"`
}

// Config is a cupdraw.yaml file.
type Config struct {
	Cup          string        `yaml:"cup"`
	Stage        Stage         `yaml:"stage"`
	Seed         int64         `yaml:"seed"`
	Seeding      string        `yaml:"seeding"`
	Participants []Participant `yaml:"participants"`
	Standings    []Standing    `yaml:"standings"`
	Database     string        `yaml:"database"`
	Rules        Rules         `yaml:"rules"`
}

// Roster returns participant ids in config order.
func (c *Config) Roster() []schedule.Participant {
	roster := make([]schedule.Participant, len(c.Participants))
	for i, p := range c.Participants {
		roster[i] = schedule.Participant(p.ID)
	}
	return roster
}

// DisplayName returns the display name for a participant id, or the id itself
// when it is not in the config.
func (c *Config) DisplayName(id schedule.Participant) string {
	for _, p := range c.Participants {
		if p.ID == string(id) {
			return p.DisplayName()
		}
	}
	return string(id)
}

// IDForName maps a display name back to a participant id.
func (c *Config) IDForName(name string) (schedule.Participant, bool) {
	for _, p := range c.Participants {
		if p.DisplayName() == name {
			return schedule.Participant(p.ID), true
		}
	}
	return "", false
}

// InlineStandings converts configured standings for seeding.
func (c *Config) InlineStandings() []schedule.Standing {
	var standings []schedule.Standing
	for _, s := range c.Standings {
		standings = append(standings, schedule.Standing{
			Participant: schedule.Participant(s.ID),
			Points:      s.Points,
		})
	}
	return standings
}

func defaults() Config {
	return Config{
		Stage:    Stage{Name: "group"},
		Seeding:  string(schedule.SeedStandings),
		Database: "db/fantasy_cup.db",
		Rules:    Rules{MaxHomeAwayImbalance: 2},
	}
}

// LoadFromBytes parses YAML bytes into a Config, applies environment
// overrides and validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

func (c *Config) validate() error {
	if c.Stage.Name == "" {
		return fmt.Errorf("stage name is required")
	}

	n := len(c.Participants)
	if n < 2 {
		return fmt.Errorf("at least two participants are required, got %d", n)
	}
	if n%2 != 0 {
		return fmt.Errorf("an even number of participants is required, got %d", n)
	}

	ids := make(map[string]bool)
	names := make(map[string]string)
	for _, p := range c.Participants {
		if p.ID == "" {
			return fmt.Errorf("participant %q has no id", p.Name)
		}
		if ids[p.ID] {
			return fmt.Errorf("participant id %q appears more than once", p.ID)
		}
		ids[p.ID] = true
		name := p.DisplayName()
		if prev, ok := names[name]; ok {
			return fmt.Errorf("participants %q and %q share the name %q", prev, p.ID, name)
		}
		names[name] = p.ID
	}

	if c.Stage.Rounds < 1 || c.Stage.Rounds > n-1 {
		return fmt.Errorf("stage %q: rounds must be between 1 and %d for %d participants, got %d",
			c.Stage.Name, n-1, n, c.Stage.Rounds)
	}
	if len(c.Stage.RoundLabels) != 0 && len(c.Stage.RoundLabels) != c.Stage.Rounds {
		return fmt.Errorf("stage %q: %d round labels given for %d rounds",
			c.Stage.Name, len(c.Stage.RoundLabels), c.Stage.Rounds)
	}
	for _, s := range c.Stage.CarryOver {
		if s == c.Stage.Name {
			return fmt.Errorf("stage %q cannot carry over its own fixtures", s)
		}
	}

	if _, err := schedule.ParseSeedMethod(c.Seeding); err != nil {
		return err
	}

	for _, s := range c.Standings {
		if !ids[s.ID] {
			return fmt.Errorf("standings entry %q is not a participant", s.ID)
		}
	}

	if c.Rules.MaxHomeAwayImbalance < 0 {
		return fmt.Errorf("max_home_away_imbalance must not be negative")
	}

	return nil
}
