package validator

import (
	"fmt"

	"github.com/derekprior/cupdraw/internal/config"
	"github.com/derekprior/cupdraw/internal/excel"
	"github.com/derekprior/cupdraw/internal/schedule"
)

// Violation represents a problem found in a draw.
type Violation struct {
	Type        string // "error" or "warning"
	Participant schedule.Participant
	Message     string
}

// Report collects every violation found in a draw.
type Report struct {
	Violations []Violation
}

// Passed reports whether the draw has no errors. Warnings don't fail a draw.
func (r Report) Passed() bool {
	return len(r.Errors()) == 0
}

// Errors returns the violations that fail the draw.
func (r Report) Errors() []Violation {
	return r.ofType("error")
}

// Warnings returns the advisory violations, such as home/away imbalance.
func (r Report) Warnings() []Violation {
	return r.ofType("warning")
}

func (r Report) ofType(typ string) []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Type == typ {
			out = append(out, v)
		}
	}
	return out
}

// Validate reads the draw from a workbook and checks it against the config.
func Validate(cfg *config.Config, path string) (Report, error) {
	fixtures, err := excel.ReadFixtures(path, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("reading fixtures: %w", err)
	}

	report := Check(fixtures, cfg.Roster(), cfg.Stage.Rounds)
	report.Violations = append(report.Violations,
		CheckBalance(fixtures, cfg.Roster(), cfg.Rules.MaxHomeAwayImbalance)...)
	return report, nil
}

// Check verifies that fixtures form a valid draw of the given number of
// rounds for roster. It never stops at the first problem.
func Check(fixtures []schedule.Fixture, roster []schedule.Participant, rounds int) Report {
	var violations []Violation

	violations = append(violations, checkFixtureCounts(fixtures, roster, rounds)...)
	violations = append(violations, checkDistinctOpponents(fixtures, roster, rounds)...)
	violations = append(violations, checkHomeAwayTotals(fixtures, roster, rounds)...)
	violations = append(violations, checkSelfPairings(fixtures)...)
	violations = append(violations, checkRepeatedPairs(fixtures)...)
	violations = append(violations, checkUnknownParticipants(fixtures, roster)...)
	violations = append(violations, checkRoundRange(fixtures, rounds)...)
	violations = append(violations, checkOncePerRound(fixtures)...)

	return Report{Violations: violations}
}

func checkFixtureCounts(fixtures []schedule.Fixture, roster []schedule.Participant, rounds int) []Violation {
	counts := make(map[schedule.Participant]int)
	for _, fx := range fixtures {
		counts[fx.Home]++
		if fx.Away != fx.Home {
			counts[fx.Away]++
		}
	}

	var violations []Violation
	for _, p := range roster {
		if counts[p] != rounds {
			violations = append(violations, Violation{
				Type:        "error",
				Participant: p,
				Message:     fmt.Sprintf("%s plays %d fixtures, want %d", p, counts[p], rounds),
			})
		}
	}
	return violations
}

func checkDistinctOpponents(fixtures []schedule.Fixture, roster []schedule.Participant, rounds int) []Violation {
	opponents := make(map[schedule.Participant]map[schedule.Participant]bool)
	add := func(p, opp schedule.Participant) {
		if opponents[p] == nil {
			opponents[p] = make(map[schedule.Participant]bool)
		}
		opponents[p][opp] = true
	}
	for _, fx := range fixtures {
		if fx.Home == fx.Away {
			continue
		}
		add(fx.Home, fx.Away)
		add(fx.Away, fx.Home)
	}

	var violations []Violation
	for _, p := range roster {
		if n := len(opponents[p]); n != rounds {
			violations = append(violations, Violation{
				Type:        "error",
				Participant: p,
				Message:     fmt.Sprintf("%s faces %d distinct opponents, want %d", p, n, rounds),
			})
		}
	}
	return violations
}

func checkHomeAwayTotals(fixtures []schedule.Fixture, roster []schedule.Participant, rounds int) []Violation {
	home, away := homeAwayCounts(fixtures)

	var violations []Violation
	for _, p := range roster {
		if home[p]+away[p] != rounds {
			violations = append(violations, Violation{
				Type:        "error",
				Participant: p,
				Message: fmt.Sprintf("%s has %d home and %d away fixtures, want %d in total",
					p, home[p], away[p], rounds),
			})
		}
	}
	return violations
}

func checkSelfPairings(fixtures []schedule.Fixture) []Violation {
	var violations []Violation
	for _, fx := range fixtures {
		if fx.Home == fx.Away {
			violations = append(violations, Violation{
				Type:        "error",
				Participant: fx.Home,
				Message:     fmt.Sprintf("%s is drawn against itself in round %d", fx.Home, fx.Round),
			})
		}
	}
	return violations
}

func checkRepeatedPairs(fixtures []schedule.Fixture) []Violation {
	type pair struct{ a, b schedule.Participant }
	firstRound := make(map[pair]int)
	reported := make(map[pair]bool)

	var violations []Violation
	for _, fx := range fixtures {
		if fx.Home == fx.Away {
			continue
		}
		a, b := fx.Home, fx.Away
		if a > b {
			a, b = b, a
		}
		k := pair{a, b}
		first, seen := firstRound[k]
		if !seen {
			firstRound[k] = fx.Round
			continue
		}
		if reported[k] {
			continue
		}
		reported[k] = true
		violations = append(violations, Violation{
			Type:        "error",
			Participant: a,
			Message:     fmt.Sprintf("%s and %s meet more than once (rounds %d and %d)", a, b, first, fx.Round),
		})
	}
	return violations
}

func checkUnknownParticipants(fixtures []schedule.Fixture, roster []schedule.Participant) []Violation {
	known := make(map[schedule.Participant]bool, len(roster))
	for _, p := range roster {
		known[p] = true
	}

	reported := make(map[schedule.Participant]bool)
	var violations []Violation
	for _, fx := range fixtures {
		for _, p := range []schedule.Participant{fx.Home, fx.Away} {
			if known[p] || reported[p] {
				continue
			}
			reported[p] = true
			violations = append(violations, Violation{
				Type:        "error",
				Participant: p,
				Message:     fmt.Sprintf("%s is not a participant (round %d)", p, fx.Round),
			})
		}
	}
	return violations
}

func checkRoundRange(fixtures []schedule.Fixture, rounds int) []Violation {
	var violations []Violation
	for _, fx := range fixtures {
		if fx.Round < 1 || fx.Round > rounds {
			violations = append(violations, Violation{
				Type:    "error",
				Message: fmt.Sprintf("%s vs %s is in round %d, want 1 to %d", fx.Home, fx.Away, fx.Round, rounds),
			})
		}
	}
	return violations
}

func checkOncePerRound(fixtures []schedule.Fixture) []Violation {
	type slot struct {
		p     schedule.Participant
		round int
	}
	counts := make(map[slot]int)

	var violations []Violation
	for _, fx := range fixtures {
		sides := []schedule.Participant{fx.Home, fx.Away}
		if fx.Home == fx.Away {
			sides = sides[:1]
		}
		for _, p := range sides {
			k := slot{p, fx.Round}
			counts[k]++
			if counts[k] == 2 {
				violations = append(violations, Violation{
					Type:        "error",
					Participant: p,
					Message:     fmt.Sprintf("%s plays more than once in round %d", p, fx.Round),
				})
			}
		}
	}
	return violations
}

// CheckBalance warns about participants whose home and away counts differ
// by more than maxDiff.
func CheckBalance(fixtures []schedule.Fixture, roster []schedule.Participant, maxDiff int) []Violation {
	home, away := homeAwayCounts(fixtures)

	var violations []Violation
	for _, p := range roster {
		diff := home[p] - away[p]
		if diff < 0 {
			diff = -diff
		}
		if diff > maxDiff {
			violations = append(violations, Violation{
				Type:        "warning",
				Participant: p,
				Message:     fmt.Sprintf("%s has %d home and %d away fixtures (max difference %d)", p, home[p], away[p], maxDiff),
			})
		}
	}
	return violations
}

func homeAwayCounts(fixtures []schedule.Fixture) (home, away map[schedule.Participant]int) {
	home = make(map[schedule.Participant]int)
	away = make(map[schedule.Participant]int)
	for _, fx := range fixtures {
		home[fx.Home]++
		away[fx.Away]++
	}
	return home, away
}
