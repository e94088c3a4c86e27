package schedule

import "fmt"

// ConfigurationError reports input that cannot produce a draw: an empty or
// odd-sized roster, duplicate participants, or too many rounds. It is always
// returned before any round is generated.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid draw configuration: " + e.Reason
}

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// SchedulingError reports that a round had no valid pairing given the
// opponents already played. The whole draw is abandoned; re-running with a
// different seed may succeed.
type SchedulingError struct {
	Round     int
	Unmatched int // smallest set of participants left unpaired during the search
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("could not find a valid pairing for round %d (%d participants left unmatched); try a different seed",
		e.Round, e.Unmatched)
}
