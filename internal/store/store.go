package store

import (
	"context"
	"errors"
	"time"

	"github.com/derekprior/cupdraw/internal/schedule"
)

// ErrStageNotFound is returned when a stage named for carry-over has no
// saved draw.
var ErrStageNotFound = errors.New("no saved draw for stage")

// Manager is a league entry as recorded in the managers table.
type Manager struct {
	ID       string
	Name     string
	TeamName string
}

// H2HMatch is one head-to-head league result.
type H2HMatch struct {
	Gameweek     int
	Entry1       string
	Entry1Points int
	Entry2       string
	Entry2Points int
}

// DrawRecord describes a persisted draw for one stage.
type DrawRecord struct {
	ID        string
	Stage     string
	Seed      int64
	Seeding   string
	CreatedAt time.Time
}

// Store defines the persistence layer for cup draws.
type Store interface {
	// League data
	UpsertManagers(ctx context.Context, managers []Manager) error
	Managers(ctx context.Context) ([]Manager, error)
	RecordH2H(ctx context.Context, m H2HMatch) error
	Standings(ctx context.Context) ([]schedule.Standing, error)

	// Draws
	ReplaceDraw(ctx context.Context, rec DrawRecord, fixtures []schedule.Fixture) (string, error)
	LoadDraw(ctx context.Context, stage string) (*DrawRecord, []schedule.Fixture, error)
	LoadHistory(ctx context.Context, stages []string) (*schedule.State, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
