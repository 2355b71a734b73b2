package api

import (
	"context"
	"time"

	"github.com/mlm20/terra-health-archetypes/internal"
	"github.com/mlm20/terra-health-archetypes/internal/session"
)

// HealthDataSource is the wearable aggregator surface the handlers need.
type HealthDataSource interface {
	InitiateWidgetSession(ctx context.Context, sessionID string) (string, error)
	FetchAll(ctx context.Context, userID string, startDate, endDate time.Time) (internal.HealthData, error)
}

// Generator produces the archetype text and avatar image.
type Generator interface {
	GenerateArchetype(ctx context.Context, report internal.HealthDataReport) (*internal.ArchetypeResult, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

type App interface {
	Logger() internal.Logger
	Sessions() session.Store
	Health() HealthDataSource
	Generator() Generator
}

type app struct {
	logger    internal.Logger
	sessions  session.Store
	health    HealthDataSource
	generator Generator
}

func NewApp(logger internal.Logger, sessions session.Store, health HealthDataSource, generator Generator) App {
	return &app{logger: logger, sessions: sessions, health: health, generator: generator}
}

func (a *app) Logger() internal.Logger  { return a.logger }
func (a *app) Sessions() session.Store  { return a.sessions }
func (a *app) Health() HealthDataSource { return a.health }
func (a *app) Generator() Generator     { return a.generator }
