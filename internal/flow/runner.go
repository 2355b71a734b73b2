// Package flow drives the archetype journey as a staged state machine: the
// ordered steps a connected device goes through from auth confirmation to a
// finished persona, with per-stage status a UI can poll while the run
// progresses.
package flow

import (
	"context"
	"sync"

	"github.com/mlm20/terra-health-archetypes/internal"
)

// Stage identifies one step of the journey, in execution order.
type Stage int

const (
	StageDeviceConnected Stage = iota
	StageDataObtained
	StageArchetypeDiscovered
	StageDataCleared
)

func (s Stage) String() string {
	switch s {
	case StageDeviceConnected:
		return "Device Connected"
	case StageDataObtained:
		return "Health Data Obtained"
	case StageArchetypeDiscovered:
		return "Archetype Discovered"
	case StageDataCleared:
		return "Data Cleared"
	default:
		return "Unknown"
	}
}

type Status string

const (
	StatusIdle     Status = "idle"
	StatusOngoing  Status = "ongoing"
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

// Steps is the backend surface the runner walks through. Each method maps
// to one remote operation; the runner owns ordering and failure handling.
type Steps interface {
	ConfirmAuth(ctx context.Context, sessionID, providerUserID string) error
	FetchReport(ctx context.Context, sessionID string) (*internal.HealthDataReport, error)
	GenerateArchetype(ctx context.Context, sessionID string) (*internal.ArchetypeResult, error)
	GenerateImage(ctx context.Context, imagePrompt string) (string, error)
	ClearSession(ctx context.Context, sessionID string) error
}

// Runner executes the staged journey for one session. A failed step records
// the stage it belonged to and stops the run: earlier stages keep their
// completed status, later stages never start.
type Runner struct {
	mu    sync.Mutex
	steps Steps

	sessionID      string
	providerUserID string
	logger         internal.Logger

	authConfirmed bool
	report        *internal.HealthDataReport
	archetype     *internal.ArchetypeResult
	imageDataURL  string
	cleared       bool

	running  bool
	runStage Stage

	err      error
	errStage Stage
}

func NewRunner(steps Steps, sessionID, providerUserID string, logger internal.Logger) *Runner {
	return &Runner{
		steps:          steps,
		sessionID:      sessionID,
		providerUserID: providerUserID,
		logger:         logger,
	}
}

// Advance executes the next pending step, if any. It returns false when the
// run is already finished, failed, or mid-step. Steps run one at a time and
// strictly in order; the archetype stage only completes once both the text
// generation and the image generation have succeeded.
func (r *Runner) Advance(ctx context.Context) bool {
	r.mu.Lock()
	if r.running || r.err != nil || r.cleared {
		r.mu.Unlock()
		return false
	}

	stage, step := r.nextStep()
	if step == nil {
		r.mu.Unlock()
		return false
	}
	r.running = true
	r.runStage = stage
	r.mu.Unlock()

	err := step(ctx)

	r.mu.Lock()
	r.running = false
	if err != nil {
		r.err = err
		r.errStage = stage
		r.logger.Errorf("flow: session %s failed at stage %q: %v", r.sessionID, stage, err)
	}
	r.mu.Unlock()
	return true
}

// nextStep picks the first step whose artifact is still missing. Caller
// holds the lock.
func (r *Runner) nextStep() (Stage, func(context.Context) error) {
	switch {
	case !r.authConfirmed:
		return StageDeviceConnected, r.confirmAuth
	case r.report == nil:
		return StageDataObtained, r.fetchReport
	case r.archetype == nil:
		return StageArchetypeDiscovered, r.generateArchetype
	case r.imageDataURL == "":
		return StageArchetypeDiscovered, r.generateImage
	case !r.cleared:
		return StageDataCleared, r.clearSession
	default:
		return 0, nil
	}
}

func (r *Runner) confirmAuth(ctx context.Context) error {
	if err := r.steps.ConfirmAuth(ctx, r.sessionID, r.providerUserID); err != nil {
		return err
	}
	r.mu.Lock()
	r.authConfirmed = true
	r.mu.Unlock()
	return nil
}

func (r *Runner) fetchReport(ctx context.Context) error {
	report, err := r.steps.FetchReport(ctx, r.sessionID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.report = report
	r.mu.Unlock()
	return nil
}

func (r *Runner) generateArchetype(ctx context.Context) error {
	archetype, err := r.steps.GenerateArchetype(ctx, r.sessionID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.archetype = archetype
	r.mu.Unlock()
	return nil
}

func (r *Runner) generateImage(ctx context.Context) error {
	r.mu.Lock()
	prompt := r.archetype.ImagePrompt
	r.mu.Unlock()

	imageURL, err := r.steps.GenerateImage(ctx, prompt)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.imageDataURL = imageURL
	r.archetype.ImageDataURL = imageURL
	r.mu.Unlock()
	return nil
}

func (r *Runner) clearSession(ctx context.Context) error {
	if err := r.steps.ClearSession(ctx, r.sessionID); err != nil {
		return err
	}
	r.mu.Lock()
	r.cleared = true
	r.mu.Unlock()
	return nil
}

// Run advances the journey until it completes or a step fails.
func (r *Runner) Run(ctx context.Context) error {
	for r.Advance(ctx) {
	}
	return r.Err()
}

// StageStatus reports where a stage currently stands. Stages after a failed
// one stay idle; stages before it keep their completed status.
func (r *Runner) StageStatus(stage Stage) Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil && stage == r.errStage {
		return StatusError
	}
	if r.stageComplete(stage) {
		return StatusComplete
	}
	if r.running && stage == r.runStage {
		return StatusOngoing
	}
	return StatusIdle
}

// stageComplete checks the stage's artifacts. Caller holds the lock.
func (r *Runner) stageComplete(stage Stage) bool {
	switch stage {
	case StageDeviceConnected:
		return r.authConfirmed
	case StageDataObtained:
		return r.report != nil
	case StageArchetypeDiscovered:
		return r.archetype != nil && r.imageDataURL != ""
	case StageDataCleared:
		return r.cleared
	default:
		return false
	}
}

// Done reports whether every stage has completed.
func (r *Runner) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cleared
}

func (r *Runner) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Result returns the finished archetype, or nil while the archetype stage
// is still incomplete.
func (r *Runner) Result() *internal.ArchetypeResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.archetype == nil || r.imageDataURL == "" {
		return nil
	}
	return r.archetype
}
