package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlm20/terra-health-archetypes/internal"
)

// stubSteps scripts each step's outcome and records call order.
type stubSteps struct {
	calls []string

	confirmErr  error
	fetchErr    error
	generateErr error
	imageErr    error
	clearErr    error
}

func (s *stubSteps) ConfirmAuth(ctx context.Context, sessionID, providerUserID string) error {
	s.calls = append(s.calls, "confirm")
	return s.confirmErr
}

func (s *stubSteps) FetchReport(ctx context.Context, sessionID string) (*internal.HealthDataReport, error) {
	s.calls = append(s.calls, "fetch")
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return &internal.HealthDataReport{TimePeriodDays: 28}, nil
}

func (s *stubSteps) GenerateArchetype(ctx context.Context, sessionID string) (*internal.ArchetypeResult, error) {
	s.calls = append(s.calls, "generate")
	if s.generateErr != nil {
		return nil, s.generateErr
	}
	return &internal.ArchetypeResult{
		ArchetypeName: "The Still Grove",
		ImagePrompt:   "A serene figure in moss-colored robes.",
	}, nil
}

func (s *stubSteps) GenerateImage(ctx context.Context, imagePrompt string) (string, error) {
	s.calls = append(s.calls, "image")
	if s.imageErr != nil {
		return "", s.imageErr
	}
	return "data:image/png;base64,aGVsbG8=", nil
}

func (s *stubSteps) ClearSession(ctx context.Context, sessionID string) error {
	s.calls = append(s.calls, "clear")
	return s.clearErr
}

func newTestRunner(steps *stubSteps) *Runner {
	return NewRunner(steps, "session-1", "terra-user-1", internal.NewNopLogger())
}

func allStages() []Stage {
	return []Stage{StageDeviceConnected, StageDataObtained, StageArchetypeDiscovered, StageDataCleared}
}

func TestRunCompletesStagesInOrder(t *testing.T) {
	steps := &stubSteps{}
	r := newTestRunner(steps)

	for _, stage := range allStages() {
		assert.Equal(t, StatusIdle, r.StageStatus(stage))
	}

	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, []string{"confirm", "fetch", "generate", "image", "clear"}, steps.calls)
	for _, stage := range allStages() {
		assert.Equal(t, StatusComplete, r.StageStatus(stage), stage.String())
	}
	assert.True(t, r.Done())

	result := r.Result()
	require.NotNil(t, result)
	assert.Equal(t, "The Still Grove", result.ArchetypeName)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", result.ImageDataURL)
}

func TestArchetypeStageNeedsBothGenerations(t *testing.T) {
	steps := &stubSteps{}
	r := newTestRunner(steps)

	// Advance through confirm, fetch, and the text generation. The
	// archetype stage must not read complete until the image lands too.
	for i := 0; i < 3; i++ {
		require.True(t, r.Advance(context.Background()))
	}
	assert.Equal(t, []string{"confirm", "fetch", "generate"}, steps.calls)
	assert.NotEqual(t, StatusComplete, r.StageStatus(StageArchetypeDiscovered))
	assert.Nil(t, r.Result())

	require.True(t, r.Advance(context.Background()))
	assert.Equal(t, StatusComplete, r.StageStatus(StageArchetypeDiscovered))
	require.NotNil(t, r.Result())
}

func TestFailureHaltsLaterStages(t *testing.T) {
	stepErr := errors.New("upstream unavailable")
	steps := &stubSteps{generateErr: stepErr}
	r := newTestRunner(steps)

	err := r.Run(context.Background())

	require.ErrorIs(t, err, stepErr)
	assert.Equal(t, []string{"confirm", "fetch", "generate"}, steps.calls)

	assert.Equal(t, StatusComplete, r.StageStatus(StageDeviceConnected))
	assert.Equal(t, StatusComplete, r.StageStatus(StageDataObtained))
	assert.Equal(t, StatusError, r.StageStatus(StageArchetypeDiscovered))
	assert.Equal(t, StatusIdle, r.StageStatus(StageDataCleared))
	assert.False(t, r.Done())
	assert.Nil(t, r.Result())
}

func TestFailureAtFirstStage(t *testing.T) {
	steps := &stubSteps{confirmErr: errors.New("session not found")}
	r := newTestRunner(steps)

	require.Error(t, r.Run(context.Background()))

	assert.Equal(t, []string{"confirm"}, steps.calls)
	assert.Equal(t, StatusError, r.StageStatus(StageDeviceConnected))
	for _, stage := range allStages()[1:] {
		assert.Equal(t, StatusIdle, r.StageStatus(stage), stage.String())
	}
}

func TestAdvanceStopsAfterFailure(t *testing.T) {
	steps := &stubSteps{fetchErr: errors.New("provider timeout")}
	r := newTestRunner(steps)

	require.True(t, r.Advance(context.Background()))
	require.True(t, r.Advance(context.Background()))
	assert.False(t, r.Advance(context.Background()), "failed run must not advance further")
	assert.Equal(t, []string{"confirm", "fetch"}, steps.calls)
}

func TestAdvanceAfterCompletionIsNoOp(t *testing.T) {
	steps := &stubSteps{}
	r := newTestRunner(steps)

	require.NoError(t, r.Run(context.Background()))
	assert.False(t, r.Advance(context.Background()))
	assert.Equal(t, []string{"confirm", "fetch", "generate", "image", "clear"}, steps.calls)
}
