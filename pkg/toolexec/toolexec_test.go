package toolexec

import (
	"context"
	"testing"
	"time"

	"github.com/mediagrab/mediagrab/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCapturesOutput(t *testing.T) {
	stdout, stderr, exitCode, err := Run(context.Background(), "sh", []string{"-c", "echo out; echo err >&2"}, "", logging.NewTestLogger())
	require.NoError(t, err)
	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout, "out")
	assert.Contains(t, stderr, "err")
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	_, stderr, exitCode, err := Run(context.Background(), "sh", []string{"-c", "echo broken >&2; exit 3"}, "", logging.NewTestLogger())
	require.NoError(t, err)
	assert.Equal(t, 3, exitCode)
	assert.Contains(t, stderr, "broken")
}

func TestRunContextDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, _, _, err := Run(ctx, "sleep", []string{"5"}, "", logging.NewTestLogger())
	assert.Error(t, err)
}

func TestRunContextDeadlineWithSurvivingDescendants(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// The backgrounded sleep inherits the stdio pipes and outlives the
	// killed shell; the wait must not block on it.
	start := time.Now()
	_, _, _, err := Run(ctx, "sh", []string{"-c", "sleep 5 & sleep 5"}, "", logging.NewTestLogger())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestRunWorkingDir(t *testing.T) {
	dir := t.TempDir()
	stdout, _, exitCode, err := Run(context.Background(), "pwd", nil, dir, logging.NewTestLogger())
	require.NoError(t, err)
	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout, dir)
}
