package logging_test

import (
	"testing"

	"github.com/mediagrab/mediagrab/pkg/logging"
	"github.com/stretchr/testify/assert"
)

func TestGetLoggerReturnsSingleton(t *testing.T) {
	logging.ResetForTest()
	first := logging.GetLogger()
	second := logging.GetLogger()
	assert.NotNil(t, first)
	assert.Same(t, first, second)
}

func TestNewTestLogger(t *testing.T) {
	testLogger := logging.NewTestLogger()
	assert.NotNil(t, testLogger)
	assert.NotNil(t, testLogger.Logger)
	assert.NotNil(t, testLogger.Buffer)
}

func TestGetOutput(t *testing.T) {
	testLogger := logging.NewTestLogger()
	assert.Equal(t, "", testLogger.GetOutput())

	testLogger.Info("test message")
	assert.Contains(t, testLogger.GetOutput(), "test message")

	loggerWithNilBuffer := &logging.Logger{Logger: testLogger.Logger}
	assert.Equal(t, "", loggerWithNilBuffer.GetOutput())
}

func TestPackageLevelFunctions(t *testing.T) {
	testLogger := logging.NewTestLogger()
	logging.SetTestLogger(testLogger)
	defer logging.ResetForTest()

	logging.Debug("debug message", "key", "value")
	logging.Info("info message")
	logging.Warn("warning message")
	logging.Error("error message")

	output := testLogger.GetOutput()
	assert.Contains(t, output, "debug message")
	assert.Contains(t, output, "info message")
	assert.Contains(t, output, "warning message")
	assert.Contains(t, output, "error message")
}

func TestBaseLogger(t *testing.T) {
	testLogger := logging.NewTestLogger()
	assert.Same(t, testLogger.Logger, testLogger.BaseLogger())
}
