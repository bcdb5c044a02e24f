// Package toolexec funnels every external-tool invocation through one place.
package toolexec

import (
	"context"
	"time"

	execute "github.com/alexellis/go-execute/v2"
	"github.com/mediagrab/mediagrab/pkg/logging"
)

// exitGrace is how long a cancelled command may keep the wait alive before
// it is abandoned. Killing the direct child does not kill descendants that
// inherited the stdio pipes (yt-dlp hands work to ffmpeg), and those keep
// the wait blocked until they exit on their own.
const exitGrace = time.Second

// Run executes a command in the foreground and returns its stdout, stderr and
// exit code. The context bounds the call: when the deadline passes the
// process is killed and Run returns the context error, even if orphaned
// descendants are still running.
func Run(
	ctx context.Context,
	command string,
	args []string,
	workingDir string, // Optional: pass "" to use current working dir
	logger *logging.Logger,
) (string, string, int, error) {
	logger.Debug("executing", "command", command, "args", args, "dir", workingDir)

	task := execute.ExecTask{
		Command: command,
		Args:    args,
		Cwd:     workingDir,
	}

	type taskOutcome struct {
		result execute.ExecResult
		err    error
	}
	done := make(chan taskOutcome, 1)
	go func() {
		result, err := task.Execute(ctx)
		done <- taskOutcome{result: result, err: err}
	}()

	var out taskOutcome
	select {
	case out = <-done:
	case <-ctx.Done():
		select {
		case out = <-done:
		case <-time.After(exitGrace):
			logger.Warn("command did not exit after cancellation, abandoning wait", "command", command)
			return "", "", -1, ctx.Err()
		}
	}

	result, err := out.result, out.err
	if err != nil {
		logger.Error("command execution failed", "command", command, "error", err)
		return result.Stdout, result.Stderr, result.ExitCode, err
	}

	if result.ExitCode != 0 {
		logger.Warn("command exited with non-zero code", "command", command, "code", result.ExitCode)
	} else {
		logger.Debug("command executed successfully", "command", command)
	}

	return result.Stdout, result.Stderr, result.ExitCode, nil
}
