// Package execrun runs external tools (pdftoppm, tesseract) and logs
// each invocation.
package execrun

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/custodia-labs/docsight/internal/logger"
)

// maxLoggedStderr caps how much stderr ends up in a log line.
const maxLoggedStderr = 8 << 10

// Runner lets adapters stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

	// LookPath reports whether the named binary can be executed.
	LookPath(name string) (string, error)
}

// Exec runs commands with os/exec.
type Exec struct{}

// Run executes name with args and returns its captured output.
func (Exec) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()
	log := logger.Logger()
	log.Debug().Str("cmd_line", strings.Join(append([]string{name}, args...), " ")).Msg("running command")

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)

	if err != nil {
		log.Warn().
			Str("cmd", name).
			Int64("duration_ms", dur.Milliseconds()).
			Err(err).
			Str("stderr", Truncate(errb.String(), maxLoggedStderr)).
			Msg("exec failed")
	} else {
		log.Debug().
			Str("cmd", name).
			Int64("duration_ms", dur.Milliseconds()).
			Int("stdout_bytes", out.Len()).
			Int("stderr_bytes", errb.Len()).
			Msg("exec ok")
	}
	return out.Bytes(), errb.Bytes(), err
}

// LookPath resolves name on PATH.
func (Exec) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Truncate shortens s to at most n bytes, marking the cut.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
